package group

import (
	"math"
	"slices"

	"github.com/roach88/cohort/internal/ir"
)

// WeightFunc scores a member of a group for weighted sampling. Weights
// must be finite and non-negative; zero excludes the member.
type WeightFunc func(person ir.PersonID, group ir.GroupID) float64

// SampleRequest selects one member of Group.
type SampleRequest struct {
	Group ir.GroupID

	// Weights biases the draw. Nil draws uniformly.
	Weights WeightFunc

	// Exclude is never returned when Excluding is set.
	Exclude   ir.PersonID
	Excluding bool

	// Stream names the random stream. Empty selects the default stream.
	Stream string
}

// sampler holds scratch buffers reused across Sample calls. They are
// shared, so a weighting function must not sample again while one runs.
type sampler struct {
	busy    bool
	people  []ir.PersonID
	weights []float64
}

// acquire takes the scratch buffers. The returned func gives them back and
// must be deferred.
func (s *sampler) acquire() (func(), error) {
	if s.busy {
		return nil, ir.NewError(ir.ErrAccessViolation, "sampling is not reentrant")
	}
	s.busy = true
	return func() {
		if !s.busy {
			panic("group: sampler released while not held")
		}
		s.busy = false
	}, nil
}

func (s *sampler) reserve(n int) {
	if cap(s.people) < n {
		c := max(n, 2*cap(s.people))
		s.people = make([]ir.PersonID, 0, c)
		s.weights = make([]float64, 0, c)
	}
	s.people = s.people[:0]
	s.weights = s.weights[:0]
}

// Sample draws one member of the group. It returns false, with no error,
// when the group is empty, when only the excluded person remains or when
// every weight is zero.
//
// With a WeightFunc the draw binary-searches prefix sums for the first
// entry at or above U(0,1) * total. Which of two members with equal
// consecutive prefix sums is picked is not specified.
func (m *Manager) Sample(req SampleRequest) (ir.PersonID, bool, error) {
	release, err := m.sampler.acquire()
	if err != nil {
		return ir.NoPerson, false, err
	}
	defer release()

	if err := m.checkGroup(req.Group); err != nil {
		return ir.NoPerson, false, err
	}
	rng, err := m.random.Uniform(req.Stream)
	if err != nil {
		return ir.NoPerson, false, err
	}
	members, _ := m.membersOf.Get(int(req.Group))

	if req.Weights == nil {
		return sampleUniform(rng, members, req)
	}

	s := &m.sampler
	s.reserve(len(members))
	s.people = append(s.people, members...)

	total := 0.0
	accepted := 0
	for _, p := range s.people {
		if req.Excluding && p == req.Exclude {
			continue
		}
		w := req.Weights(p, req.Group)
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return ir.NoPerson, false, ir.NewError(ir.ErrMalformedWeights,
				"weight %v for person %d is not a finite non-negative number", w, p).
				With("person", p).With("group", req.Group)
		}
		if w == 0 {
			continue
		}
		total += w
		s.people[accepted] = p
		s.weights = append(s.weights, total)
		accepted++
	}
	if math.IsInf(total, 0) {
		return ir.NoPerson, false, ir.NewError(ir.ErrMalformedWeights, "weights overflow to a non-finite total").
			With("group", req.Group)
	}
	if accepted == 0 {
		return ir.NoPerson, false, nil
	}

	target := rng.Float64() * total
	i, _ := slices.BinarySearch(s.weights, target)
	if i >= accepted {
		i = accepted - 1
	}
	return s.people[i], true, nil
}

func sampleUniform(rng Uniform, members []ir.PersonID, req SampleRequest) (ir.PersonID, bool, error) {
	n := len(members)
	if n == 0 {
		return ir.NoPerson, false, nil
	}
	if req.Excluding && n == 1 && members[0] == req.Exclude {
		return ir.NoPerson, false, nil
	}
	for {
		p := members[rng.IntN(n)]
		if !req.Excluding || p != req.Exclude {
			return p, true, nil
		}
	}
}
