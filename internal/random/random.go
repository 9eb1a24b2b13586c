// Package random provides named, independently seeded random streams.
//
// Every stream derives its state from the base seed and the stream name,
// so adding a stream never shifts the draws of another.
package random

import (
	"hash/fnv"
	"math/rand/v2"
	"slices"

	"github.com/roach88/cohort/internal/ir"
)

// Stream is one random stream.
type Stream struct {
	r *rand.Rand
}

// Float64 returns a uniform draw in [0, 1).
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// IntN returns a uniform draw in [0, n). It panics if n <= 0.
func (s *Stream) IntN(n int) int {
	return s.r.IntN(n)
}

// Streams holds the declared streams of one run. The empty name is the
// default stream and always exists.
type Streams struct {
	seed    uint64
	streams map[string]*Stream
}

// New returns the default stream plus the named ones.
func New(seed uint64, names ...string) *Streams {
	s := &Streams{seed: seed, streams: make(map[string]*Stream, len(names)+1)}
	s.Declare("")
	for _, n := range names {
		s.Declare(n)
	}
	return s
}

// Declare creates the named stream if it does not exist and returns it.
func (s *Streams) Declare(name string) *Stream {
	if st, ok := s.streams[name]; ok {
		return st
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	st := &Stream{r: rand.New(rand.NewPCG(s.seed, h.Sum64()))}
	s.streams[name] = st
	return st
}

// Uniform returns a declared stream.
func (s *Streams) Uniform(name string) (*Stream, error) {
	st, ok := s.streams[name]
	if !ok {
		return nil, ir.NewError(ir.ErrUnknownStream, "random stream %q is not declared", name).With("stream", name)
	}
	return st, nil
}

// Names returns the declared stream names in sorted order, default first.
func (s *Streams) Names() []string {
	names := make([]string, 0, len(s.streams))
	for n := range s.streams {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Seed returns the base seed.
func (s *Streams) Seed() uint64 {
	return s.seed
}
