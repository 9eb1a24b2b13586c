package testutil

import (
	"fmt"
	"slices"
)

// ScriptedStream replays fixed draws. Float64 cycles through Floats and
// IntN cycles through Ints, reduced modulo n. An empty script draws zero.
type ScriptedStream struct {
	Floats []float64
	Ints   []int

	floatPos int
	intPos   int
}

// Float64 returns the next scripted float.
func (s *ScriptedStream) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	f := s.Floats[s.floatPos%len(s.Floats)]
	s.floatPos++
	return f
}

// IntN returns the next scripted int modulo n.
func (s *ScriptedStream) IntN(n int) int {
	if n <= 0 {
		panic("testutil: IntN with non-positive n")
	}
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[s.intPos%len(s.Ints)] % n
	s.intPos++
	return v
}

// Draws returns how many floats and ints were drawn.
func (s *ScriptedStream) Draws() (floats, ints int) {
	return s.floatPos, s.intPos
}

// ScriptedRandom serves ScriptedStreams by name. The empty name is the
// default stream and always exists.
type ScriptedRandom struct {
	streams map[string]*ScriptedStream
}

// NewScriptedRandom returns a source whose default stream is def.
func NewScriptedRandom(def *ScriptedStream) *ScriptedRandom {
	if def == nil {
		def = &ScriptedStream{}
	}
	return &ScriptedRandom{streams: map[string]*ScriptedStream{"": def}}
}

// Add registers a named stream.
func (r *ScriptedRandom) Add(name string, s *ScriptedStream) *ScriptedRandom {
	r.streams[name] = s
	return r
}

// Stream returns the named stream, or nil.
func (r *ScriptedRandom) Stream(name string) *ScriptedStream {
	return r.streams[name]
}

// Names returns the registered stream names in sorted order.
func (r *ScriptedRandom) Names() []string {
	names := make([]string, 0, len(r.streams))
	for n := range r.streams {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the named stream or an error. Callers adapt it to the
// stream interface they consume.
func (r *ScriptedRandom) Lookup(name string) (*ScriptedStream, error) {
	s, ok := r.streams[name]
	if !ok {
		return nil, fmt.Errorf("unknown stream %q", name)
	}
	return s, nil
}
