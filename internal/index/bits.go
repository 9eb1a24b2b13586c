package index

import "math/bits"

// Bits is a growable bitset.
type Bits struct {
	words []uint64
}

// NewBits returns a bitset with room for n bits.
func NewBits(n int) *Bits {
	b := &Bits{}
	b.Resize(n)
	return b
}

// Resize ensures room for n bits. Existing bits are kept; it never shrinks.
func (b *Bits) Resize(n int) {
	need := (n + 63) / 64
	if need <= len(b.words) {
		return
	}
	if need <= cap(b.words) {
		b.words = b.words[:need]
		return
	}
	words := make([]uint64, need, grow(cap(b.words), need-1))
	copy(words, b.words)
	b.words = words
}

// Set sets bit i, growing as needed.
func (b *Bits) Set(i int) {
	checkID(i)
	b.Resize(i + 1)
	b.words[i/64] |= 1 << (uint(i) % 64)
}

// Unset clears bit i. Out of range bits are already clear.
func (b *Bits) Unset(i int) {
	checkID(i)
	if w := i / 64; w < len(b.words) {
		b.words[w] &^= 1 << (uint(i) % 64)
	}
}

// Get reports whether bit i is set.
func (b *Bits) Get(i int) bool {
	if i < 0 {
		return false
	}
	w := i / 64
	if w >= len(b.words) {
		return false
	}
	return b.words[w]&(1<<(uint(i)%64)) != 0
}

// ClearAll clears every bit and keeps the capacity for reuse.
func (b *Bits) ClearAll() {
	clear(b.words)
}

// Count returns the number of set bits.
func (b *Bits) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Len returns the number of addressable bits.
func (b *Bits) Len() int {
	return len(b.words) * 64
}

// Reset drops the backing array.
func (b *Bits) Reset() {
	b.words = nil
}
