package comps

import (
	"math/bits"
)

// bitmaskWords is the number of 64-bit words in a Bitmask.
const bitmaskWords = MaxComponents / 64

// Bitmask is a fixed-size bit set over component key indices.
// It is used for blueprint membership, populated slots and capabilities.
type Bitmask [bitmaskWords]uint64

// Set sets the bit at the given index.
func (m *Bitmask) Set(i Index) {
	m[i/64] |= 1 << (i % 64)
}

// Clear clears the bit at the given index.
func (m *Bitmask) Clear(i Index) {
	m[i/64] &^= 1 << (i % 64)
}

// Has returns true if the bit at the given index is set.
func (m *Bitmask) Has(i Index) bool {
	if int(i) >= MaxComponents {
		return false
	}
	return m[i/64]&(1<<(i%64)) != 0
}

// ContainsAll returns true if all bits set in other are also set in m.
func (m *Bitmask) ContainsAll(other Bitmask) bool {
	for w := range m {
		if m[w]&other[w] != other[w] {
			return false
		}
	}
	return true
}

// ContainsAny returns true if any bit set in other is also set in m.
func (m *Bitmask) ContainsAny(other Bitmask) bool {
	for w := range m {
		if m[w]&other[w] != 0 {
			return true
		}
	}
	return false
}

// IsZero returns true if no bits are set.
func (m *Bitmask) IsZero() bool {
	for _, w := range m {
		if w != 0 {
			return false
		}
	}
	return true
}

// Or returns a new bitmask with bits set from both m and other.
func (m Bitmask) Or(other Bitmask) Bitmask {
	for w := range m {
		m[w] |= other[w]
	}
	return m
}

// And returns a new bitmask with only bits set in both m and other.
func (m Bitmask) And(other Bitmask) Bitmask {
	for w := range m {
		m[w] &= other[w]
	}
	return m
}

// AndNot returns a new bitmask with bits set in m but not in other.
func (m Bitmask) AndNot(other Bitmask) Bitmask {
	for w := range m {
		m[w] &^= other[w]
	}
	return m
}

// Count returns the number of bits set.
func (m *Bitmask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// Equals returns true if both bitmasks are identical.
func (m *Bitmask) Equals(other Bitmask) bool {
	return *m == other
}

// Each calls fn for every set bit in ascending order.
func (m *Bitmask) Each(fn func(Index)) {
	for w, word := range m {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			fn(Index(w*64 + b))
			word &= word - 1
		}
	}
}
