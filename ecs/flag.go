package ecs

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

// BitsPerWord is the number of usable bits in each Flag word. The top bit of
// every uint32 word stays clear so a word always reads as a non-negative int32.
const BitsPerWord = 31

// DefaultMaxWords bounds the number of words a Flag may use unless the
// Registry is built with WithMaxWords.
const DefaultMaxWords = 8

const wordMask = 1<<BitsPerWord - 1

// ErrCapacityExceeded is returned (or panicked with) when more component types
// are registered than the allocator has bits for.
var ErrCapacityExceeded = errors.New("ecs: component type capacity exceeded")

// Flag is a bit vector of component types. Missing high words read as zero, so
// flags of different lengths can be compared directly.
type Flag []uint32

// Has reports whether bit is set.
func (f Flag) Has(bit int) bool {
	word, pos := bit/BitsPerWord, bit%BitsPerWord
	if bit < 0 || word >= len(f) {
		return false
	}
	return f[word]&(1<<pos) != 0
}

// Set returns f with bit set, growing it when needed. The receiver is modified
// in place when it is long enough.
func (f Flag) Set(bit int) Flag {
	word, pos := bit/BitsPerWord, bit%BitsPerWord
	for len(f) <= word {
		f = append(f, 0)
	}
	f[word] |= 1 << pos
	return f
}

// Or returns a new flag holding the union of f and other.
func (f Flag) Or(other Flag) Flag {
	n := max(len(f), len(other))
	out := make(Flag, n)
	copy(out, f)
	for i, w := range other {
		out[i] |= w
	}
	return out
}

// Equal compares two flags, treating missing words as zero.
func (f Flag) Equal(other Flag) bool {
	n := max(len(f), len(other))
	for i := 0; i < n; i++ {
		if f.word(i) != other.word(i) {
			return false
		}
	}
	return true
}

// IsZero reports whether no bit is set.
func (f Flag) IsZero() bool {
	for _, w := range f {
		if w != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy of f that shares no memory with it.
func (f Flag) Clone() Flag {
	if f == nil {
		return nil
	}
	out := make(Flag, len(f))
	copy(out, f)
	return out
}

// Words returns the number of words in use, ignoring zero high words.
func (f Flag) Words() int {
	n := len(f)
	for n > 0 && f[n-1] == 0 {
		n--
	}
	return n
}

// Count returns the number of set bits.
func (f Flag) Count() int {
	n := 0
	for _, w := range f {
		n += bits.OnesCount32(w)
	}
	return n
}

// Bits iterates over the set bit positions in ascending order.
func (f Flag) Bits() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, w := range f {
			for w != 0 {
				pos := bits.TrailingZeros32(w)
				if !yield(i*BitsPerWord + pos) {
					return
				}
				w &^= 1 << pos
			}
		}
	}
}

// String renders the flag high word first, one 31-bit group per word.
func (f Flag) String() string {
	n := f.Words()
	if n == 0 {
		return "0"
	}
	parts := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		parts = append(parts, fmt.Sprintf("%031b", f[i]&wordMask))
	}
	return strings.Join(parts, ":")
}

func (f Flag) word(i int) uint32 {
	if i < len(f) {
		return f[i]
	}
	return 0
}

// ContainsAll reports whether every bit of sub is also set in source.
func ContainsAll(source, sub Flag) bool {
	for i, w := range sub {
		if w == 0 {
			continue
		}
		if source.word(i)&w != w {
			return false
		}
	}
	return true
}

// ContainsAny reports whether source and sub share at least one bit.
func ContainsAny(source, sub Flag) bool {
	n := min(len(source), len(sub))
	for i := 0; i < n; i++ {
		if source[i]&sub[i] != 0 {
			return true
		}
	}
	return false
}

// ancestry is the part of the Registry the allocator needs to build
// all-inclusive flags.
type ancestry interface {
	Ancestors(name string) iter.Seq[string]
}

// FlagAllocator assigns every component type name a bit position and caches
// the derived flags. Bits are handed out in registration order and never
// reused.
type FlagAllocator struct {
	chain     ancestry
	maxWords  int
	bits      map[string]int
	own       map[string]Flag
	inclusive map[string]Flag
	gen       uint64
}

// NewFlagAllocator creates an allocator that resolves ancestors through chain
// and holds at most maxWords words.
func NewFlagAllocator(chain ancestry, maxWords int) *FlagAllocator {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &FlagAllocator{
		chain:     chain,
		maxWords:  maxWords,
		bits:      make(map[string]int),
		own:       make(map[string]Flag),
		inclusive: make(map[string]Flag),
	}
}

// Assign returns the bit for name, allocating the next free bit when the name
// is new. It fails with ErrCapacityExceeded once every word is in use.
func (a *FlagAllocator) Assign(name string) (int, error) {
	if bit, ok := a.bits[name]; ok {
		return bit, nil
	}
	bit := len(a.bits)
	if bit >= a.Capacity() {
		return -1, fmt.Errorf("%w: %q needs bit %d, capacity is %d (%d words of %d bits)",
			ErrCapacityExceeded, name, bit, a.Capacity(), a.maxWords, BitsPerWord)
	}
	a.bits[name] = bit
	a.own[name] = Flag(nil).Set(bit)
	a.gen++
	return bit, nil
}

// Bit returns the bit assigned to name, if any.
func (a *FlagAllocator) Bit(name string) (int, bool) {
	bit, ok := a.bits[name]
	return bit, ok
}

// OwnFlag returns the flag holding only name's bit. Unseen names are assigned a
// bit on the spot; running out of bits panics, since continuing would corrupt
// unrelated flags.
func (a *FlagAllocator) OwnFlag(name string) Flag {
	if f, ok := a.own[name]; ok {
		return f
	}
	if _, err := a.Assign(name); err != nil {
		panic(err)
	}
	return a.own[name]
}

// AllInclusive returns name's own flag unioned with the own flag of every
// ancestor.
func (a *FlagAllocator) AllInclusive(name string) Flag {
	if f, ok := a.inclusive[name]; ok {
		return f
	}
	f := a.OwnFlag(name).Clone()
	if a.chain != nil {
		for ancestor := range a.chain.Ancestors(name) {
			f = f.Or(a.OwnFlag(ancestor))
		}
	}
	a.inclusive[name] = f
	return f
}

// UnionOfAllInclusive folds AllInclusive over names.
func (a *FlagAllocator) UnionOfAllInclusive(names ...string) Flag {
	var f Flag
	for _, name := range names {
		f = f.Or(a.AllInclusive(name))
	}
	return f
}

// UnionOfOwn folds OwnFlag over names.
func (a *FlagAllocator) UnionOfOwn(names ...string) Flag {
	var f Flag
	for _, name := range names {
		f = f.Or(a.OwnFlag(name))
	}
	return f
}

// ContainsAll is the allocator-level form of the package function.
func (a *FlagAllocator) ContainsAll(source, sub Flag) bool { return ContainsAll(source, sub) }

// ContainsAny is the allocator-level form of the package function.
func (a *FlagAllocator) ContainsAny(source, sub Flag) bool { return ContainsAny(source, sub) }

// Count returns the number of names holding a bit.
func (a *FlagAllocator) Count() int { return len(a.bits) }

// Words returns ceil(Count / BitsPerWord), the word count every flag fits in.
func (a *FlagAllocator) Words() int {
	return (len(a.bits) + BitsPerWord - 1) / BitsPerWord
}

// Capacity returns the maximum number of bits the allocator can hand out.
func (a *FlagAllocator) Capacity() int { return a.maxWords * BitsPerWord }

// NameOf returns the name holding bit, or "" when the bit is unassigned.
func (a *FlagAllocator) NameOf(bit int) string {
	for name, b := range a.bits {
		if b == bit {
			return name
		}
	}
	return ""
}

// invalidate drops every cached all-inclusive flag. The Registry calls it on
// every registration, since a new type may complete an ancestor chain that was
// already cached.
func (a *FlagAllocator) invalidate() {
	clear(a.inclusive)
	a.gen++
}
