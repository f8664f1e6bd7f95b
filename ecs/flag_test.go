package ecs_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/plus3/flagecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagBasics(t *testing.T) {
	var f ecs.Flag
	assert.True(t, f.IsZero())
	assert.Equal(t, "0", f.String())

	f = f.Set(0).Set(30).Set(31)
	assert.True(t, f.Has(0))
	assert.True(t, f.Has(30))
	assert.True(t, f.Has(31))
	assert.False(t, f.Has(1))
	assert.False(t, f.Has(500))
	assert.False(t, f.Has(-1))
	assert.Equal(t, 2, len(f))
	assert.Equal(t, 3, f.Count())
	assert.Equal(t, []int{0, 30, 31}, slices.Collect(f.Bits()))

	// Bit 30 is the last usable bit of a word; the sign bit stays clear.
	assert.Equal(t, uint32(1<<30|1), f[0])
	assert.Equal(t, uint32(1), f[1])
}

func TestFlagComparesAcrossLengths(t *testing.T) {
	short := ecs.Flag{0b101}
	long := ecs.Flag{0b101, 0, 0}

	assert.True(t, short.Equal(long))
	assert.True(t, long.Equal(short))
	assert.Equal(t, 1, long.Words())

	assert.True(t, ecs.ContainsAll(short, long))
	assert.True(t, ecs.ContainsAll(long, short))
	assert.True(t, ecs.ContainsAll(short, ecs.Flag{0b001}))
	assert.False(t, ecs.ContainsAll(short, ecs.Flag{0b010}))
	assert.False(t, ecs.ContainsAll(short, ecs.Flag{0, 1}))

	assert.True(t, ecs.ContainsAny(short, ecs.Flag{0b100, 7}))
	assert.False(t, ecs.ContainsAny(short, ecs.Flag{0b010, 7}))
	assert.False(t, ecs.ContainsAny(nil, short))

	// The empty flag is contained in everything and intersects nothing.
	assert.True(t, ecs.ContainsAll(nil, nil))
	assert.False(t, ecs.ContainsAny(short, nil))
}

func TestFlagOrDoesNotAlias(t *testing.T) {
	a := ecs.Flag{1}
	b := ecs.Flag{0, 2}
	u := a.Or(b)

	assert.Equal(t, ecs.Flag{1, 2}, u)
	u[0] = 0
	assert.Equal(t, ecs.Flag{1}, a)

	c := a.Clone()
	c[0] = 4
	assert.Equal(t, uint32(1), a[0])
}

func TestFlagAllocatorAssignsMonotonically(t *testing.T) {
	registry := ecs.NewRegistry()
	flags := registry.Flags()

	for i := 0; i < 5; i++ {
		bit, err := flags.Assign(fmt.Sprintf("T%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, bit)
	}

	bit, err := flags.Assign("T2")
	require.NoError(t, err)
	assert.Equal(t, 2, bit, "re-assigning a name returns its existing bit")

	assert.Equal(t, 5, flags.Count())
	assert.Equal(t, 1, flags.Words())
	assert.Equal(t, "T3", flags.NameOf(3))
	assert.Equal(t, "", flags.NameOf(99))
}

func TestFlagAllocatorSecondWord(t *testing.T) {
	registry := ecs.NewRegistry()

	names := make([]string, 32)
	for i := range names {
		names[i] = fmt.Sprintf("Type%02d", i)
		require.NoError(t, registry.Register(ecs.ComponentType{
			Name: names[i],
			New:  func() ecs.Component { return &Alpha{} },
		}))
		if i == 30 {
			// Snapshot the first word once it is full.
			first := registry.Flags().UnionOfOwn(names[:31]...)
			require.Len(t, first, 1)
			assert.Equal(t, uint32(1<<31-1), first[0])
		}
	}

	flags := registry.Flags()
	assert.Equal(t, 2, flags.Words())

	last := flags.OwnFlag(names[31])
	assert.Equal(t, ecs.Flag{0, 1}, last)

	for i := 0; i < 31; i++ {
		bit, ok := flags.Bit(names[i])
		require.True(t, ok)
		assert.Equal(t, i, bit)
		assert.Equal(t, 1, len(flags.OwnFlag(names[i])), "first-word flags keep one word")
	}

	all := flags.UnionOfOwn(names...)
	assert.Equal(t, uint32(1<<31-1), all[0])
	assert.Equal(t, uint32(1), all[1])
}

func TestFlagAllocatorCapacityExceeded(t *testing.T) {
	registry := ecs.NewRegistry(ecs.WithMaxWords(1))

	for i := 0; i < ecs.BitsPerWord; i++ {
		require.NoError(t, registry.Register(ecs.ComponentType{
			Name: fmt.Sprintf("T%d", i),
			New:  func() ecs.Component { return &Alpha{} },
		}))
	}

	err := registry.Register(ecs.ComponentType{
		Name: "Overflow",
		New:  func() ecs.Component { return &Alpha{} },
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ecs.ErrCapacityExceeded))
	_, ok := registry.Component("Overflow")
	assert.False(t, ok)

	assert.Panics(t, func() {
		registry.Flags().OwnFlag("AlsoOverflow")
	})
	assert.Panics(t, func() {
		ecs.RegisterComponent[Beta](registry, "Beta")
	})
}

func TestAllInclusiveFlag(t *testing.T) {
	registry := newTestRegistry()
	flags := registry.Flags()

	alpha := flags.OwnFlag("Alpha")
	beta := flags.OwnFlag("Beta")
	gamma := flags.OwnFlag("Gamma")

	assert.True(t, flags.AllInclusive("Alpha").Equal(alpha))
	assert.True(t, flags.AllInclusive("Beta").Equal(beta.Or(alpha)))
	assert.True(t, flags.AllInclusive("Gamma").Equal(gamma.Or(beta).Or(alpha)))

	union := flags.UnionOfAllInclusive("Beta", "Position")
	assert.True(t, union.Equal(beta.Or(alpha).Or(flags.OwnFlag("Position"))))
	assert.True(t, flags.ContainsAll(union, alpha))
	assert.False(t, flags.ContainsAny(union, gamma))
}
