package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeIndexRefCounts(t *testing.T) {
	x := newTypeIndex()

	x.add("Alpha", 1)
	x.add("Alpha", 1)
	x.add("Alpha", 2)
	assert.Equal(t, 2, x.Refs("Alpha", 1))
	assert.Equal(t, 2, x.Len("Alpha"))

	x.remove("Alpha", 1)
	assert.True(t, x.Has("Alpha", 1))
	x.remove("Alpha", 1)
	assert.False(t, x.Has("Alpha", 1))
	assert.Equal(t, []EntityID{2}, x.Entities("Alpha"))

	x.remove("Missing", 1)
	assert.Equal(t, 0, x.Refs("Missing", 1))
	assert.Nil(t, x.Entities("Missing"))
}

func TestTypeIndexSwapRemove(t *testing.T) {
	x := newTypeIndex()
	for id := EntityID(1); id <= 4; id++ {
		x.add("P", id)
	}

	x.remove("P", 2)
	assert.Equal(t, []EntityID{1, 4, 3}, x.Entities("P"))
	x.remove("P", 3)
	assert.Equal(t, []EntityID{1, 4}, x.Entities("P"))
	x.add("P", 2)
	assert.Equal(t, []EntityID{1, 4, 2}, x.Entities("P"))
	assert.Equal(t, []string{"P"}, x.Names())

	x.remove("P", 1)
	x.remove("P", 4)
	x.remove("P", 2)
	assert.Empty(t, x.Names())
}

func TestEntityTable(t *testing.T) {
	table := newEntityTable()
	a := &Entity{id: 1}
	b := &Entity{id: 2}
	c := &Entity{id: 3}
	table.add(a)
	table.add(b)
	table.add(c)

	assert.Same(t, b, table.Get(2))
	assert.True(t, table.remove(1))
	assert.False(t, table.remove(1))
	assert.Nil(t, table.Get(1))
	assert.Equal(t, []*Entity{c, b}, table.Snapshot())
	assert.Same(t, c, table.Get(3))
	assert.Equal(t, 2, table.Len())

	table.clear()
	assert.Equal(t, 0, table.Len())
	assert.False(t, table.Has(2))
}

type stubSystem struct {
	SystemBase
}

func TestSystemTableOrdering(t *testing.T) {
	table := newSystemTable()
	add := func(name string, priority int) {
		s := &stubSystem{}
		s.name = name
		s.priority = priority
		table.insert(s)
	}

	add("a", 0)
	add("b", 0)
	add("hi", 5)
	add("c", 0)
	add("hi2", 5)
	add("lo", -3)
	assert.Equal(t, []string{"hi", "hi2", "a", "b", "c", "lo"}, table.Names())

	assert.NotNil(t, table.remove("b"))
	assert.Nil(t, table.remove("b"))
	assert.Nil(t, table.Get("b"))
	assert.Equal(t, 5, table.Len())
}

func TestSystemStatsCommit(t *testing.T) {
	var s systemStatsInternal
	for _, d := range []time.Duration{5, 2, 9} {
		s.executeCalls++
		s.current = d
		s.commit()
	}
	assert.Equal(t, time.Duration(2), s.minDuration)
	assert.Equal(t, time.Duration(9), s.maxDuration)
	assert.Equal(t, time.Duration(9), s.lastDuration)
	assert.Equal(t, time.Duration(16), s.total)
	assert.Zero(t, s.current)
}
