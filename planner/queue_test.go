package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-planner/grid"
)

func TestJobQueue_PriorityThenFIFO(t *testing.T) {
	q := newJobQueue(8)
	mk := func(id uint64, prio int) *Handle {
		return newHandle(context.Background(), id, Request{Priority: prio})
	}

	for _, h := range []*Handle{mk(1, 0), mk(2, 5), mk(3, 0), mk(4, 5), mk(5, -1)} {
		require.NoError(t, q.push(h))
	}

	var order []uint64
	for q.len() > 0 {
		h, ok := q.pop()
		require.True(t, ok)
		order = append(order, h.id)
	}
	assert.Equal(t, []uint64{2, 4, 1, 3, 5}, order)
}

func TestJobQueue_RemoveAndClose(t *testing.T) {
	q := newJobQueue(2)
	a := newHandle(context.Background(), 1, Request{})
	b := newHandle(context.Background(), 2, Request{})
	require.NoError(t, q.push(a))
	require.NoError(t, q.push(b))
	assert.ErrorIs(t, q.push(newHandle(context.Background(), 3, Request{})), ErrQueueFull)

	assert.True(t, q.remove(a))
	assert.False(t, q.remove(a), "already removed")

	pending := q.close()
	assert.Equal(t, []*Handle{b}, pending)
	_, ok := q.pop()
	assert.False(t, ok)
	assert.ErrorIs(t, q.push(a), ErrClosed)
	assert.Nil(t, q.close())
}

func TestVersionRing(t *testing.T) {
	g, err := grid.New(grid.Dims{X: 2, Y: 2, Z: 1})
	require.NoError(t, err)
	r := newVersionRing(2)

	r.observe(g.Snapshot())
	for range 3 {
		require.NoError(t, g.SetCell(grid.Coord{}, grid.Cell{Walkable: true, Cost: 1}))
		r.observe(g.Snapshot())
	}
	r.observe(g.Snapshot())
	assert.Equal(t, []uint64{2, 3}, r.versions())

	_, err = r.get(1)
	assert.ErrorIs(t, err, ErrStaleVersion)
	_, err = r.get(4)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	snap, err := r.get(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), snap.Version())
}

func TestRequiredCells(t *testing.T) {
	cases := []struct {
		radius, cell float64
		want         int
	}{
		{0, 1, 0},
		{-2, 1, 0},
		{0.5, 1, 0},
		{0.6, 1, 1},
		{1.5, 1, 1},
		{1.6, 1, 2},
		{3, 2, 1},
		{1e12, 1, maxRequiredCells},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, requiredCells(tc.radius, tc.cell), "radius %v cell %v", tc.radius, tc.cell)
	}
}
