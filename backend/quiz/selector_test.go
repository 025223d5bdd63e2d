package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pool(n int) []uint {
	ids := make([]uint, n)
	for i := range ids {
		ids[i] = uint(i + 1)
	}
	return ids
}

func TestSelectReturnsDistinctSubset(t *testing.T) {
	s := NewSeededSelector(1, 2)
	p := pool(30)

	got := s.Select(p, 10)

	assert.Len(t, got, 10)
	seen := make(map[uint]bool)
	for _, id := range got {
		assert.False(t, seen[id], "id %d drawn twice", id)
		assert.Contains(t, p, id)
		seen[id] = true
	}
	assert.Equal(t, pool(30), p, "pool must not be reordered")
}

func TestSelectClampsCount(t *testing.T) {
	s := NewSeededSelector(1, 2)

	assert.Len(t, s.Select(pool(4), 10), 4)
	assert.ElementsMatch(t, pool(4), s.Select(pool(4), 10))
	assert.Empty(t, s.Select(nil, 10))
	assert.NotNil(t, s.Select(nil, 10))
	assert.Empty(t, s.Select(pool(5), 0))
}

func TestSelectIsUniform(t *testing.T) {
	const (
		m      = 20
		n      = 5
		trials = 20000
	)
	s := NewSeededSelector(42, 7)
	counts := make(map[uint]int, m)

	for i := 0; i < trials; i++ {
		for _, id := range s.Select(pool(m), n) {
			counts[id]++
		}
	}

	expected := float64(n) / float64(m) * trials // 5000
	for id := uint(1); id <= m; id++ {
		assert.InDelta(t, expected, float64(counts[id]), expected*0.1, "id %d drawn %d times", id, counts[id])
	}
}

func TestSelectFirstPositionIsUniform(t *testing.T) {
	s := NewSeededSelector(9, 9)
	first := make(map[uint]int)
	for i := 0; i < 8000; i++ {
		first[s.Select(pool(4), 4)[0]]++
	}
	for id := uint(1); id <= 4; id++ {
		assert.InDelta(t, 2000, first[id], 200)
	}
}
