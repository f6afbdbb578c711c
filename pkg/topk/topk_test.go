package topk

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func TestPushKeepsTopElements(t *testing.T) {
	//** Arrange
	top := New(10, intLess)
	elements := []int{
		74, 49, 27, 60, 70, 64, 8, 41, 75, 56, 4, 4,
		28, 96, 77, 55, 11, 64, 1, 68, 48, 15, 75,
		47, 51, 51, 20, 82, 73, 49,
	}

	//** Act
	for _, element := range elements {
		top.Push(element)
	}

	//** Assert
	assert.Equal(t, 10, top.Len())
	assert.Equal(t, []int{96, 82, 77, 75, 75, 74, 73, 70, 68, 64}, top.Sorted())
	minimum, ok := top.Min()
	assert.True(t, ok)
	assert.Equal(t, 64, minimum)
}

func TestPushReturnsEvicted(t *testing.T) {
	top := New(2, intLess)

	t.Run("Below capacity", func(t *testing.T) {
		_, ok := top.Push(5)
		assert.False(t, ok)
		_, ok = top.Push(3)
		assert.False(t, ok)
	})

	t.Run("Not above minimum is rejected", func(t *testing.T) {
		_, ok := top.Push(3)
		assert.False(t, ok)
		_, ok = top.Push(1)
		assert.False(t, ok)
		assert.ElementsMatch(t, []int{5, 3}, slices.Collect(top.Elements()))
	})

	t.Run("Above minimum evicts it", func(t *testing.T) {
		evicted, ok := top.Push(4)
		assert.True(t, ok)
		assert.Equal(t, 3, evicted)
		assert.ElementsMatch(t, []int{5, 4}, slices.Collect(top.Elements()))
	})
}

func TestElementsIsRestartable(t *testing.T) {
	top := New(3, intLess)
	for _, element := range []int{1, 2, 3, 4} {
		top.Push(element)
	}

	first := slices.Collect(top.Elements())
	second := slices.Collect(top.Elements())

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)

	// Early termination must be honoured
	count := 0
	for range top.Elements() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestRandomPushesKeepHighest(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	for range 50 {
		//** Arrange
		capacity := random.Intn(20) + 1
		pushes := random.Intn(100)
		top := New(capacity, intLess)
		seen := make([]int, 0, pushes)

		//** Act
		for range pushes {
			value := random.Intn(50)
			seen = append(seen, value)
			top.Push(value)
		}

		//** Assert
		slices.Sort(seen)
		slices.Reverse(seen)
		expected := seen[:min(capacity, len(seen))]
		require.Equal(t, min(pushes, capacity), top.Len())
		assert.Equal(t, expected, top.Sorted())
	}
}

func TestTiesAreBrokenByComparator(t *testing.T) {
	type ranked struct {
		score float64
		order int
	}
	// Equal scores prefer the item pushed first
	less := func(a, b ranked) bool {
		if a.score != b.score {
			return a.score < b.score
		}
		return a.order > b.order
	}

	top := New(2, less)
	for order, score := range []float64{1, 2, 2, 2} {
		top.Push(ranked{score, order})
	}

	assert.Equal(t, []ranked{{2, 1}, {2, 2}}, top.Sorted())
}

func TestInvalidCapacityPanics(t *testing.T) {
	assert.Panics(t, func() { New(0, intLess) })
}
