package cow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func committed(values ...int) Sequence[int] {
	sequence := New[int]()
	for _, value := range values {
		sequence.Queue(value)
		sequence.Commit()
	}
	return sequence
}

func TestQueueAndCommit(t *testing.T) {
	sequence := New[int]()

	sequence.Queue(1)
	assert.True(t, sequence.Pending())
	assert.Equal(t, 0, sequence.Len(), "queued values are not visible before commit")

	sequence.Queue(2)
	sequence.Commit()
	assert.False(t, sequence.Pending())
	assert.Equal(t, []int{2}, sequence.AsSlice(), "the latest queued value replaces the previous one")

	sequence.Commit()
	assert.Equal(t, 1, sequence.Len(), "committing without a queued value is a no-op")
}

func TestCloneSharesPrefix(t *testing.T) {
	//** Arrange
	original := committed(1, 2, 3)

	//** Act
	clone := original.Clone()
	clone.Queue(4)
	clone.Commit()

	//** Assert
	assert.Equal(t, []int{1, 2, 3}, original.AsSlice())
	assert.Equal(t, []int{1, 2, 3, 4}, clone.AsSlice())
	assert.True(t, clone.Shares(original), "the first branch to extend appends in place")
}

func TestDivergingBranchesCopyOnlyTheirPrefix(t *testing.T) {
	//** Arrange
	root := committed(10)
	left, right := root.Clone(), root.Clone()

	//** Act
	left.Queue(20)
	left.Commit()
	right.Queue(30)
	right.Commit()

	//** Assert
	assert.Equal(t, []int{10}, root.AsSlice())
	assert.Equal(t, []int{10, 20}, left.AsSlice())
	assert.Equal(t, []int{10, 30}, right.AsSlice())
	assert.True(t, left.Shares(root))
	assert.False(t, right.Shares(root), "the second branch must copy before appending")
	assert.Equal(t, 2, cap(right.buf.data[:right.length]), "only the used prefix is copied")
}

func TestShorterClonesAreNotMutated(t *testing.T) {
	root := committed(10)
	short := root.Clone()

	long := root.Clone()
	for i := range 100 {
		long.Queue(i)
		long.Commit()
	}

	for i := range 100 {
		branch := short.Clone()
		branch.Queue(-i)
		branch.Commit()
		assert.Equal(t, []int{10, -i}, branch.AsSlice())
	}

	assert.Equal(t, []int{10}, short.AsSlice())
	assert.Equal(t, 101, long.Len())
	assert.Equal(t, 99, long.AsSlice()[100])
}

func TestClonePreservesPendingValue(t *testing.T) {
	parent := committed(1)
	parent.Queue(2)

	child := parent.Clone()
	child.Commit()
	parent.Commit()

	assert.Equal(t, []int{1, 2}, child.AsSlice())
	assert.Equal(t, []int{1, 2}, parent.AsSlice())
	assert.False(t, parent.Shares(child), "the second commit copies since the buffer already grew")
}

func TestAsSliceCannotClobberBuffer(t *testing.T) {
	root := committed(1, 2)
	view := root.AsSlice()

	extended := append(view, 99)
	sibling := root.Clone()
	sibling.Queue(3)
	sibling.Commit()

	assert.Equal(t, []int{1, 2, 99}, extended)
	assert.Equal(t, []int{1, 2, 3}, sibling.AsSlice())
}

func TestZeroValueSequence(t *testing.T) {
	var sequence Sequence[string]
	assert.Nil(t, sequence.AsSlice())

	sequence.Queue("a")
	sequence.Commit()
	assert.Equal(t, []string{"a"}, sequence.AsSlice())
}
