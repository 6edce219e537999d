package pqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndn-lsr/nlsr/internal/pqueue"
)

func TestQueuePopsInPriorityOrder(t *testing.T) {
	q := pqueue.New[string, int64]()
	q.Push("c", 30)
	q.Push("a", 10)
	q.Push("b", 20)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, "a", q.Pop())
	assert.Equal(t, "b", q.Pop())
	assert.Equal(t, "c", q.Pop())
	assert.Equal(t, 0, q.Len())
}

func TestQueueHandlesDuplicatePushes(t *testing.T) {
	q := pqueue.New[int, int64]()
	q.Push(1, 5)
	q.Push(1, 2) // stale-entry simulation: same value, lower priority pushed later
	assert.Equal(t, 1, q.Pop())
	assert.Equal(t, 1, q.Pop())
}
