package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucketOrderIDs(t *testing.T, bucket *orderBucket) []int64 {
	t.Helper()
	ids := make([]int64, 0)
	for _, open := range bucket.openOrders() {
		ids = append(ids, open.OrderID)
	}
	return ids
}

func TestBucketEnqueueAndMatch(t *testing.T) {
	bucket := newOrderBucket(decimal.NewFromInt(100))
	bucket.enqueue(newOrderEntry(1, decimal.NewFromInt(10)))
	bucket.enqueue(newOrderEntry(2, decimal.NewFromInt(20)))
	bucket.enqueue(newOrderEntry(3, decimal.NewFromInt(30)))

	assert.False(t, bucket.empty())
	assert.Equal(t, "60", bucket.quantityInQueue.String())

	t.Run("partial fill hits the front of the queue first", func(t *testing.T) {
		incoming := newOrderEntry(9, decimal.NewFromInt(15))
		result := bucket.match(incoming)
		incoming.takeQuantity(result.totalMatched)

		assert.Equal(t, "15", result.totalMatched.String())
		require.Len(t, result.matched, 2)
		assert.Equal(t, int64(1), result.matched[0].orderID)
		assert.Equal(t, "10", result.matched[0].quantity.String())
		assert.Equal(t, int64(2), result.matched[1].orderID)
		assert.Equal(t, "5", result.matched[1].quantity.String())
		assert.Equal(t, []int64{1}, result.doneOrderIDs)
		assert.True(t, incoming.isDone())
		assert.Equal(t, "45", bucket.quantityInQueue.String())
	})

	t.Run("oversized incoming order drains the bucket", func(t *testing.T) {
		incoming := newOrderEntry(10, decimal.NewFromInt(100))
		result := bucket.match(incoming)
		incoming.takeQuantity(result.totalMatched)

		assert.Equal(t, "45", result.totalMatched.String())
		assert.Equal(t, []int64{2, 3}, result.doneOrderIDs)
		assert.Equal(t, "55", incoming.remaining.String())
		assert.True(t, bucket.empty())
	})
}

func TestBucketCancel(t *testing.T) {
	bucket := newOrderBucket(decimal.NewFromInt(100))
	bucket.enqueue(newOrderEntry(1, decimal.NewFromInt(10)))
	bucket.enqueue(newOrderEntry(2, decimal.NewFromInt(20)))

	assert.True(t, bucket.cancel(1))
	assert.Equal(t, "20", bucket.quantityInQueue.String())
	assert.Equal(t, []int64{2}, bucketOrderIDs(t, bucket))

	assert.False(t, bucket.cancel(1))
	assert.False(t, bucket.cancel(42))
}

func TestBucketResize(t *testing.T) {
	t.Run("sizing down keeps queue position", func(t *testing.T) {
		bucket := newOrderBucket(decimal.NewFromInt(100))
		bucket.enqueue(newOrderEntry(1, decimal.NewFromInt(10)))
		bucket.enqueue(newOrderEntry(2, decimal.NewFromInt(20)))

		require.True(t, bucket.resize(1, decimal.NewFromInt(4)))
		assert.Equal(t, []int64{1, 2}, bucketOrderIDs(t, bucket))
		assert.Equal(t, "24", bucket.quantityInQueue.String())
	})

	t.Run("same quantity keeps queue position", func(t *testing.T) {
		bucket := newOrderBucket(decimal.NewFromInt(100))
		bucket.enqueue(newOrderEntry(1, decimal.NewFromInt(10)))
		bucket.enqueue(newOrderEntry(2, decimal.NewFromInt(20)))

		require.True(t, bucket.resize(1, decimal.NewFromInt(10)))
		assert.Equal(t, []int64{1, 2}, bucketOrderIDs(t, bucket))
		assert.Equal(t, "30", bucket.quantityInQueue.String())
	})

	t.Run("sizing up moves to the back", func(t *testing.T) {
		bucket := newOrderBucket(decimal.NewFromInt(100))
		bucket.enqueue(newOrderEntry(1, decimal.NewFromInt(10)))
		bucket.enqueue(newOrderEntry(2, decimal.NewFromInt(20)))

		require.True(t, bucket.resize(1, decimal.NewFromInt(15)))
		assert.Equal(t, []int64{2, 1}, bucketOrderIDs(t, bucket))
		assert.Equal(t, "35", bucket.quantityInQueue.String())
	})

	t.Run("unknown order", func(t *testing.T) {
		bucket := newOrderBucket(decimal.NewFromInt(100))
		assert.False(t, bucket.resize(42, decimal.NewFromInt(15)))
	})
}
