package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConsumer() *Consumer {
	return &Consumer{log: zap.NewNop(), backoff: time.Millisecond}
}

func TestDeliverRetriesSameMessageUntilAck(t *testing.T) {
	c := testConsumer()
	m := kafka.Message{Topic: "booking.requests", Partition: 0, Offset: 5, Value: []byte("x")}

	var offsets []int64
	h := func(_ context.Context, got kafka.Message) Disposition {
		offsets = append(offsets, got.Offset)
		if len(offsets) < 3 {
			return Retry
		}
		return Ack
	}

	ok := c.deliver(context.Background(), h, m)

	require.True(t, ok)
	// transient failure tidak boleh membuat offset maju ke message berikutnya
	assert.Equal(t, []int64{5, 5, 5}, offsets)
}

func TestDeliverStopsOnContextCancel(t *testing.T) {
	c := testConsumer()
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	h := func(_ context.Context, _ kafka.Message) Disposition {
		calls++
		if calls == 2 {
			cancel()
		}
		return Retry
	}

	ok := c.deliver(ctx, h, kafka.Message{Offset: 9})

	assert.False(t, ok, "shutdown di tengah retry harus keluar tanpa Ack")
	assert.Equal(t, 2, calls)
}

func TestDeliverAcksImmediatelyOnSuccess(t *testing.T) {
	c := testConsumer()
	calls := 0
	h := func(_ context.Context, _ kafka.Message) Disposition {
		calls++
		return Ack
	}

	assert.True(t, c.deliver(context.Background(), h, kafka.Message{}))
	assert.Equal(t, 1, calls)
}
