package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAcknowledger records what the worker did with each delivery tag.
type mockAcknowledger struct {
	mu       sync.Mutex
	acked    []uint64
	rejected []uint64
}

func (m *mockAcknowledger) Ack(tag uint64, multiple bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, tag)
	return nil
}

func (m *mockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	return m.Reject(tag, requeue)
}

func (m *mockAcknowledger) Reject(tag uint64, requeue bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, tag)
	return nil
}

func TestWorker(t *testing.T) {
	q := NewInMemoryQueue()
	h := &fakeHandler{}
	require.NoError(t, SubscribeCommentEvents(q, h, zap.NewNop()))

	ack := &mockAcknowledger{}
	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"type":"status_changed","comment_id":7,"status":"approve"}`)}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`not json`)}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte(`{"type":"deleted","comment_id":7}`)}
	close(deliveries)

	NewWorker(q, zap.NewNop()).Start(context.Background(), deliveries)

	assert.Equal(t, []uint64{1, 3}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.rejected)
	require.Len(t, h.changes, 1)
	assert.Equal(t, int64(7), h.changes[0].CommentID)
	assert.Equal(t, []int64{7}, h.deleted)
}

func TestWorkerAcksFailedEvents(t *testing.T) {
	q := NewInMemoryQueue()
	h := &fakeHandler{attachErr: assert.AnError}
	require.NoError(t, SubscribeCommentEvents(q, h, zap.NewNop()))

	ack := &mockAcknowledger{}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 5, Body: []byte(`{"type":"reference_created","comment_id":1,"reference":"r"}`)}
	close(deliveries)

	NewWorker(q, zap.NewNop()).Start(context.Background(), deliveries)

	assert.Equal(t, []uint64{5}, ack.acked)
	assert.Empty(t, ack.rejected)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewWorker(NewInMemoryQueue(), zap.NewNop()).Start(ctx, make(chan amqp.Delivery))
		close(done)
	}()
	<-done
}
