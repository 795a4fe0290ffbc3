package queue

import (
	"context"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Worker feeds AMQP deliveries into a Queue.
type Worker struct {
	Queue  Queue
	Logger *zap.Logger
}

func NewWorker(q Queue, logger *zap.Logger) *Worker {
	return &Worker{Queue: q, Logger: logger}
}

// Start processes deliveries until the channel closes or ctx is done.
// Deliveries are acked once handled and never requeued, since counter
// updates are not idempotent. Malformed bodies are rejected.
func (w *Worker) Start(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	log := w.Logger.With(zap.Uint64("delivery_tag", d.DeliveryTag))

	ev, err := DecodeCommentEvent(d.Body)
	if err != nil {
		log.Warn("invalid comment event", zap.Error(err))
		if err := d.Reject(false); err != nil {
			log.Error("failed to reject delivery", zap.Error(err))
		}
		return
	}

	if err := Dispatch(ctx, w.Queue, ev); err != nil {
		log.Warn("comment event not applied",
			zap.String("type", ev.Type),
			zap.Int64("comment_id", ev.CommentID),
			zap.Error(err),
		)
	}
	if err := d.Ack(false); err != nil {
		log.Error("failed to ack delivery", zap.Error(err))
	}
}
