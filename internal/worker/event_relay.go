package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/event"
	"github.com/stemsi/evaluation-backend/internal/model"
)

const (
	RelayBufferSize     = 256
	RelayPublishTimeout = 2 * time.Second
	RelayShutdownGrace  = 5 * time.Second
)

// EventRelay decouples request handling from event delivery. Publish only
// enqueues; Start drains the queue into the downstream publisher.
type EventRelay struct {
	queue chan model.ChangeEvent
	next  event.Publisher
	log   zerolog.Logger
}

func NewEventRelay(next event.Publisher, size int, log zerolog.Logger) *EventRelay {
	if size <= 0 {
		size = RelayBufferSize
	}
	return &EventRelay{
		queue: make(chan model.ChangeEvent, size),
		next:  next,
		log:   log.With().Str("component", "event_relay").Logger(),
	}
}

// Publish never blocks. A full queue drops the event.
func (r *EventRelay) Publish(_ context.Context, ev model.ChangeEvent) error {
	select {
	case r.queue <- ev:
		return nil
	default:
		r.log.Warn().Str("event", ev.Type()).Int("entity_id", ev.EntityID).Msg("Event queue full, dropping event")
		return nil
	}
}

// Start runs until ctx is cancelled, then flushes what is left in the queue.
func (r *EventRelay) Start(ctx context.Context) {
	r.log.Info().Msg("EventRelay started")

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case ev := <-r.queue:
			r.deliver(ctx, ev)
		}
	}
}

func (r *EventRelay) deliver(ctx context.Context, ev model.ChangeEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, RelayPublishTimeout)
	defer cancel()

	if err := r.next.Publish(pubCtx, ev); err != nil {
		r.log.Error().Err(err).Str("event", ev.Type()).Int("entity_id", ev.EntityID).Msg("Failed to publish change event")
	}
}

func (r *EventRelay) shutdown() {
	r.log.Info().Int("pending", len(r.queue)).Msg("EventRelay stopping, flushing remaining events...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), RelayShutdownGrace)
	defer cancel()

	for {
		select {
		case ev := <-r.queue:
			r.deliver(shutdownCtx, ev)
		default:
			return
		}
	}
}
