package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/config"
	"github.com/stemsi/evaluation-backend/internal/model"
)

// Publisher fans out change events to interested clients.
type Publisher interface {
	Publish(ctx context.Context, ev model.ChangeEvent) error
}

// New builds a ChangeEvent stamped with a fresh id and the current time.
func New(entity string, action model.ChangeAction, entityID, subjectID int, data any) model.ChangeEvent {
	return model.ChangeEvent{
		ID:         uuid.NewString(),
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		SubjectID:  subjectID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Nop discards every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, model.ChangeEvent) error { return nil }

// redisPublisher is the subset of *redis.Client used for publishing.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes events on the global channel and on the per-entity channel.
type RedisPublisher struct {
	rdb      redisPublisher
	channels *config.EventChannelStruct
	log      zerolog.Logger
}

func NewRedisPublisher(rdb redisPublisher, channels *config.EventChannelStruct, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		rdb:      rdb,
		channels: channels,
		log:      log.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev model.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type(), err)
	}

	for _, channel := range []string{p.channels.All(), p.channels.Entity(ev.Entity)} {
		if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
			return fmt.Errorf("publish %s to %s: %w", ev.Type(), channel, err)
		}
	}

	p.log.Debug().
		Str("event", ev.Type()).
		Int("entity_id", ev.EntityID).
		Msg("Change event published")
	return nil
}

// Channels lists the channels a subscriber should listen on. An empty entity
// subscribes to every change.
func Channels(channels *config.EventChannelStruct, entity string) []string {
	switch entity {
	case model.EntitySubject, model.EntityCompetency:
		return []string{channels.Entity(entity)}
	default:
		return []string{channels.All()}
	}
}
