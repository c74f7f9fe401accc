package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	redisclient "github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 100

type subscription struct {
	pubsub      *redis.PubSub
	subscribers map[chan *entities.ProfileEvent]struct{}
}

// RedisEventBus implements the EventBus interface using Redis Pub/Sub.
// One Redis subscription per channel is fanned out to local subscribers.
type RedisEventBus struct {
	client   *redisclient.Client
	channels map[string]*subscription
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) *RedisEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		channels: make(map[string]*subscription),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Publish publishes a profile event
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.ProfileEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Msg("published profile event")
	return nil
}

// Subscribe returns a channel of events that is closed when ctx is done
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ProfileEvent, error) {
	b.mu.Lock()
	if b.ctx.Err() != nil {
		b.mu.Unlock()
		return nil, errors.New("event bus closed")
	}

	sub, exists := b.channels[channel]
	if !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		// Wait for the subscription confirmation so no publish is missed.
		if _, err := pubsub.Receive(ctx); err != nil {
			b.mu.Unlock()
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		sub = &subscription{pubsub: pubsub, subscribers: make(map[chan *entities.ProfileEvent]struct{})}
		b.channels[channel] = sub
		go b.receive(channel, sub)
	}

	events := make(chan *entities.ProfileEvent, subscriberBuffer)
	sub.subscribers[events] = struct{}{}
	count := len(sub.subscribers)
	b.mu.Unlock()

	log.Info().Str("channel", channel).Int("subscribers", count).Msg("subscribed to profile events")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(channel, events)
	}()

	return events, nil
}

func (b *RedisEventBus) receive(channel string, sub *subscription) {
	for msg := range sub.pubsub.Channel() {
		var event entities.ProfileEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("dropping undecodable profile event")
			continue
		}

		b.mu.RLock()
		for subscriber := range sub.subscribers {
			select {
			case subscriber <- &event:
			default:
				log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber buffer full, dropping event")
			}
		}
		b.mu.RUnlock()
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, events chan *entities.ProfileEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.channels[channel]
	if !ok {
		return
	}
	if _, ok := sub.subscribers[events]; !ok {
		return
	}
	delete(sub.subscribers, events)
	close(events)

	if len(sub.subscribers) == 0 {
		b.closeLocked(channel, sub)
	}
}

// closeLocked closes every subscriber of a channel; b.mu must be held
func (b *RedisEventBus) closeLocked(channel string, sub *subscription) error {
	for subscriber := range sub.subscribers {
		close(subscriber)
	}
	sub.subscribers = map[chan *entities.ProfileEvent]struct{}{}
	delete(b.channels, channel)

	if err := sub.pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	log.Debug().Str("channel", channel).Msg("closed profile event subscription")
	return nil
}

// Unsubscribe drops every local subscriber of a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.channels[channel]
	if !ok {
		return nil
	}
	return b.closeLocked(channel, sub)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for channel, sub := range b.channels {
		errs = append(errs, b.closeLocked(channel, sub))
	}
	return errors.Join(errs...)
}
