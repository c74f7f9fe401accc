package providers

import (
	"context"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// EventBus publishes and subscribes to therapist profile changes
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ProfileEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ProfileEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelProfileUpdates carries every profile change
	EventChannelProfileUpdates = "therapist:profiles"

	// EventChannelProfilePrefix is the prefix for per-therapist channels
	EventChannelProfilePrefix = "therapist:"
)

// GetProfileChannel returns the channel name for a single therapist
func GetProfileChannel(therapistID string) string {
	return EventChannelProfilePrefix + therapistID
}
