package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/redis"
)

func newTestBus(t *testing.T) *RedisEventBus {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewRedisEventBus(redisclient.NewClientFromRedis(rdb))
	t.Cleanup(func() {
		_ = bus.Close()
		_ = rdb.Close()
	})
	return bus
}

func receive(t *testing.T, events <-chan *entities.ProfileEvent) *entities.ProfileEvent {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for event")
		return nil
	}
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	first, err := bus.Subscribe(ctx, providers.EventChannelProfileUpdates)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, providers.EventChannelProfileUpdates)
	require.NoError(t, err)

	event := &entities.ProfileEvent{
		ID:          "evt-1",
		TherapistID: "t1",
		EventType:   entities.ProfileEventUpdated,
		Timestamp:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, bus.Publish(ctx, providers.EventChannelProfileUpdates, event))

	for _, ch := range []<-chan *entities.ProfileEvent{first, second} {
		got := receive(t, ch)
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, event.TherapistID, got.TherapistID)
		assert.Equal(t, event.EventType, got.EventType)
		assert.True(t, event.Timestamp.Equal(got.Timestamp))
	}
}

func TestRedisEventBus_CancelClosesChannel(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := bus.Subscribe(ctx, providers.GetProfileChannel("t1"))
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel was not closed")
	}
}

func TestRedisEventBus_SubscribeAfterClose(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Close())

	_, err := bus.Subscribe(context.Background(), providers.EventChannelProfileUpdates)
	assert.Error(t, err)
}
