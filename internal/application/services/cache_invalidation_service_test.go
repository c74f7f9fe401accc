package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/therapist-discovery/backend/internal/application/services"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/providers"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
)

// MockEventBus delivers published events to in-process subscribers
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.ProfileEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subscribers: make(map[string][]chan *entities.ProfileEvent)}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ProfileEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[channel] {
		ch <- event
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ProfileEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.ProfileEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (m *MockEventBus) Close() error { return nil }

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, therapistID string) error {
	return m.Called(therapistID).Error(0)
}

func (m *MockInvalidator) InvalidateResults(ctx context.Context) error {
	return m.Called().Error(0)
}

// fakeIndex records index writes
type fakeIndex struct {
	*repositories.StaticTherapistRepository
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (f *fakeIndex) Index(ctx context.Context, p *entities.TherapistProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCacheInvalidationService_EventInvalidatesCaches(t *testing.T) {
	bus := NewMockEventBus()
	inv := &MockInvalidator{}
	done := make(chan struct{})
	inv.On("Invalidate", "t1").Return(nil).Once()
	inv.On("InvalidateResults").Return(nil).Once().Run(func(mock.Arguments) { close(done) })

	svc := services.NewCacheInvalidationService(bus, inv, inv)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelProfileUpdates, &entities.ProfileEvent{
		ID: "e1", TherapistID: "t1", EventType: entities.ProfileEventUpdated, Timestamp: time.Now(),
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not processed")
	}
	inv.AssertExpectations(t)
}

func TestCacheInvalidationService_HandleEventJoinsErrors(t *testing.T) {
	inv := &MockInvalidator{}
	inv.On("Invalidate", "t1").Return(errors.New("redis down"))
	inv.On("InvalidateResults").Return(nil)

	svc := services.NewCacheInvalidationService(NewMockEventBus(), inv, inv)
	err := svc.HandleEvent(&entities.ProfileEvent{ID: "e1", TherapistID: "t1", EventType: entities.ProfileEventUpdated})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	inv.AssertCalled(t, "InvalidateResults")
}

func TestCacheInvalidationService_SyncsSearchIndex(t *testing.T) {
	source := repositories.NewStaticTherapistRepository([]*entities.TherapistProfile{
		{ID: "t1", Status: entities.ProfileStatusVerified, IsPublic: true},
	})
	index := &fakeIndex{StaticTherapistRepository: repositories.NewStaticTherapistRepository(nil)}
	svc := services.NewCacheInvalidationService(NewMockEventBus(), nil, nil).WithSearchIndex(source, index)

	require.NoError(t, svc.HandleEvent(&entities.ProfileEvent{TherapistID: "t1", EventType: entities.ProfileEventVerified}))
	require.NoError(t, svc.HandleEvent(&entities.ProfileEvent{TherapistID: "t1", EventType: entities.ProfileEventUnpublished}))
	require.NoError(t, svc.HandleEvent(&entities.ProfileEvent{TherapistID: "gone", EventType: entities.ProfileEventUpdated}))

	assert.Equal(t, []string{"t1"}, index.indexed)
	assert.Equal(t, []string{"t1", "gone"}, index.deleted)
}

func TestCacheInvalidationService_InvalidateAll(t *testing.T) {
	inv := &MockInvalidator{}
	inv.On("Invalidate", "").Return(nil)
	inv.On("InvalidateResults").Return(nil)

	svc := services.NewCacheInvalidationService(NewMockEventBus(), inv, inv)
	require.NoError(t, svc.InvalidateAll(context.Background()))
	inv.AssertExpectations(t)
}
