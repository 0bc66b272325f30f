package notifications_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/notifications"
)

func newRunningHub(t *testing.T) *notifications.Hub {
	hub := notifications.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func event(restaurantID uuid.UUID, number int64) notifications.Event {
	return notifications.Event{
		Type: notifications.EventNewOrder,
		Order: models.Order{
			ID:           uuid.New(),
			RestaurantID: restaurantID,
			OrderNumber:  number,
			Status:       models.StatusNew,
		},
	}
}

func receive(t *testing.T, sub *notifications.Subscriber) notifications.Event {
	t.Helper()
	select {
	case ev := <-sub.Ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return notifications.Event{}
	}
}

func assertNothing(t *testing.T, sub *notifications.Subscriber) {
	t.Helper()
	select {
	case ev := <-sub.Ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReachesJoinedSubscribers(t *testing.T) {
	hub := newRunningHub(t)
	restaurantID := uuid.New()

	first := hub.Subscribe()
	second := hub.Subscribe()
	first.Join(restaurantID)
	second.Join(restaurantID)

	hub.Publish(restaurantID, event(restaurantID, 1))

	assert.EqualValues(t, 1, receive(t, first).Order.OrderNumber)
	assert.EqualValues(t, 1, receive(t, second).Order.OrderNumber)
}

func TestPublishIsTenantScoped(t *testing.T) {
	hub := newRunningHub(t)
	restaurantA := uuid.New()
	restaurantB := uuid.New()

	subA := hub.Subscribe()
	subA.Join(restaurantA)
	subB := hub.Subscribe()
	subB.Join(restaurantB)

	hub.Publish(restaurantA, event(restaurantA, 7))

	assert.EqualValues(t, 7, receive(t, subA).Order.OrderNumber)
	assertNothing(t, subB)
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := newRunningHub(t)
	restaurantID := uuid.New()

	sub := hub.Subscribe()
	sub.Join(restaurantID)
	sub.Join(restaurantID)
	sub.Join(restaurantID)

	hub.Publish(restaurantID, event(restaurantID, 3))

	assert.EqualValues(t, 3, receive(t, sub).Order.OrderNumber)
	assertNothing(t, sub)
}

func TestJoinSwitchesRooms(t *testing.T) {
	hub := newRunningHub(t)
	restaurantA := uuid.New()
	restaurantB := uuid.New()

	sub := hub.Subscribe()
	sub.Join(restaurantA)
	sub.Join(restaurantB)

	hub.Publish(restaurantA, event(restaurantA, 1))
	assertNothing(t, sub)

	hub.Publish(restaurantB, event(restaurantB, 2))
	assert.EqualValues(t, 2, receive(t, sub).Order.OrderNumber)
}

func TestUnjoinedSubscriberReceivesNothing(t *testing.T) {
	hub := newRunningHub(t)
	restaurantID := uuid.New()

	sub := hub.Subscribe()
	hub.Publish(restaurantID, event(restaurantID, 1))

	assertNothing(t, sub)
}

func TestCloseRemovesFromRoom(t *testing.T) {
	hub := newRunningHub(t)
	restaurantID := uuid.New()

	sub := hub.Subscribe()
	sub.Join(restaurantID)
	sub.Close()

	// channel is closed; publishing afterwards must not panic
	hub.Publish(restaurantID, event(restaurantID, 1))

	_, open := <-sub.Ch
	assert.False(t, open)
}

func TestNoBacklogForLateJoiners(t *testing.T) {
	hub := newRunningHub(t)
	restaurantID := uuid.New()

	hub.Publish(restaurantID, event(restaurantID, 1))

	sub := hub.Subscribe()
	sub.Join(restaurantID)
	assertNothing(t, sub)
}

func TestPublishCounters(t *testing.T) {
	hub := newRunningHub(t)
	restaurantID := uuid.New()

	sub := hub.Subscribe()
	sub.Join(restaurantID)

	hub.Publish(restaurantID, event(restaurantID, 1))
	require.EqualValues(t, 1, receive(t, sub).Order.OrderNumber)

	assert.EqualValues(t, 1, hub.Published.Load())
	assert.EqualValues(t, 1, hub.Delivered.Load())
	assert.EqualValues(t, 0, hub.Dropped.Load())
}
