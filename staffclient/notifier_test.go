package staffclient_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/notifications"
	"github.com/menuqr/menuqr/staffclient"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// realtimeServer upgrades every connection and bridges it to the hub,
// allowing only the given restaurant's room, like the staff endpoint.
func realtimeServer(t *testing.T, hub *notifications.Hub, allowed uuid.UUID) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		notifications.ServeConn(hub, conn, allowed)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestNotifierReceivesPublishedOrders(t *testing.T) {
	hub := notifications.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	restaurantID := uuid.New()
	url := realtimeServer(t, hub, restaurantID)

	queue := staffclient.NewQueue(5*time.Millisecond, nil, nil)
	notifier, err := staffclient.Connect(url, "test-token", restaurantID, queue)
	require.NoError(t, err)
	t.Cleanup(func() { notifier.Close() })

	// give the join announcement time to land in the hub
	time.Sleep(200 * time.Millisecond)

	hub.Publish(restaurantID, notifications.Event{
		Type: notifications.EventNewOrder,
		Order: models.Order{
			ID:           uuid.New(),
			RestaurantID: restaurantID,
			OrderNumber:  42,
			Status:       models.StatusNew,
		},
	})

	require.Eventually(t, func() bool {
		current, ok := queue.Current()
		return ok && current.Order.OrderNumber == 42
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNotifierCannotJoinForeignRoom(t *testing.T) {
	hub := notifications.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	restaurantA := uuid.New()
	restaurantB := uuid.New()

	// the connection's token binds it to restaurant A, but it tries to
	// listen to restaurant B
	url := realtimeServer(t, hub, restaurantA)

	queue := staffclient.NewQueue(5*time.Millisecond, nil, nil)
	notifier, err := staffclient.Connect(url, "test-token", restaurantB, queue)
	require.NoError(t, err)
	t.Cleanup(func() { notifier.Close() })

	time.Sleep(200 * time.Millisecond)
	hub.Publish(restaurantB, notifications.Event{
		Type: notifications.EventNewOrder,
		Order: models.Order{
			ID:           uuid.New(),
			RestaurantID: restaurantB,
			OrderNumber:  1,
			Status:       models.StatusNew,
		},
	})

	time.Sleep(200 * time.Millisecond)
	_, ok := queue.Current()
	assert.False(t, ok, "foreign-room join must deliver nothing")
}
