package staffclient_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/notifications"
	"github.com/menuqr/menuqr/staffclient"
)

type recordingAlerter struct {
	mu       sync.Mutex
	starts   int
	stops    int
	startErr error
}

func (a *recordingAlerter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts++
	return a.startErr
}

func (a *recordingAlerter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stops++
}

func (a *recordingAlerter) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts, a.stops
}

func orderEvent(number int64, status models.Status) notifications.Event {
	return notifications.Event{
		Type: notifications.EventNewOrder,
		Order: models.Order{
			ID:          uuid.New(),
			OrderNumber: number,
			Status:      status,
		},
	}
}

const testDelay = 5 * time.Millisecond

func waitForAdvance() { time.Sleep(10 * testDelay) }

func TestFirstEventDisplaysImmediately(t *testing.T) {
	alerter := &recordingAlerter{}
	q := staffclient.NewQueue(testDelay, alerter, nil)

	q.Push(orderEvent(1, models.StatusNew))

	current, ok := q.Current()
	require.True(t, ok)
	assert.EqualValues(t, 1, current.Order.OrderNumber)

	starts, stops := alerter.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 0, stops)
}

func TestNewEventNeverInterruptsDisplayed(t *testing.T) {
	q := staffclient.NewQueue(testDelay, nil, nil)

	q.Push(orderEvent(1, models.StatusNew))
	q.Push(orderEvent(2, models.StatusNew))
	q.Push(orderEvent(3, models.StatusNew))

	current, ok := q.Current()
	require.True(t, ok)
	assert.EqualValues(t, 1, current.Order.OrderNumber)
	assert.Equal(t, 2, q.PendingCount())
}

func TestDismissAdvancesInFIFOOrder(t *testing.T) {
	q := staffclient.NewQueue(testDelay, nil, nil)

	q.Push(orderEvent(1, models.StatusNew))
	q.Push(orderEvent(2, models.StatusNew))
	q.Push(orderEvent(3, models.StatusNew))

	q.Dismiss()

	// during the advance delay nothing is on screen
	_, ok := q.Current()
	assert.False(t, ok)

	waitForAdvance()
	current, ok := q.Current()
	require.True(t, ok)
	assert.EqualValues(t, 2, current.Order.OrderNumber)

	q.Dismiss()
	waitForAdvance()
	current, ok = q.Current()
	require.True(t, ok)
	assert.EqualValues(t, 3, current.Order.OrderNumber)
}

func TestEventDuringAdvanceDelayWaitsItsTurn(t *testing.T) {
	q := staffclient.NewQueue(50*time.Millisecond, nil, nil)

	q.Push(orderEvent(1, models.StatusNew))
	q.Dismiss()

	// arrives while the queue is between notifications
	q.Push(orderEvent(2, models.StatusNew))
	_, ok := q.Current()
	assert.False(t, ok)

	time.Sleep(100 * time.Millisecond)
	current, ok := q.Current()
	require.True(t, ok)
	assert.EqualValues(t, 2, current.Order.OrderNumber)
}

func TestAcknowledgeRoutesToFilteredList(t *testing.T) {
	alerter := &recordingAlerter{}
	q := staffclient.NewQueue(testDelay, alerter, nil)

	q.Push(orderEvent(9, models.StatusNew))

	route, ok := q.Acknowledge()
	require.True(t, ok)
	assert.Equal(t, "/orders?status=new", route)

	_, stops := alerter.counts()
	assert.Equal(t, 1, stops)

	_, displayed := q.Current()
	assert.False(t, displayed)
}

func TestAcknowledgeWithNothingDisplayed(t *testing.T) {
	q := staffclient.NewQueue(testDelay, nil, nil)
	_, ok := q.Acknowledge()
	assert.False(t, ok)
}

func TestAlertFailureIsRecoverable(t *testing.T) {
	alerter := &recordingAlerter{startErr: errors.New("autoplay blocked")}
	q := staffclient.NewQueue(testDelay, alerter, nil)

	q.Push(orderEvent(1, models.StatusNew))

	// the visual queue still works without sound
	current, ok := q.Current()
	require.True(t, ok)
	assert.EqualValues(t, 1, current.Order.OrderNumber)
}

func TestAlertStartStopPairsPerNotification(t *testing.T) {
	alerter := &recordingAlerter{}
	q := staffclient.NewQueue(testDelay, alerter, nil)

	q.Push(orderEvent(1, models.StatusNew))
	q.Push(orderEvent(2, models.StatusNew))

	q.Dismiss()
	waitForAdvance()
	q.Dismiss()
	waitForAdvance()

	starts, stops := alerter.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, stops)
}

// reentrantAlerter reads the queue back from inside Start and Stop, the
// way a sound widget that renders the current notification would.
type reentrantAlerter struct {
	q    *staffclient.Queue
	seen []bool
}

func (a *reentrantAlerter) Start() error {
	_, ok := a.q.Current()
	a.seen = append(a.seen, ok)
	return nil
}

func (a *reentrantAlerter) Stop() {
	_, ok := a.q.Current()
	a.seen = append(a.seen, ok)
}

func TestAlerterMayReadQueueFromCallbacks(t *testing.T) {
	alerter := &reentrantAlerter{}
	q := staffclient.NewQueue(testDelay, alerter, nil)
	alerter.q = q

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Push(orderEvent(1, models.StatusNew))
		q.Dismiss()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("alerter callback deadlocked against the queue")
	}
	require.Len(t, alerter.seen, 2)
	assert.True(t, alerter.seen[0])
}

func TestOnDisplayCallback(t *testing.T) {
	var mu sync.Mutex
	var shown []int64
	q := staffclient.NewQueue(testDelay, nil, func(ev notifications.Event) {
		mu.Lock()
		shown = append(shown, ev.Order.OrderNumber)
		mu.Unlock()
	})

	q.Push(orderEvent(1, models.StatusNew))
	q.Push(orderEvent(2, models.StatusNew))
	q.Dismiss()
	waitForAdvance()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{1, 2}, shown)
}
