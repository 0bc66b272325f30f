package staffclient

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/menuqr/menuqr/notifications"
)

// Alerter plays the looping new-order sound. Start failing (e.g. an
// autoplay restriction) is recoverable: the visual queue keeps working.
// Both methods are invoked with the queue unlocked, so implementations
// may call back into it.
type Alerter interface {
	Start() error
	Stop()
}

// NoopAlerter is used when no sound device is wired up.
type NoopAlerter struct{}

func (NoopAlerter) Start() error { return nil }
func (NoopAlerter) Stop()        {}

// DefaultAdvanceDelay leaves room for the exit animation and for the
// alert sound to stop cleanly before the next notification shows.
const DefaultAdvanceDelay = 500 * time.Millisecond

// Queue presents inbound order notifications one at a time. New events
// append behind the one on screen and never replace it; the pending
// backlog is unbounded and purely in-memory, because the order store,
// not this queue, is the authoritative state.
type Queue struct {
	mu        sync.Mutex
	pending   []notifications.Event
	current   *notifications.Event
	advancing bool

	delay     time.Duration
	alerter   Alerter
	onDisplay func(notifications.Event)
}

// NewQueue builds a queue. onDisplay is invoked (with the queue
// unlocked) each time a notification reaches the screen; pass nil if
// rendering is driven by polling Current instead.
func NewQueue(delay time.Duration, alerter Alerter, onDisplay func(notifications.Event)) *Queue {
	if alerter == nil {
		alerter = NoopAlerter{}
	}
	if delay <= 0 {
		delay = DefaultAdvanceDelay
	}
	return &Queue{delay: delay, alerter: alerter, onDisplay: onDisplay}
}

// Push enqueues one inbound event. If nothing is on screen the event is
// presented immediately; otherwise it waits its turn in FIFO order.
func (q *Queue) Push(event notifications.Event) {
	q.mu.Lock()
	if q.current != nil || q.advancing {
		q.pending = append(q.pending, event)
		q.mu.Unlock()
		return
	}
	q.current = &event
	q.mu.Unlock()

	q.startAlert()
	q.notifyDisplay(event)
}

func (q *Queue) startAlert() {
	if err := q.alerter.Start(); err != nil {
		logrus.Printf("alert sound unavailable, continuing silently: %v", err)
	}
}

func (q *Queue) notifyDisplay(event notifications.Event) {
	if q.onDisplay != nil {
		q.onDisplay(event)
	}
}

// Current returns the notification on screen, if any.
func (q *Queue) Current() (notifications.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return notifications.Event{}, false
	}
	return *q.current, true
}

// PendingCount reports how many notifications are waiting behind the
// displayed one.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Dismiss clears the displayed notification and stops the alert; the
// next pending entry shows after the advance delay.
func (q *Queue) Dismiss() {
	q.mu.Lock()
	cleared := q.clearCurrent()
	q.mu.Unlock()
	if cleared {
		q.alerter.Stop()
	}
}

// Acknowledge is the explicit staff action: it clears the notification
// like Dismiss and returns the route of the order list filtered to the
// new order's status, so the view can jump straight to it.
func (q *Queue) Acknowledge() (string, bool) {
	q.mu.Lock()
	if q.current == nil {
		q.mu.Unlock()
		return "", false
	}
	route := fmt.Sprintf("/orders?status=%s", q.current.Order.Status)
	q.clearCurrent()
	q.mu.Unlock()

	q.alerter.Stop()
	return route, true
}

// clearCurrent assumes q.mu is held; the caller stops the alert once
// the lock is released.
func (q *Queue) clearCurrent() bool {
	if q.current == nil {
		return false
	}
	q.current = nil
	q.advancing = true
	time.AfterFunc(q.delay, q.advance)
	return true
}

func (q *Queue) advance() {
	q.mu.Lock()
	q.advancing = false
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.current = &next
	q.mu.Unlock()

	q.startAlert()
	q.notifyDisplay(next)
}
