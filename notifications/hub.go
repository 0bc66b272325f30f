package notifications

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/menuqr/menuqr/models"
)

type EventType string

const EventNewOrder EventType = "new_order"

// Event is what gets pushed to every staff connection joined to the
// owning restaurant's room.
type Event struct {
	Type  EventType    `json:"type"`
	Order models.Order `json:"order"`
}

// Subscriber is one live staff connection. Events are delivered on Ch;
// a subscriber that cannot keep up loses events rather than blocking
// the hub (delivery is best-effort, at-most-once).
type Subscriber struct {
	Ch chan Event

	hub *Hub
}

type joinRequest struct {
	sub          *Subscriber
	restaurantID uuid.UUID
}

type publishRequest struct {
	restaurantID uuid.UUID
	event        Event
}

// Hub is the per-restaurant fan-out registry. All room state is owned
// by the Run goroutine; the exported methods only pass messages to it.
// The hub is created by the server bootstrap and handed to the request
// layer by reference.
type Hub struct {
	join        chan joinRequest
	unsubscribe chan *Subscriber
	publish     chan publishRequest
	done        chan struct{}

	rooms      map[uuid.UUID]map[*Subscriber]struct{}
	membership map[*Subscriber]uuid.UUID

	Published *atomic.Int64
	Delivered *atomic.Int64
	Dropped   *atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		join:        make(chan joinRequest),
		unsubscribe: make(chan *Subscriber),
		publish:     make(chan publishRequest),
		done:        make(chan struct{}),
		rooms:       make(map[uuid.UUID]map[*Subscriber]struct{}),
		membership:  make(map[*Subscriber]uuid.UUID),
		Published:   atomic.NewInt64(0),
		Delivered:   atomic.NewInt64(0),
		Dropped:     atomic.NewInt64(0),
	}
}

// Run owns the room registry until Stop is called. Call it in its own
// goroutine from the bootstrap.
func (h *Hub) Run() {
	for {
		select {
		case req := <-h.join:
			h.handleJoin(req)
		case sub := <-h.unsubscribe:
			h.handleUnsubscribe(sub)
		case req := <-h.publish:
			h.handlePublish(req)
		case <-h.done:
			for sub := range h.membership {
				close(sub.Ch)
			}
			h.rooms = make(map[uuid.UUID]map[*Subscriber]struct{})
			h.membership = make(map[*Subscriber]uuid.UUID)
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Subscribe registers a connection with the hub. The subscriber is in
// no room until it joins one.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		Ch:  make(chan Event, subscriberBuffer),
		hub: h,
	}
	select {
	case h.join <- joinRequest{sub: sub}:
	case <-h.done:
		close(sub.Ch)
	}
	return sub
}

const subscriberBuffer = 32

// Join puts the subscriber in the restaurant's room. Re-joining the
// same room is a no-op; joining a different room leaves the old one,
// since a connection belongs to at most one room at a time.
func (s *Subscriber) Join(restaurantID uuid.UUID) {
	select {
	case s.hub.join <- joinRequest{sub: s, restaurantID: restaurantID}:
	case <-s.hub.done:
	}
}

// Close removes the subscriber from whatever room it is in and closes
// its event channel. Other room members are not told.
func (s *Subscriber) Close() {
	select {
	case s.hub.unsubscribe <- s:
	case <-s.hub.done:
	}
}

// Publish delivers the event to every connection currently joined to
// the restaurant's room. There is no confirmation, retry, backlog or
// replay; a disconnected staff screen recovers by re-fetching the
// order list.
func (h *Hub) Publish(restaurantID uuid.UUID, event Event) {
	select {
	case h.publish <- publishRequest{restaurantID: restaurantID, event: event}:
	case <-h.done:
	}
}

func (h *Hub) handleJoin(req joinRequest) {
	current, known := h.membership[req.sub]
	if known && current == req.restaurantID {
		return
	}
	if known && current != uuid.Nil {
		h.removeFromRoom(req.sub, current)
	}
	h.membership[req.sub] = req.restaurantID
	if req.restaurantID == uuid.Nil {
		return
	}
	room, ok := h.rooms[req.restaurantID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[req.restaurantID] = room
	}
	room[req.sub] = struct{}{}
}

func (h *Hub) handleUnsubscribe(sub *Subscriber) {
	current, known := h.membership[sub]
	if !known {
		return
	}
	if current != uuid.Nil {
		h.removeFromRoom(sub, current)
	}
	delete(h.membership, sub)
	close(sub.Ch)
}

func (h *Hub) removeFromRoom(sub *Subscriber, restaurantID uuid.UUID) {
	room, ok := h.rooms[restaurantID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, restaurantID)
	}
}

func (h *Hub) handlePublish(req publishRequest) {
	h.Published.Inc()
	room := h.rooms[req.restaurantID]
	if len(room) == 0 {
		logrus.WithField("restaurant_id", req.restaurantID).
			Debug("no subscribers for published event")
		return
	}
	for sub := range room {
		select {
		case sub.Ch <- req.event:
			h.Delivered.Inc()
		default:
			h.Dropped.Inc()
			logrus.WithField("restaurant_id", req.restaurantID).
				Warn("dropped event for slow subscriber")
		}
	}
}
