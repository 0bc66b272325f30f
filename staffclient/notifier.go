package staffclient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/menuqr/notifications"
)

// Notifier consumes pushed order events for one restaurant over a
// persistent connection and feeds them to a Queue. It keeps no state
// across reconnects; a fresh connection simply starts empty and staff
// recover anything missed from the order list.
type Notifier struct {
	conn  *websocket.Conn
	queue *Queue
}

// Connect dials the realtime endpoint, announces the restaurant room
// and starts consuming into queue.
func Connect(url, accessToken string, restaurantID uuid.UUID, queue *Queue) (*Notifier, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, err
	}

	join := notifications.JoinMessage{
		Type:         notifications.MessageJoinRoom,
		RestaurantID: restaurantID.String(),
	}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, err
	}

	n := &Notifier{conn: conn, queue: queue}
	go n.listen()
	return n, nil
}

func (n *Notifier) listen() {
	for {
		var event notifications.Event
		if err := n.conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Printf("notification stream closed: %v", err)
			}
			return
		}
		if event.Type != notifications.EventNewOrder {
			continue
		}
		n.queue.Push(event)
	}
}

func (n *Notifier) Close() error {
	return n.conn.Close()
}
