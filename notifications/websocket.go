package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// MessageJoinRoom is sent by a staff connection to announce which
	// restaurant's room it wants.
	MessageJoinRoom = "join_restaurant_room"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// JoinMessage is the announced room membership. The announced id is
// only honored when it matches the restaurant bound to the caller's
// token; a client cannot listen in on another tenant's orders.
type JoinMessage struct {
	Type         string `json:"type"`
	RestaurantID string `json:"restaurant_id"`
}

// ServeConn bridges one websocket connection to the hub until the
// connection drops. allowedRestaurant comes from the authenticated
// session's tenant claim.
func ServeConn(hub *Hub, conn *websocket.Conn, allowedRestaurant uuid.UUID) {
	sub := hub.Subscribe()

	go writePump(conn, sub)
	readPump(conn, sub, allowedRestaurant)
}

func readPump(conn *websocket.Conn, sub *Subscriber, allowedRestaurant uuid.UUID) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Printf("websocket read error: %v", err)
			}
			return
		}

		var msg JoinMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != MessageJoinRoom {
			continue
		}
		restaurantID, err := uuid.Parse(msg.RestaurantID)
		if err != nil {
			continue
		}
		if restaurantID != allowedRestaurant {
			logrus.WithFields(logrus.Fields{
				"announced": restaurantID,
				"allowed":   allowedRestaurant,
			}).Warn("rejected join for foreign restaurant room")
			continue
		}
		sub.Join(restaurantID)
	}
}

func writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
