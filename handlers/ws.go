package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/menuqr/middlewares"
	"github.com/menuqr/menuqr/notifications"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The staff dashboard is served from its own origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated staff connections and bridges them
// to the notification hub. The restaurant a connection may join is
// fixed by its token, not by what it announces.
type WSHandler struct {
	hub *notifications.Hub
}

func NewWSHandler(hub *notifications.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Printf("websocket upgrade failed, error: %v", err)
		return
	}

	notifications.ServeConn(h.hub, conn, claims.RestaurantID)
}
