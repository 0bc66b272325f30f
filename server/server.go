package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/menuqr/menuqr/handlers"
	"github.com/menuqr/menuqr/middlewares"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/notifications"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(hub *notifications.Hub) *Server {
	router := mux.NewRouter()

	orderHandler := handlers.NewOrderHandler(handlers.DBCatalog{}, handlers.DBOrderStore{}, hub)
	wsHandler := handlers.NewWSHandler(hub)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")

	// public: the QR ordering page needs no account
	router.HandleFunc("/register", handlers.Register).Methods("POST")
	router.HandleFunc("/refresh", handlers.RefreshToken).Methods("POST")
	router.HandleFunc("/login", handlers.Login).Methods("POST")
	router.HandleFunc("/restaurants/{id}/menu", handlers.GetMenu).Methods("GET")
	router.HandleFunc("/orders", orderHandler.Create).Methods("POST")

	// staff, authenticated
	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)

	authRoutes.HandleFunc("/logout", handlers.Logout).Methods("POST")

	staff := authRoutes.NewRoute().Subrouter()
	staff.Use(middlewares.RoleBasedMiddleware(models.RoleOwner, models.RoleStaff))

	staff.HandleFunc("/orders", orderHandler.List).Methods("GET")
	staff.HandleFunc("/orders/{id}", orderHandler.Get).Methods("GET")
	staff.HandleFunc("/orders/{id}/status", orderHandler.UpdateStatus).Methods("PATCH")
	staff.HandleFunc("/ws", wsHandler.Serve).Methods("GET")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
