package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/menuqr/database/dbhelper"
	"github.com/menuqr/menuqr/middlewares"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/notifications"
	"github.com/menuqr/menuqr/orders"
	"github.com/menuqr/menuqr/utils"
)

// OrderStore is the durable side of the order lifecycle.
type OrderStore interface {
	NextOrderNumber(restaurantID uuid.UUID) (int64, error)
	SaveOrder(order *models.Order) error
	OrderByID(restaurantID, orderID uuid.UUID) (models.Order, error)
	ListOrders(restaurantID uuid.UUID, filters dbhelper.OrderFilters) ([]models.Order, error)
	// SetStatus applies from -> to only if the order still holds from;
	// false means the order changed (or vanished) since it was read.
	SetStatus(restaurantID, orderID uuid.UUID, from, to models.Status) (bool, error)
}

// Publisher fans the creation event out to connected staff. It never
// returns an error: publish failures must not fail order placement.
type Publisher interface {
	Publish(restaurantID uuid.UUID, event notifications.Event)
}

type OrderHandler struct {
	validator *orders.Validator
	store     OrderStore
	hub       Publisher
}

func NewOrderHandler(catalog orders.Catalog, store OrderStore, hub Publisher) *OrderHandler {
	return &OrderHandler{
		validator: orders.NewValidator(catalog),
		store:     store,
		hub:       hub,
	}
}

// Create accepts a public order submission, reprices it from the
// catalog, reserves the next order number and persists it. The fan-out
// publish is best-effort and happens after the write.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.validator.Validate(req)
	if err != nil {
		respondValidationFailure(w, err)
		return
	}

	number, err := h.store.NextOrderNumber(order.RestaurantID)
	if err != nil {
		logrus.Printf("failed to reserve order number, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to place order, please try again")
		return
	}
	order.OrderNumber = number

	if err := h.store.SaveOrder(&order); err != nil {
		if err == orders.ErrSequenceConflict {
			logrus.WithFields(logrus.Fields{
				"restaurant_id": order.RestaurantID,
				"order_number":  order.OrderNumber,
			}).Error("order number collision on save")
			utils.RespondError(w, http.StatusInternalServerError, "failed to place order, please resubmit")
			return
		}
		logrus.Printf("failed to save order, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to place order, please try again")
		return
	}

	h.hub.Publish(order.RestaurantID, notifications.Event{
		Type:  notifications.EventNewOrder,
		Order: order,
	})

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
	})
}

// respondValidationFailure maps validation errors to a 400 carrying a
// human-readable message and, for field faults, an errors map.
func respondValidationFailure(w http.ResponseWriter, err error) {
	fields := map[string]string{}
	message := err.Error()

	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			if verr, ok := orders.AsValidation(e); ok {
				fields[verr.Field] = verr.Message
			}
		}
		if len(merr.Errors) > 0 {
			message = merr.Errors[0].Error()
		}
	} else if verr, ok := orders.AsValidation(err); ok {
		message = verr.Message
		if verr.Field != "" {
			fields[verr.Field] = verr.Message
		}
	} else {
		logrus.Printf("order validation failed, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to validate order")
		return
	}

	payload := map[string]interface{}{"message": message}
	if len(fields) > 0 {
		payload["errors"] = fields
	}
	utils.RespondJSON(w, http.StatusBadRequest, payload)
}

// List returns at most 100 of the caller's restaurant's orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filters, err := parseOrderFilters(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.store.ListOrders(claims.RestaurantID, filters)
	if err != nil {
		logrus.Printf("failed to list orders, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Get returns one order owned by the caller's restaurant, with lines.
// This is the reload-recovery path behind best-effort notifications.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.store.OrderByID(claims.RestaurantID, orderID)
	if err == orders.ErrNotFound {
		utils.RespondError(w, http.StatusNotFound, "order not found")
		return
	} else if err != nil {
		logrus.Printf("failed to fetch order, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}
	utils.RespondJSON(w, http.StatusOK, order)
}

// UpdateStatus moves an order along the lifecycle. The transition table
// is the only mutation path for status; the update applies against the
// status the handler just read, never blindly.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.store.OrderByID(claims.RestaurantID, orderID)
	if err == orders.ErrNotFound {
		utils.RespondError(w, http.StatusNotFound, "order not found")
		return
	} else if err != nil {
		logrus.Printf("failed to fetch order, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	if !req.Status.IsValid() || !order.Status.CanTransitionTo(req.Status) {
		respondInvalidTransition(w, order.Status, req.Status)
		return
	}

	applied, err := h.store.SetStatus(claims.RestaurantID, orderID, order.Status, req.Status)
	if err != nil {
		logrus.Printf("failed to update order status, error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}
	if !applied {
		// Someone else moved the order between our read and write;
		// report the transition against what it is now.
		current, err := h.store.OrderByID(claims.RestaurantID, orderID)
		if err == orders.ErrNotFound {
			utils.RespondError(w, http.StatusNotFound, "order not found")
			return
		} else if err != nil {
			logrus.Printf("failed to re-fetch order, error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "failed to update order status")
			return
		}
		respondInvalidTransition(w, current.Status, req.Status)
		return
	}

	order.Status = req.Status
	order.UpdatedAt = time.Now().UTC()
	utils.RespondJSON(w, http.StatusOK, order)
}

func respondInvalidTransition(w http.ResponseWriter, current, requested models.Status) {
	allowed := current.AllowedNext()
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	terr := &orders.InvalidTransitionError{
		From:    string(current),
		To:      string(requested),
		Allowed: names,
	}
	utils.RespondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message":        terr.Error(),
		"current_status": current,
		"allowed":        names,
	})
}

func parseOrderFilters(r *http.Request) (dbhelper.OrderFilters, error) {
	q := r.URL.Query()
	filters := dbhelper.OrderFilters{
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	if status := q.Get("status"); status != "" {
		s := models.Status(status)
		if !s.IsValid() {
			return dbhelper.OrderFilters{}, &orders.ValidationError{Message: "unknown status filter"}
		}
		filters.Status = s
	}

	if start := q.Get("startDate"); start != "" {
		t, err := parseDate(start)
		if err != nil {
			return dbhelper.OrderFilters{}, &orders.ValidationError{Message: "invalid startDate"}
		}
		filters.StartDate = &t
	}
	if end := q.Get("endDate"); end != "" {
		t, err := parseDate(end)
		if err != nil {
			return dbhelper.OrderFilters{}, &orders.ValidationError{Message: "invalid endDate"}
		}
		filters.EndDate = &t
	}
	return filters, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
