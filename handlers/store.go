package handlers

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/menuqr/menuqr/database"
	"github.com/menuqr/menuqr/database/dbhelper"
	"github.com/menuqr/menuqr/models"
)

// DBOrderStore backs OrderStore with the shared Postgres pool.
type DBOrderStore struct{}

func (DBOrderStore) NextOrderNumber(restaurantID uuid.UUID) (int64, error) {
	return dbhelper.NextSequenceValue(restaurantID, dbhelper.OrderSequenceName)
}

func (DBOrderStore) SaveOrder(order *models.Order) error {
	return database.Tx(func(tx *sql.Tx) error {
		return dbhelper.CreateOrder(tx, order)
	})
}

func (DBOrderStore) OrderByID(restaurantID, orderID uuid.UUID) (models.Order, error) {
	return dbhelper.GetOrderByID(restaurantID, orderID)
}

func (DBOrderStore) ListOrders(restaurantID uuid.UUID, filters dbhelper.OrderFilters) ([]models.Order, error) {
	return dbhelper.ListOrders(restaurantID, filters)
}

func (DBOrderStore) SetStatus(restaurantID, orderID uuid.UUID, from, to models.Status) (bool, error) {
	return dbhelper.UpdateOrderStatus(restaurantID, orderID, from, to)
}

// DBCatalog backs the validator's read-only menu view.
type DBCatalog struct{}

func (DBCatalog) RestaurantExists(restaurantID uuid.UUID) (bool, error) {
	return dbhelper.RestaurantExists(restaurantID)
}

func (DBCatalog) MenuItemByID(restaurantID, itemID uuid.UUID) (models.MenuItem, error) {
	return dbhelper.MenuItemByID(restaurantID, itemID)
}
