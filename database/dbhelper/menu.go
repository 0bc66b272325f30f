package dbhelper

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/menuqr/menuqr/database"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/orders"
)

func RestaurantExists(restaurantID uuid.UUID) (bool, error) {
	var exists bool
	err := database.MenuQR.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM restaurants
			WHERE id = $1 AND archived_at IS NULL
		)`, restaurantID).Scan(&exists)
	return exists, err
}

func MenuItemByID(restaurantID, itemID uuid.UUID) (models.MenuItem, error) {
	var (
		item       models.MenuItem
		components []byte
		extras     []byte
	)
	err := database.MenuQR.QueryRow(`
		SELECT id, restaurant_id, name, description, price, components, extras, is_available, created_at
		FROM menu_items
		WHERE id = $1 AND restaurant_id = $2 AND archived_at IS NULL`,
		itemID, restaurantID).
		Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
			&components, &extras, &item.IsAvailable, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return models.MenuItem{}, orders.ErrNotFound
	} else if err != nil {
		return models.MenuItem{}, err
	}

	if err := json.Unmarshal(components, &item.Components); err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to decode components for item %s: %w", item.ID, err)
	}
	if err := json.Unmarshal(extras, &item.Extras); err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to decode extras for item %s: %w", item.ID, err)
	}
	return item, nil
}

func ListAvailableMenuItems(restaurantID uuid.UUID) ([]models.MenuItem, error) {
	rows, err := database.MenuQR.Query(`
		SELECT id, restaurant_id, name, description, price, components, extras, is_available, created_at
		FROM menu_items
		WHERE restaurant_id = $1 AND is_available AND archived_at IS NULL
		ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var (
			item       models.MenuItem
			components []byte
			extras     []byte
		)
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
			&components, &extras, &item.IsAvailable, &item.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(components, &item.Components); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(extras, &item.Extras); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateMenuItem exists for seeding and tests; menu editing screens
// live outside this service.
func CreateMenuItem(item models.MenuItem) (uuid.UUID, error) {
	components, err := json.Marshal(item.Components)
	if err != nil {
		return uuid.Nil, err
	}
	extras, err := json.Marshal(item.Extras)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = database.MenuQR.QueryRow(`
		INSERT INTO menu_items (restaurant_id, name, description, price, components, extras, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		item.RestaurantID, item.Name, item.Description, item.Price, components, extras, item.IsAvailable).
		Scan(&id)
	return id, err
}
