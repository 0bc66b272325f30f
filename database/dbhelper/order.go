package dbhelper

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/menuqr/menuqr/database"
	"github.com/menuqr/menuqr/models"
	"github.com/menuqr/menuqr/orders"
)

const pqUniqueViolation = "23505"

// CreateOrder persists the order and its lines in one transaction. The
// order must already carry a reserved order number; a duplicate
// (restaurant_id, order_number) insert surfaces as ErrSequenceConflict
// and the reserved number stays burned.
func CreateOrder(tx *sql.Tx, order *models.Order) error {
	err := tx.QueryRow(`
		INSERT INTO orders
			(restaurant_id, order_number, order_type, table_number,
			 customer_name, customer_phone, customer_email, customer_address,
			 notes, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		order.RestaurantID, order.OrderNumber, order.OrderType, order.TableNumber,
		order.Customer.Name, order.Customer.Phone, order.Customer.Email, order.Customer.Address,
		order.Notes, order.TotalAmount, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return orders.ErrSequenceConflict
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		line := &order.Items[i]
		line.OrderID = order.ID

		components, err := json.Marshal(line.SelectedComponents)
		if err != nil {
			return err
		}
		extras, err := json.Marshal(line.SelectedExtras)
		if err != nil {
			return err
		}

		err = tx.QueryRow(`
			INSERT INTO order_items
				(order_id, menu_item_id, name, quantity, base_price, price_at_order,
				 selected_components, selected_extras)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			line.OrderID, line.MenuItemID, line.Name, line.Quantity,
			line.BasePrice, line.PriceAtOrder, components, extras).
			Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item %q: %w", line.Name, err)
		}
	}
	return nil
}

// GetOrderByID returns one order with its lines, scoped to the given
// restaurant. A row owned by another restaurant reads as ErrNotFound.
func GetOrderByID(restaurantID, orderID uuid.UUID) (models.Order, error) {
	var order models.Order
	err := database.MenuQR.QueryRow(`
		SELECT id, restaurant_id, order_number, order_type, table_number,
		       customer_name, customer_phone, customer_email, customer_address,
		       notes, total_amount, status, created_at, updated_at
		FROM orders
		WHERE id = $1 AND restaurant_id = $2`,
		orderID, restaurantID).
		Scan(&order.ID, &order.RestaurantID, &order.OrderNumber, &order.OrderType, &order.TableNumber,
			&order.Customer.Name, &order.Customer.Phone, &order.Customer.Email, &order.Customer.Address,
			&order.Notes, &order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Order{}, orders.ErrNotFound
	} else if err != nil {
		return models.Order{}, err
	}

	items, err := orderLines(order.ID)
	if err != nil {
		return models.Order{}, err
	}
	order.Items = items
	return order, nil
}

func orderLines(orderID uuid.UUID) ([]models.OrderLine, error) {
	rows, err := database.MenuQR.Query(`
		SELECT id, order_id, menu_item_id, name, quantity, base_price, price_at_order,
		       selected_components, selected_extras
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var (
			line       models.OrderLine
			components []byte
			extras     []byte
		)
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Name, &line.Quantity,
			&line.BasePrice, &line.PriceAtOrder, &components, &extras); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(components, &line.SelectedComponents); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(extras, &line.SelectedExtras); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// OrderFilters narrows a staff order listing; zero values mean "any".
type OrderFilters struct {
	Status    models.Status
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	SortOrder string
}

const listOrdersCap = 100

var sortColumns = map[string]string{
	"created_at":   "created_at",
	"order_number": "order_number",
	"total_amount": "total_amount",
}

// ListOrders returns at most 100 orders for one restaurant, newest
// first unless told otherwise. Lines are not loaded for listings.
func ListOrders(restaurantID uuid.UUID, filters OrderFilters) ([]models.Order, error) {
	query := `
		SELECT id, restaurant_id, order_number, order_type, table_number,
		       customer_name, customer_phone, customer_email, customer_address,
		       notes, total_amount, status, created_at, updated_at
		FROM orders
		WHERE restaurant_id = $1`
	args := []interface{}{restaurantID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		idx := len(args)
		query += fmt.Sprintf(" AND (customer_name ILIKE $%d OR customer_phone ILIKE $%d OR order_number::TEXT LIKE $%d)", idx, idx, idx)
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	column, ok := sortColumns[filters.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filters.SortOrder == "asc" {
		direction = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT %d", column, direction, listOrdersCap)

	rows, err := database.MenuQR.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.RestaurantID, &order.OrderNumber, &order.OrderType, &order.TableNumber,
			&order.Customer.Name, &order.Customer.Phone, &order.Customer.Email, &order.Customer.Address,
			&order.Notes, &order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, order)
	}
	return list, rows.Err()
}

// UpdateOrderStatus applies from -> to only if the order still holds
// the status the caller observed. It reports how many rows changed so
// the caller can tell a lost race from a missing order.
func UpdateOrderStatus(restaurantID, orderID uuid.UUID, from, to models.Status) (bool, error) {
	res, err := database.MenuQR.Exec(`
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND restaurant_id = $3 AND status = $4`,
		to, orderID, restaurantID, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
