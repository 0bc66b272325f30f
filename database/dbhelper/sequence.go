package dbhelper

import (
	"github.com/google/uuid"

	"github.com/menuqr/menuqr/database"
)

// OrderSequenceName is the per-restaurant counter backing human-facing
// order numbers.
const OrderSequenceName = "order_number"

// NextSequenceValue reserves the next value of a restaurant's counter
// in one atomic statement, so two concurrent requests for the same
// restaurant can never receive the same number. A value reserved for an
// order whose save later fails is never reissued; the gap is accepted.
func NextSequenceValue(restaurantID uuid.UUID, name string) (int64, error) {
	var value int64
	err := database.MenuQR.QueryRow(`
		INSERT INTO order_counters (restaurant_id, name, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (restaurant_id, name)
		DO UPDATE SET value = order_counters.value + 1
		RETURNING value`,
		restaurantID, name).Scan(&value)
	return value, err
}
