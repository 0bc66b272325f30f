package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderType string

const (
	OrderTypeDineIn OrderType = "dine-in"
	OrderTypePickup OrderType = "pickup"
)

type Order struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	RestaurantID uuid.UUID   `db:"restaurant_id" json:"restaurant_id"`
	OrderNumber  int64       `db:"order_number" json:"order_number"`
	OrderType    OrderType   `db:"order_type" json:"order_type"`
	TableNumber  *int        `db:"table_number" json:"table_number,omitempty"`
	Customer     Customer    `db:"-" json:"customer"`
	Notes        string      `db:"notes" json:"notes,omitempty"`
	Items        []OrderLine `db:"-" json:"items"`
	TotalAmount  float64     `db:"total_amount" json:"total_amount"`
	Status       Status      `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

type Customer struct {
	Name    string `db:"customer_name" json:"name,omitempty"`
	Phone   string `db:"customer_phone" json:"phone,omitempty"`
	Email   string `db:"customer_email" json:"email,omitempty"`
	Address string `db:"customer_address" json:"address,omitempty"`
}

// OrderLine is a snapshot of one menu selection at order time; it is
// decoupled from later catalog edits.
type OrderLine struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	OrderID            uuid.UUID `db:"order_id" json:"order_id"`
	MenuItemID         uuid.UUID `db:"menu_item_id" json:"menu_item_id"`
	Name               string    `db:"name" json:"name"`
	Quantity           int       `db:"quantity" json:"quantity"`
	BasePrice          float64   `db:"base_price" json:"base_price"`
	PriceAtOrder       float64   `db:"price_at_order" json:"price_at_order"`
	SelectedComponents []string  `db:"-" json:"selected_components,omitempty"`
	SelectedExtras     []Extra   `db:"-" json:"selected_extras,omitempty"`
}

// LineTotal is the priced contribution of this line to the order total.
func (l OrderLine) LineTotal() float64 {
	return l.PriceAtOrder * float64(l.Quantity)
}
