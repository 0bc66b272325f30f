package orders

// CreateOrderRequest is the public order submission body. Everything in
// it is untrusted; prices are recomputed from the catalog.
type CreateOrderRequest struct {
	RestaurantID    string             `json:"restaurantId"`
	Items           []OrderLineRequest `json:"items"`
	TableNumber     *float64           `json:"tableNumber,omitempty"`
	CustomerName    string             `json:"customerName,omitempty"`
	CustomerPhone   string             `json:"customerPhone,omitempty"`
	CustomerEmail   string             `json:"customerEmail,omitempty"`
	CustomerAddress string             `json:"customerAddress,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

type OrderLineRequest struct {
	MenuItemID         string         `json:"menuItemId"`
	Quantity           int            `json:"quantity"`
	SelectedComponents []string       `json:"selectedComponents,omitempty"`
	SelectedExtras     []ExtraRequest `json:"selectedExtras,omitempty"`
}

// ExtraRequest carries a client-declared extra; its price is advisory
// only and the catalog price wins on mismatch.
type ExtraRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
