package models

import (
	"time"

	"github.com/google/uuid"
)

type Restaurant struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Extra is a priced optional addition to a menu item. The catalog copy
// is authoritative; extras arriving on an order are re-validated
// against it by name.
type Extra struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type MenuItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Price        float64   `db:"price" json:"price"`
	Components   []string  `db:"-" json:"components"`
	Extras       []Extra   `db:"-" json:"extras"`
	IsAvailable  bool      `db:"is_available" json:"is_available"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ExtraByName resolves a catalog extra by exact name match.
func (m MenuItem) ExtraByName(name string) (Extra, bool) {
	for _, e := range m.Extras {
		if e.Name == name {
			return e, true
		}
	}
	return Extra{}, false
}
