package orders

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/menuqr/models"
)

// Catalog is the read-only view of a restaurant's current menu used to
// re-validate every incoming order line.
type Catalog interface {
	RestaurantExists(restaurantID uuid.UUID) (bool, error)
	// MenuItemByID returns ErrNotFound for a missing item or one owned
	// by a different restaurant.
	MenuItemByID(restaurantID, itemID uuid.UUID) (models.MenuItem, error)
}

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type Validator struct {
	catalog Catalog
}

func NewValidator(catalog Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate reprices the request entirely from catalog data and returns
// an Order ready to be sequenced and persisted, or a rejection. It has
// no side effects beyond a warning log on corrected extra prices.
func (v *Validator) Validate(req CreateOrderRequest) (models.Order, error) {
	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return models.Order{}, invalid(CodeInvalidTenant, "restaurantId", "invalid restaurant id")
	}
	exists, err := v.catalog.RestaurantExists(restaurantID)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to look up restaurant: %w", err)
	}
	if !exists {
		return models.Order{}, invalid(CodeInvalidTenant, "restaurantId", "restaurant does not exist")
	}

	if len(req.Items) == 0 {
		return models.Order{}, invalid(CodeEmptyOrder, "items", "order must contain at least one item")
	}

	order := models.Order{
		RestaurantID: restaurantID,
		Status:       models.StatusNew,
		Notes:        strings.TrimSpace(req.Notes),
	}

	if req.TableNumber == nil {
		order.OrderType = models.OrderTypePickup
	} else {
		table := *req.TableNumber
		if table != math.Trunc(table) || table < 0 || table > math.MaxInt32 {
			return models.Order{}, invalid(CodeInvalidTable, "tableNumber", "table number must be a non-negative integer")
		}
		n := int(table)
		order.OrderType = models.OrderTypeDineIn
		order.TableNumber = &n
	}

	customer, err := validateCustomer(req, order.OrderType)
	if err != nil {
		return models.Order{}, err
	}
	order.Customer = customer

	total := 0.0
	for i, line := range req.Items {
		priced, err := v.priceLine(restaurantID, i, line)
		if err != nil {
			return models.Order{}, err
		}
		order.Items = append(order.Items, priced)
		total += priced.LineTotal()
	}
	order.TotalAmount = total

	return order, nil
}

// validateCustomer applies the contact rules; pickup orders need a
// reachable customer, dine-in orders are identified by their table.
// Contact faults are accumulated so the client can fix them in one go.
func validateCustomer(req CreateOrderRequest, orderType models.OrderType) (models.Customer, error) {
	customer := models.Customer{
		Name:    strings.TrimSpace(req.CustomerName),
		Phone:   strings.TrimSpace(req.CustomerPhone),
		Email:   strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		Address: strings.TrimSpace(req.CustomerAddress),
	}

	var result *multierror.Error
	if orderType == models.OrderTypePickup {
		if customer.Name == "" {
			result = multierror.Append(result, invalid(CodeMissingContact, "customerName", "name is required for pickup orders"))
		}
		if customer.Phone == "" {
			result = multierror.Append(result, invalid(CodeMissingContact, "customerPhone", "phone is required for pickup orders"))
		} else if !validPhone(customer.Phone) {
			result = multierror.Append(result, invalid(CodeInvalidPhone, "customerPhone", "phone number is not valid"))
		}
	} else if customer.Phone != "" && !validPhone(customer.Phone) {
		result = multierror.Append(result, invalid(CodeInvalidPhone, "customerPhone", "phone number is not valid"))
	}

	if customer.Email != "" && !emailPattern.MatchString(customer.Email) {
		result = multierror.Append(result, invalid(CodeInvalidEmail, "customerEmail", "email address is not valid"))
	}

	return customer, result.ErrorOrNil()
}

func validPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}

func (v *Validator) priceLine(restaurantID uuid.UUID, idx int, line OrderLineRequest) (models.OrderLine, error) {
	itemID, err := uuid.Parse(line.MenuItemID)
	if err != nil {
		return models.OrderLine{}, invalid(CodeItemUnavailable, fmt.Sprintf("items[%d].menuItemId", idx), "invalid menu item id")
	}

	item, err := v.catalog.MenuItemByID(restaurantID, itemID)
	if err == ErrNotFound {
		return models.OrderLine{}, invalid(CodeItemUnavailable, fmt.Sprintf("items[%d]", idx), "menu item does not exist")
	} else if err != nil {
		return models.OrderLine{}, fmt.Errorf("failed to look up menu item %s: %w", itemID, err)
	}
	if !item.IsAvailable {
		return models.OrderLine{}, invalid(CodeItemUnavailable, fmt.Sprintf("items[%d]", idx), "%q is currently unavailable", item.Name)
	}

	if line.Quantity < 1 {
		return models.OrderLine{}, invalid(CodeInvalidQuantity, fmt.Sprintf("items[%d].quantity", idx), "quantity for %q must be a positive integer", item.Name)
	}

	priced := models.OrderLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Quantity:   line.Quantity,
		BasePrice:  item.Price,
	}

	// Components are advisory and unpriced; keep non-empty ones as-is.
	for _, c := range line.SelectedComponents {
		c = strings.TrimSpace(c)
		if c != "" {
			priced.SelectedComponents = append(priced.SelectedComponents, c)
		}
	}

	unit := item.Price
	for _, reqExtra := range line.SelectedExtras {
		extra, ok := item.ExtraByName(reqExtra.Name)
		if !ok {
			return models.OrderLine{}, invalid(CodeInvalidExtra, fmt.Sprintf("items[%d]", idx), "extra %q is not offered for %q", reqExtra.Name, item.Name)
		}
		if extra.Price != reqExtra.Price {
			// Stale client menus are tolerated; the catalog price wins.
			logrus.WithFields(logrus.Fields{
				"restaurant_id": restaurantID,
				"menu_item":     item.Name,
				"extra":         extra.Name,
				"client_price":  reqExtra.Price,
				"catalog_price": extra.Price,
			}).Warn("corrected client-declared extra price")
		}
		priced.SelectedExtras = append(priced.SelectedExtras, extra)
		unit += extra.Price
	}
	priced.PriceAtOrder = unit

	return priced, nil
}
