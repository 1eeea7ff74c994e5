// Package normalize converts raw upstream payloads into canonical
// records. Every function here is pure: no I/O, no clock beyond
// timestamp parsing, and no failure modes other than a missing external
// id. The upstream API has shipped several shapes for the same logical
// field over the years, so extraction runs through ordered candidate
// tables rather than single keys.
package normalize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aretelabs/storesync/internal/domain"
)

// RecordError marks a single malformed record. Callers treat it as a
// per-record failure, never a batch abort.
type RecordError struct {
	Resource string
	Reason   string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s", e.Resource, e.Reason)
}

// ExternalID extracts the upstream id without full normalization, for
// logging and task attribution; zero when absent or unparseable.
func ExternalID(raw map[string]any) int64 {
	return asInt64(raw["id"])
}

// OptionalID extracts a link id under the given key, nil when absent
// or unparseable.
func OptionalID(raw map[string]any, key string) *int64 {
	id := asInt64(raw[key])
	if id == 0 {
		return nil
	}
	return &id
}

// Timestamp returns the first parseable timestamp among the given
// keys, nil when none parses.
func Timestamp(raw map[string]any, keys ...string) *time.Time {
	return timeField(raw, keys...)
}

// Identity fields tolerate snake_case and camelCase at the top level,
// then fall back into the default address and the address list.
var (
	customerEmail = []accessor{
		key("email", "Email"),
		defaultAddress("email"),
		addressList("email"),
	}
	customerFirstName = []accessor{
		key("first_name", "firstName"),
		defaultAddress("first_name", "firstName"),
		addressList("first_name", "firstName"),
	}
	customerLastName = []accessor{
		key("last_name", "lastName"),
		defaultAddress("last_name", "lastName"),
		addressList("last_name", "lastName"),
	}
	customerPhone = []accessor{
		key("phone", "Phone"),
		defaultAddress("phone"),
		addressList("phone"),
	}
)

// Customer extracts the canonical customer. Absent identity fields are
// expected (protected customer data tiers) and flagged, not rejected.
func Customer(raw map[string]any) (domain.Customer, error) {
	id := asInt64(raw["id"])
	if id == 0 {
		return domain.Customer{}, &RecordError{Resource: domain.ResourceCustomer, Reason: "missing id"}
	}

	c := domain.Customer{
		ExternalID:  id,
		Email:       lookup(raw, customerEmail),
		FirstName:   lookup(raw, customerFirstName),
		LastName:    lookup(raw, customerLastName),
		Phone:       lookup(raw, customerPhone),
		TotalSpent:  clampDecimal(decimalField(raw, "total_spent", "totalSpent")),
		OrdersCount: clampInt(intField(raw, "orders_count", "ordersCount")),
		CreatedAt:   timeField(raw, "created_at", "createdAt"),
		UpdatedAt:   timeField(raw, "updated_at", "updatedAt"),
	}
	c.MissingIdentity = c.Email == "" && c.FirstName == "" && c.LastName == ""

	return c, nil
}

// Product extracts the canonical product. Inventory sums across all
// variants; the representative price is the first variant's
// (first-variant-wins, a display simplification carried over from the
// upstream behavior).
func Product(raw map[string]any) (domain.Product, error) {
	id := asInt64(raw["id"])
	if id == 0 {
		return domain.Product{}, &RecordError{Resource: domain.ResourceProduct, Reason: "missing id"}
	}

	var inventory int64
	price := decimal.Zero
	if variants, ok := raw["variants"].([]any); ok {
		for i, entry := range variants {
			variant, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			inventory += asInt64(variant["inventory_quantity"])
			if i == 0 {
				price = asDecimal(variant["price"])
			}
		}
	}

	return domain.Product{
		ExternalID:     id,
		Title:          lookup(raw, []accessor{key("title")}),
		Handle:         lookup(raw, []accessor{key("handle")}),
		Vendor:         lookup(raw, []accessor{key("vendor")}),
		ProductType:    lookup(raw, []accessor{key("product_type", "productType")}),
		Status:         lookup(raw, []accessor{key("status")}),
		TotalInventory: clampInt(inventory),
		Price:          clampDecimal(price),
		CreatedAt:      timeField(raw, "created_at", "createdAt"),
		UpdatedAt:      timeField(raw, "updated_at", "updatedAt"),
	}, nil
}

// Order extracts the canonical order. The embedded customer id is kept
// as an external reference; linking to a local customer row is the
// store's concern, and an unresolved link is not an error.
func Order(raw map[string]any) (domain.Order, error) {
	id := asInt64(raw["id"])
	if id == 0 {
		return domain.Order{}, &RecordError{Resource: domain.ResourceOrder, Reason: "missing id"}
	}

	var customerExternalID int64
	if customer, ok := raw["customer"].(map[string]any); ok {
		customerExternalID = asInt64(customer["id"])
	}

	return domain.Order{
		ExternalID:         id,
		OrderNumber:        lookup(raw, []accessor{key("order_number", "orderNumber", "name")}),
		CustomerExternalID: customerExternalID,
		Email:              lookup(raw, []accessor{key("email", "contact_email")}),
		FinancialStatus:    lookup(raw, []accessor{key("financial_status", "financialStatus")}),
		FulfillmentStatus:  lookup(raw, []accessor{key("fulfillment_status", "fulfillmentStatus")}),
		TotalPrice:         clampDecimal(decimalField(raw, "total_price", "totalPrice")),
		SubtotalPrice:      clampDecimal(decimalField(raw, "subtotal_price", "subtotalPrice")),
		TotalTax:           clampDecimal(decimalField(raw, "total_tax", "totalTax")),
		TotalDiscounts:     clampDecimal(decimalField(raw, "total_discounts", "totalDiscounts")),
		Currency:           lookup(raw, []accessor{key("currency")}),
		OrderDate:          timeField(raw, "processed_at", "created_at"),
		CreatedAt:          timeField(raw, "created_at", "createdAt"),
		UpdatedAt:          timeField(raw, "updated_at", "updatedAt"),
	}, nil
}
