package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the canonical form of an upstream customer. Identity
// fields may all be empty when the upstream withholds protected
// customer data; MissingIdentity flags that case for display fallback.
type Customer struct {
	ExternalID      int64
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	TotalSpent      decimal.Decimal
	OrdersCount     int
	MissingIdentity bool
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

// Product is the canonical form of an upstream product. Inventory sums
// across all variants; Price is the first variant's price.
type Product struct {
	ExternalID     int64
	Title          string
	Handle         string
	Vendor         string
	ProductType    string
	Status         string
	TotalInventory int
	Price          decimal.Decimal
	CreatedAt      *time.Time
	UpdatedAt      *time.Time
}

// Order is the canonical form of an upstream order.
// CustomerExternalID is the upstream id of the embedded customer, zero
// when the order carries none; resolution to a local customer row
// happens at persistence time and may legitimately come up empty.
type Order struct {
	ExternalID         int64
	OrderNumber        string
	CustomerExternalID int64
	Email              string
	FinancialStatus    string
	FulfillmentStatus  string
	TotalPrice         decimal.Decimal
	SubtotalPrice      decimal.Decimal
	TotalTax           decimal.Decimal
	TotalDiscounts     decimal.Decimal
	Currency           string
	OrderDate          *time.Time
	CreatedAt          *time.Time
	UpdatedAt          *time.Time
}

// CustomEvent is an append-only log entry for ephemeral commerce
// actions (checkout started, cart created) that have no persisted
// entity of their own. The link ids are upstream external ids, not
// local row ids.
type CustomEvent struct {
	Type       string
	Payload    []byte
	CustomerID *int64
	OrderID    *int64
	ProductID  *int64
	OccurredAt time.Time
}
