package domain

import (
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// RangeQuery represents inclusive range filters for numeric or timestamp fields.
type RangeQuery[T comparable] struct {
	From *T
	To   *T
}

// LocalizedText carries a value in both storefront languages.
type LocalizedText struct {
	Arabic string
	French string
}

// Product describes a catalog entry with variant options and stock state.
type Product struct {
	ID          string
	Name        LocalizedText
	Description LocalizedText
	Category    string
	Price       int64
	OldPrice    *int64
	ImageURLs   []string
	Colors      []string
	Sizes       []string
	Stock       int
	InStock     bool
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasVariants reports whether the product requires a colour/size selection.
func (p Product) HasVariants() bool {
	return len(p.Colors) > 0 || len(p.Sizes) > 0
}

// Cart aggregates the mutable shopping cart state for a customer.
type Cart struct {
	ID         string
	CustomerID string
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem stores a single product variant entry within a cart.
// Lines are keyed by the (ProductID, Color, Size) triple.
type CartItem struct {
	ID        string
	ProductID string
	Name      LocalizedText
	Color     string
	Size      string
	Quantity  int
	UnitPrice int64
	ImageURL  string
	AddedAt   time.Time
	UpdatedAt *time.Time
}

// Subtotal sums the line totals across all cart items.
func (c Cart) Subtotal() int64 {
	var subtotal int64
	for _, item := range c.Items {
		if item.Quantity <= 0 || item.UnitPrice <= 0 {
			continue
		}
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	return subtotal
}

// DeliveryMode selects between courier home delivery and desk pickup.
type DeliveryMode string

const (
	// DeliveryModeHome ships the parcel to the customer's address.
	DeliveryModeHome DeliveryMode = "home"
	// DeliveryModeStopdesk leaves the parcel at a carrier pickup desk.
	DeliveryModeStopdesk DeliveryMode = "stopdesk"
)

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was submitted and awaits confirmation.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the shop confirmed the order by phone.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipping indicates the order was handed to the carrier.
	OrderStatusShipping OrderStatus = "shipping"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled and stock restored.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// Order captures a placed order with immutable line snapshots.
type Order struct {
	ID          string
	OrderNumber string
	CustomerID  string
	Status      OrderStatus
	Customer    OrderCustomer
	Delivery    OrderDelivery
	Items       []OrderLineItem
	Totals      OrderTotals
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// OrderCustomer stores contact details captured at submission.
type OrderCustomer struct {
	FullName string
	Phone    string
}

// OrderDelivery stores the destination and delivery mode for an order.
type OrderDelivery struct {
	Mode    DeliveryMode
	Wilaya  string
	Commune string
	Address string
	Fee     int64
}

// OrderLineItem mirrors cart items at the time of checkout.
type OrderLineItem struct {
	ProductID string
	Name      LocalizedText
	Color     string
	Size      string
	Quantity  int
	UnitPrice int64
	ImageURL  string
}

// LineTotal returns the extended price for the line.
func (i OrderLineItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// OrderTotals holds rolled-up monetary fields in Algerian dinars.
type OrderTotals struct {
	Subtotal    int64
	DeliveryFee int64
	Total       int64
}

// ChatThread represents a customer support conversation.
type ChatThread struct {
	ID            string
	CustomerID    string
	CustomerName  string
	LastMessage   string
	LastMessageAt time.Time
	UnreadByAdmin int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChatSender identifies the author side of a chat message.
type ChatSender string

const (
	// ChatSenderCustomer marks messages written by the shopper.
	ChatSenderCustomer ChatSender = "customer"
	// ChatSenderSupport marks messages written by shop staff.
	ChatSenderSupport ChatSender = "support"
)

// ChatMessage is a single persisted message within a thread.
type ChatMessage struct {
	ID        string
	ThreadID  string
	Sender    ChatSender
	SenderID  string
	Body      string
	CreatedAt time.Time
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
	Checks      map[string]SystemHealthCheck
}

// CursorPage wraps list results with an opaque continuation token.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}
