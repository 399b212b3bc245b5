package services

import (
	"context"
	"time"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination         = domain.Pagination
	SortOrder          = domain.SortOrder
	LocalizedText      = domain.LocalizedText
	Product            = domain.Product
	Cart               = domain.Cart
	CartItem           = domain.CartItem
	DeliveryMode       = domain.DeliveryMode
	Order              = domain.Order
	OrderStatus        = domain.OrderStatus
	OrderCustomer      = domain.OrderCustomer
	OrderDelivery      = domain.OrderDelivery
	OrderLineItem      = domain.OrderLineItem
	OrderTotals        = domain.OrderTotals
	ChatThread         = domain.ChatThread
	ChatMessage        = domain.ChatMessage
	ChatSender         = domain.ChatSender
	SystemHealthReport = domain.SystemHealthReport
)

// ProductService manages the storefront catalog.
type ProductService interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
	ListProducts(ctx context.Context, filter ProductListFilter) (domain.CursorPage[Product], error)
	UpsertProduct(ctx context.Context, cmd UpsertProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, cmd DeleteProductCommand) error
}

// CartService manages mutable cart state, merging lines by product variant.
type CartService interface {
	GetOrCreateCart(ctx context.Context, customerID string) (Cart, error)
	AddOrUpdateItem(ctx context.Context, cmd UpsertCartItemCommand) (Cart, error)
	RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error)
	ClearCart(ctx context.Context, customerID string) error
}

// CheckoutService turns a validated cart into a persisted order, adjusting
// stock along the way.
type CheckoutService interface {
	Quote(ctx context.Context, cmd CheckoutQuoteCommand) (OrderTotals, error)
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (Order, error)
}

// OrderService encapsulates order reads and status lifecycle management.
type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListOrders(ctx context.Context, filter OrderListFilter) (domain.CursorPage[Order], error)
	TransitionStatus(ctx context.Context, cmd OrderStatusTransitionCommand) (Order, error)
	Cancel(ctx context.Context, cmd CancelOrderCommand) (Order, error)
	Delete(ctx context.Context, cmd DeleteOrderCommand) error
}

// ChatService coordinates support threads between customers and staff.
type ChatService interface {
	GetOrCreateThread(ctx context.Context, cmd OpenThreadCommand) (ChatThread, error)
	ListThreads(ctx context.Context, pager Pagination) (domain.CursorPage[ChatThread], error)
	ListMessages(ctx context.Context, cmd ListMessagesCommand) (domain.CursorPage[ChatMessage], error)
	PostMessage(ctx context.Context, cmd PostMessageCommand) (ChatMessage, error)
	MarkThreadRead(ctx context.Context, cmd MarkThreadReadCommand) (ChatThread, error)
}

// SystemService aggregates utility endpoints such as health checks.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// ErrorTranslator converts repository or platform errors into domain-aware sentinel errors.
type ErrorTranslator interface {
	Translate(err error) error
}

// Command and DTO definitions ------------------------------------------------

type ProductListFilter struct {
	Category      *string
	OnlyPublished bool
	OnlyInStock   bool
	Pagination    Pagination
}

type UpsertProductCommand struct {
	Product Product
	ActorID string
}

type DeleteProductCommand struct {
	ProductID string
	ActorID   string
}

type UpsertCartItemCommand struct {
	CustomerID string
	ProductID  string
	Color      string
	Size       string
	// Quantity replaces the line's quantity. Zero or negative removes the line.
	Quantity int
	// Merge adds Quantity onto an existing line for the same variant instead
	// of replacing it. New lines are created either way.
	Merge bool
}

type RemoveCartItemCommand struct {
	CustomerID string
	ProductID  string
	Color      string
	Size       string
}

type CheckoutQuoteCommand struct {
	CustomerID   string
	Wilaya       string
	DeliveryMode DeliveryMode
}

type PlaceOrderCommand struct {
	CustomerID   string
	FullName     string
	Phone        string
	Wilaya       string
	Commune      string
	Address      string
	DeliveryMode DeliveryMode
	Notes        string
}

type OrderListFilter = repositories.OrderListFilter

type OrderStatusTransitionCommand struct {
	OrderID        string
	TargetStatus   OrderStatus
	ActorID        string
	ExpectedStatus *OrderStatus
}

type CancelOrderCommand struct {
	OrderID string
	ActorID string
	Reason  string
}

type DeleteOrderCommand struct {
	OrderID string
	ActorID string
}

type OpenThreadCommand struct {
	CustomerID   string
	CustomerName string
}

type ListMessagesCommand struct {
	ThreadID   string
	CustomerID string
	Staff      bool
	Pagination Pagination
}

type PostMessageCommand struct {
	ThreadID   string
	SenderID   string
	Sender     ChatSender
	Body       string
	OccurredAt time.Time
}

type MarkThreadReadCommand struct {
	ThreadID string
	ActorID  string
}
