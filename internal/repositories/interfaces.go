package repositories

import (
	"context"
	"time"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Orders() OrderRepository
	Carts() CartRepository
	Chat() ChatRepository
	Counters() CounterRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductRepository persists catalog products and owns atomic stock movements.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) (domain.CursorPage[domain.Product], error)
	Upsert(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, productID string) error

	// DecrementStock atomically subtracts quantity from the product's stock,
	// failing with a *StockError when the remaining stock does not cover it.
	DecrementStock(ctx context.Context, productID string, quantity int) (domain.Product, error)
	// RestoreStock atomically adds quantity back to the product's stock.
	RestoreStock(ctx context.Context, productID string, quantity int) (domain.Product, error)
}

// OrderRepository persists order headers and provides query helpers for customers and admins.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	Delete(ctx context.Context, orderID string) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) (domain.CursorPage[domain.Order], error)
}

// CartRepository owns cart persistence with optimistic locking on the update timestamp.
type CartRepository interface {
	GetCart(ctx context.Context, customerID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart, expectedUpdate *time.Time) (domain.Cart, error)
	DeleteCart(ctx context.Context, customerID string) error
}

// ChatRepository stores support threads and their message history.
type ChatRepository interface {
	UpsertThread(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error)
	FindThread(ctx context.Context, threadID string) (domain.ChatThread, error)
	FindThreadByCustomer(ctx context.Context, customerID string) (domain.ChatThread, error)
	ListThreads(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ChatThread], error)
	AppendMessage(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error)
	ListMessages(ctx context.Context, threadID string, pager domain.Pagination) (domain.CursorPage[domain.ChatMessage], error)
}

// CounterRepository provides transaction-safe sequence numbers.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
	Configure(ctx context.Context, counterID string, cfg CounterConfig) error
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// Filter DTOs shared across repositories ------------------------------------

type ProductListFilter struct {
	Category      *string
	OnlyPublished bool
	OnlyInStock   bool
	Pagination    domain.Pagination
}

type OrderListFilter struct {
	CustomerID string
	Status     []domain.OrderStatus
	DateRange  domain.RangeQuery[time.Time]
	Pagination domain.Pagination
}

// CounterConfig customises increment behaviour and bounds for a counter.
type CounterConfig struct {
	Step         int64
	MaxValue     *int64
	InitialValue *int64
}
