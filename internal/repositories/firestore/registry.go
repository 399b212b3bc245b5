package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/jacoubbakhouche/foufou-api/internal/platform/firestore"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

// Registry bundles the Firestore-backed repository implementations behind the
// repositories.Registry interface and owns the shared provider lifecycle.
type Registry struct {
	provider *pfirestore.Provider

	products *ProductRepository
	orders   *OrderRepository
	carts    *CartRepository
	chat     *ChatRepository
	counters *CounterRepository
	health   repositories.HealthRepository
}

// RegistryOption customises registry construction.
type RegistryOption func(*Registry)

// WithHealthRepository injects the health repository used for readiness
// probes. Without it Health() returns nil and the caller must not register a
// readiness endpoint.
func WithHealthRepository(health repositories.HealthRepository) RegistryOption {
	return func(r *Registry) {
		r.health = health
	}
}

// NewRegistry wires every Firestore repository onto the shared provider.
func NewRegistry(provider *pfirestore.Provider, opts ...RegistryOption) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, err
	}
	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, err
	}
	carts, err := NewCartRepository(provider)
	if err != nil {
		return nil, err
	}
	chat, err := NewChatRepository(provider)
	if err != nil {
		return nil, err
	}
	counters, err := NewCounterRepository(provider)
	if err != nil {
		return nil, err
	}

	registry := &Registry{
		provider: provider,
		products: products,
		orders:   orders,
		carts:    carts,
		chat:     chat,
		counters: counters,
	}
	for _, opt := range opts {
		opt(registry)
	}
	return registry, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Products() repositories.ProductRepository { return r.products }

func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

func (r *Registry) Carts() repositories.CartRepository { return r.carts }

func (r *Registry) Chat() repositories.ChatRepository { return r.chat }

func (r *Registry) Counters() repositories.CounterRepository { return r.counters }

func (r *Registry) Health() repositories.HealthRepository { return r.health }

var _ repositories.Registry = (*Registry)(nil)
