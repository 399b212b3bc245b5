package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacoubbakhouche/foufou-api/internal/notify"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/config"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Products services.ProductService
	Cart     services.CartService
	Checkout services.CheckoutService
	Orders   services.OrderService
	Chat     services.ChatService
	System   services.SystemService
}

// Deps carries the collaborators required to assemble the service layer. Registry is
// mandatory; the publisher and broadcaster are optional and simply disable push and
// live chat fan-out when absent.
type Deps struct {
	Config      config.Config
	Registry    repositories.Registry
	Publisher   notify.Publisher
	Broadcaster services.ChatBroadcaster
	Build       services.BuildInfo
	Clock       func() time.Time
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides the
// Firestore-backed registry, while tests can supply in-memory implementations.
func NewContainer(deps Deps) (*Container, error) {
	if deps.Registry == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       deps.Config,
		Repositories: deps.Registry,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(deps Deps) (Services, error) {
	reg := deps.Registry

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	var svc Services

	productSvc, err := services.NewProductService(services.ProductServiceDeps{
		Products: reg.Products(),
		Clock:    clock,
		Logger:   deps.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build product service: %w", err)
	}
	svc.Products = productSvc

	cartSvc, err := services.NewCartService(services.CartServiceDeps{
		Carts:    reg.Carts(),
		Products: reg.Products(),
		Clock:    clock,
		Logger:   deps.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Cart = cartSvc

	checkoutSvc, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Carts:     reg.Carts(),
		Products:  reg.Products(),
		Orders:    reg.Orders(),
		Counters:  reg.Counters(),
		Publisher: deps.Publisher,
		Clock:     clock,
		Logger:    deps.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkoutSvc

	orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:    reg.Orders(),
		Products:  reg.Products(),
		Publisher: deps.Publisher,
		Clock:     clock,
		Logger:    deps.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orderSvc

	if deps.Config.Features.EnableChat {
		chatSvc, err := services.NewChatService(services.ChatServiceDeps{
			Chat:        reg.Chat(),
			Broadcaster: deps.Broadcaster,
			Publisher:   deps.Publisher,
			Clock:       clock,
			Logger:      deps.Logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build chat service: %w", err)
		}
		svc.Chat = chatSvc
	}

	if healthRepo := reg.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            clock,
			Build:            deps.Build,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}
