package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/notify"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

func newCheckoutDeps(t *testing.T, now time.Time) (CheckoutServiceDeps, *orderCaptor) {
	t.Helper()
	captor := &orderCaptor{}
	deps := CheckoutServiceDeps{
		Carts:    &stubCartRepository{},
		Products: &stubProductRepository{},
		Orders: &stubOrderRepository{
			insertFunc: captor.insert,
		},
		Counters: &stubCounterRepository{
			nextFunc: func(ctx context.Context, counterID string, step int64) (int64, error) {
				return 42, nil
			},
		},
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { return "01HTESTORDER" },
	}
	return deps, captor
}

type orderCaptor struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (c *orderCaptor) insert(ctx context.Context, order domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = append(c.orders, order)
	return nil
}

func (c *orderCaptor) last(t *testing.T) domain.Order {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.orders) == 0 {
		t.Fatalf("expected an inserted order")
	}
	return c.orders[len(c.orders)-1]
}

func TestCheckoutQuoteIncludesDeliveryFee(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	deps, _ := newCheckoutDeps(t, now)
	deps.Carts = &stubCartRepository{
		getFunc: func(ctx context.Context, customerID string) (domain.Cart, error) {
			return domain.Cart{
				CustomerID: customerID,
				Items: []domain.CartItem{
					{ProductID: "prod-1", Quantity: 2, UnitPrice: 1000},
				},
			}, nil
		},
	}

	service, err := NewCheckoutService(deps)
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	totals, err := service.Quote(context.Background(), CheckoutQuoteCommand{
		CustomerID:   "cust-1",
		Wilaya:       "Blida",
		DeliveryMode: domain.DeliveryModeHome,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.Subtotal != 2000 {
		t.Fatalf("expected subtotal 2000, got %d", totals.Subtotal)
	}
	if totals.DeliveryFee != 450 {
		t.Fatalf("expected delivery fee 450, got %d", totals.DeliveryFee)
	}
	if totals.Total != 2450 {
		t.Fatalf("expected total 2450, got %d", totals.Total)
	}
}

func TestCheckoutQuoteUnknownWilayaPricesZero(t *testing.T) {
	now := time.Date(2025, 4, 1, 11, 0, 0, 0, time.UTC)
	deps, _ := newCheckoutDeps(t, now)
	deps.Carts = &stubCartRepository{
		getFunc: func(ctx context.Context, customerID string) (domain.Cart, error) {
			return domain.Cart{}, &repositoryErrorStub{notFound: true}
		},
	}

	service, err := NewCheckoutService(deps)
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	totals, err := service.Quote(context.Background(), CheckoutQuoteCommand{
		CustomerID: "cust-1",
		Wilaya:     "Atlantis",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.DeliveryFee != 0 || totals.Total != 0 {
		t.Fatalf("expected zero totals for unknown wilaya, got %+v", totals)
	}
}

func TestCheckoutPlaceOrderSuccess(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	deps, captor := newCheckoutDeps(t, now)

	var decremented []string
	cartDeleted := false
	var published []notify.Event

	deps.Carts = &stubCartRepository{
		getFunc: func(ctx context.Context, customerID string) (domain.Cart, error) {
			return domain.Cart{
				CustomerID: customerID,
				Items: []domain.CartItem{
					{ID: "line-1", ProductID: "prod-1", Name: domain.LocalizedText{French: "Chemise"}, Color: "black", Size: "M", Quantity: 2, UnitPrice: 1500},
					{ID: "line-2", ProductID: "prod-2", Quantity: 1, UnitPrice: 800},
				},
			}, nil
		},
		deleteFunc: func(ctx context.Context, customerID string) error {
			cartDeleted = true
			return nil
		},
	}
	deps.Products = &stubProductRepository{
		decrementFunc: func(ctx context.Context, productID string, quantity int) (domain.Product, error) {
			decremented = append(decremented, productID)
			return domain.Product{ID: productID}, nil
		},
	}
	deps.Publisher = notify.PublisherFunc(func(ctx context.Context, event notify.Event) (string, error) {
		published = append(published, event)
		return "msg-1", nil
	})

	service, err := NewCheckoutService(deps)
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	order, err := service.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID:   "cust-1",
		FullName:     "Amine Benali",
		Phone:        "0550 12 34 56",
		Wilaya:       "Blida",
		Commune:      "Boufarik",
		Address:      "Rue des Oliviers 12",
		DeliveryMode: domain.DeliveryModeHome,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.OrderNumber != "FF-2025-000042" {
		t.Fatalf("expected order number FF-2025-000042, got %q", order.OrderNumber)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
	if order.Totals.Subtotal != 3800 {
		t.Fatalf("expected subtotal 3800, got %d", order.Totals.Subtotal)
	}
	if order.Totals.DeliveryFee != 450 {
		t.Fatalf("expected delivery fee 450, got %d", order.Totals.DeliveryFee)
	}
	if order.Totals.Total != 4250 {
		t.Fatalf("expected total 4250, got %d", order.Totals.Total)
	}
	if order.Customer.Phone != "0550123456" {
		t.Fatalf("expected normalised phone, got %q", order.Customer.Phone)
	}
	if len(decremented) != 2 || decremented[0] != "prod-1" || decremented[1] != "prod-2" {
		t.Fatalf("expected both lines decremented in order, got %v", decremented)
	}
	if !cartDeleted {
		t.Fatalf("expected cart cleared after checkout")
	}

	inserted := captor.last(t)
	if len(inserted.Items) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(inserted.Items))
	}
	if inserted.Items[0].Name.French != "Chemise" {
		t.Fatalf("expected line snapshot to carry localized name")
	}

	if len(published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(published))
	}
	if published[0].Kind != notify.KindOrderPlaced || published[0].Audience != notify.AudienceAdmins {
		t.Fatalf("unexpected event %+v", published[0])
	}
}

func TestCheckoutPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	now := time.Date(2025, 4, 3, 15, 0, 0, 0, time.UTC)
	deps, captor := newCheckoutDeps(t, now)

	var restored []string

	deps.Carts = &stubCartRepository{
		getFunc: func(ctx context.Context, customerID string) (domain.Cart, error) {
			return domain.Cart{
				CustomerID: customerID,
				Items: []domain.CartItem{
					{ID: "line-1", ProductID: "prod-1", Quantity: 1, UnitPrice: 1000},
					{ID: "line-2", ProductID: "prod-2", Quantity: 5, UnitPrice: 500},
				},
			}, nil
		},
	}
	deps.Products = &stubProductRepository{
		decrementFunc: func(ctx context.Context, productID string, quantity int) (domain.Product, error) {
			if productID == "prod-2" {
				stockErr := repositories.NewStockError(repositories.StockErrorInsufficient, productID, "", nil)
				stockErr.Requested = quantity
				stockErr.Available = 2
				return domain.Product{}, stockErr
			}
			return domain.Product{ID: productID}, nil
		},
		restoreFunc: func(ctx context.Context, productID string, quantity int) (domain.Product, error) {
			restored = append(restored, productID)
			return domain.Product{ID: productID}, nil
		},
	}

	service, err := NewCheckoutService(deps)
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	_, err = service.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID:   "cust-2",
		FullName:     "Sara Khelifi",
		Phone:        "0661234567",
		Wilaya:       "Alger",
		Commune:      "Bab El Oued",
		Address:      "Cité 5 Juillet",
		DeliveryMode: domain.DeliveryModeHome,
	})
	if !errors.Is(err, ErrCheckoutInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if len(restored) != 1 || restored[0] != "prod-1" {
		t.Fatalf("expected prod-1 restored, got %v", restored)
	}
	if len(captor.orders) != 0 {
		t.Fatalf("expected no persisted order")
	}
}

func TestCheckoutPlaceOrderFailedRestoreEscalates(t *testing.T) {
	now := time.Date(2025, 4, 3, 16, 0, 0, 0, time.UTC)
	deps, captor := newCheckoutDeps(t, now)

	deps.Carts = &stubCartRepository{
		getFunc: func(ctx context.Context, customerID string) (domain.Cart, error) {
			return domain.Cart{
				CustomerID: customerID,
				Items: []domain.CartItem{
					{ID: "line-1", ProductID: "prod-1", Quantity: 1, UnitPrice: 1000},
					{ID: "line-2", ProductID: "prod-2", Quantity: 5, UnitPrice: 500},
				},
			}, nil
		},
	}
	deps.Products = &stubProductRepository{
		decrementFunc: func(ctx context.Context, productID string, quantity int) (domain.Product, error) {
			if productID == "prod-2" {
				stockErr := repositories.NewStockError(repositories.StockErrorInsufficient, productID, "", nil)
				stockErr.Requested = quantity
				stockErr.Available = 2
				return domain.Product{}, stockErr
			}
			return domain.Product{ID: productID}, nil
		},
		restoreFunc: func(ctx context.Context, productID string, quantity int) (domain.Product, error) {
			return domain.Product{}, &repositoryErrorStub{unavailable: true}
		},
	}

	service, err := NewCheckoutService(deps)
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	_, err = service.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID:   "cust-2",
		FullName:     "Sara Khelifi",
		Phone:        "0661234567",
		Wilaya:       "Alger",
		Commune:      "Bab El Oued",
		Address:      "Cité 5 Juillet",
		DeliveryMode: domain.DeliveryModeHome,
	})
	if !errors.Is(err, ErrCheckoutStockRestoreFailed) {
		t.Fatalf("expected stock restore failure to surface, got %v", err)
	}
	if len(captor.orders) != 0 {
		t.Fatalf("expected no persisted order")
	}
}

func TestCheckoutPlaceOrderPersistFailureRestoresStock(t *testing.T) {
	now := time.Date(2025, 4, 4, 12, 0, 0, 0, time.UTC)
	deps, _ := newCheckoutDeps(t, now)

	var restored []string

	deps.Carts = &stubCartRepository{
		getFunc: func(ctx context.Context, customerID string) (domain.Cart, error) {
			return domain.Cart{
				CustomerID: customerID,
				Items: []domain.CartItem{
					{ID: "line-1", ProductID: "prod-1", Quantity: 2, UnitPrice: 700},
				},
			}, nil
		},
	}
	deps.Products = &stubProductRepository{
		decrementFunc: func(ctx context.Context, productID string, quantity int) (domain.Product, error) {
			return domain.Product{ID: productID}, nil
		},
		restoreFunc: func(ctx context.Context, productID string, quantity int) (domain.Product, error) {
			restored = append(restored, productID)
			return domain.Product{ID: productID}, nil
		},
	}
	deps.Orders = &stubOrderRepository{
		insertFunc: func(ctx context.Context, order domain.Order) error {
			return &repositoryErrorStub{unavailable: true}
		},
	}

	service, err := NewCheckoutService(deps)
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	_, err = service.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID:   "cust-3",
		FullName:     "Yacine Merad",
		Phone:        "0770112233",
		Wilaya:       "Blida",
		Commune:      "Mouzaia",
		Address:      "Rue Centrale",
		DeliveryMode: domain.DeliveryModeHome,
	})
	if !errors.Is(err, ErrCheckoutUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if len(restored) != 1 || restored[0] != "prod-1" {
		t.Fatalf("expected stock restored after persist failure, got %v", restored)
	}
}

func TestCheckoutPlaceOrderValidation(t *testing.T) {
	now := time.Date(2025, 4, 5, 8, 0, 0, 0, time.UTC)

	base := PlaceOrderCommand{
		CustomerID:   "cust-4",
		FullName:     "Lina Haddad",
		Phone:        "0550987654",
		Wilaya:       "Blida",
		Commune:      "Boufarik",
		Address:      "Rue 1er Novembre",
		DeliveryMode: domain.DeliveryModeHome,
	}

	cases := []struct {
		name   string
		mutate func(cmd *PlaceOrderCommand)
	}{
		{"missing name", func(cmd *PlaceOrderCommand) { cmd.FullName = " " }},
		{"bad phone", func(cmd *PlaceOrderCommand) { cmd.Phone = "12345" }},
		{"missing wilaya", func(cmd *PlaceOrderCommand) { cmd.Wilaya = "" }},
		{"home without commune", func(cmd *PlaceOrderCommand) { cmd.Commune = "" }},
		{"home without address", func(cmd *PlaceOrderCommand) { cmd.Address = "" }},
		{"stopdesk not offered", func(cmd *PlaceOrderCommand) {
			cmd.Wilaya = "Illizi"
			cmd.DeliveryMode = domain.DeliveryModeStopdesk
		}},
		{"stopdesk unknown wilaya", func(cmd *PlaceOrderCommand) {
			cmd.Wilaya = "Atlantis"
			cmd.DeliveryMode = domain.DeliveryModeStopdesk
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps, _ := newCheckoutDeps(t, now)
			service, err := NewCheckoutService(deps)
			if err != nil {
				t.Fatalf("unexpected error constructing checkout service: %v", err)
			}

			cmd := base
			tc.mutate(&cmd)
			if _, err := service.PlaceOrder(context.Background(), cmd); !errors.Is(err, ErrCheckoutInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestCheckoutPlaceOrderEmptyCart(t *testing.T) {
	now := time.Date(2025, 4, 6, 10, 0, 0, 0, time.UTC)
	deps, _ := newCheckoutDeps(t, now)
	deps.Carts = &stubCartRepository{
		getFunc: func(ctx context.Context, customerID string) (domain.Cart, error) {
			return domain.Cart{CustomerID: customerID, Items: []domain.CartItem{}}, nil
		},
	}

	service, err := NewCheckoutService(deps)
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	_, err = service.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID:   "cust-5",
		FullName:     "Nassim Brahimi",
		Phone:        "0540102030",
		Wilaya:       "Alger",
		Commune:      "Hydra",
		Address:      "Rue des Pins",
		DeliveryMode: domain.DeliveryModeHome,
	})
	if !errors.Is(err, ErrCheckoutCartEmpty) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

// Shared stubs ---------------------------------------------------------------

type stubOrderRepository struct {
	insertFunc func(ctx context.Context, order domain.Order) error
	updateFunc func(ctx context.Context, order domain.Order) error
	deleteFunc func(ctx context.Context, orderID string) error
	findFunc   func(ctx context.Context, orderID string) (domain.Order, error)
	listFunc   func(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error)
}

func (s *stubOrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFunc != nil {
		return s.insertFunc(ctx, order)
	}
	return nil
}

func (s *stubOrderRepository) Update(ctx context.Context, order domain.Order) error {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, order)
	}
	return nil
}

func (s *stubOrderRepository) Delete(ctx context.Context, orderID string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, orderID)
	}
	return nil
}

func (s *stubOrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findFunc != nil {
		return s.findFunc(ctx, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, filter)
	}
	return domain.CursorPage[domain.Order]{}, errors.New("not implemented")
}

type stubCounterRepository struct {
	nextFunc      func(ctx context.Context, counterID string, step int64) (int64, error)
	configureFunc func(ctx context.Context, counterID string, cfg repositories.CounterConfig) error
}

func (s *stubCounterRepository) Next(ctx context.Context, counterID string, step int64) (int64, error) {
	if s.nextFunc != nil {
		return s.nextFunc(ctx, counterID, step)
	}
	return 0, errors.New("not implemented")
}

func (s *stubCounterRepository) Configure(ctx context.Context, counterID string, cfg repositories.CounterConfig) error {
	if s.configureFunc != nil {
		return s.configureFunc(ctx, counterID, cfg)
	}
	return nil
}
