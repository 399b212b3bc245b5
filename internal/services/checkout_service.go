package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/notify"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
	"github.com/jacoubbakhouche/foufou-api/internal/shipping"
)

const (
	orderCounterID   = "orders"
	orderIDPrefix    = "ord_"
	maxCheckoutNotes = 1000
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input parameters.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
	// ErrCheckoutCartEmpty indicates the customer's cart holds no purchasable lines.
	ErrCheckoutCartEmpty = errors.New("checkout: cart is empty")
	// ErrCheckoutInsufficientStock indicates a cart line exceeds the remaining stock.
	ErrCheckoutInsufficientStock = errors.New("checkout: insufficient stock")
	// ErrCheckoutConflict indicates a concurrent modification prevented completing checkout.
	ErrCheckoutConflict = errors.New("checkout: conflict")
	// ErrCheckoutStockRestoreFailed indicates compensation after a failed checkout
	// could not return every decremented line to stock. Manual correction is needed.
	ErrCheckoutStockRestoreFailed = errors.New("checkout: stock restore failed")
)

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Carts       repositories.CartRepository
	Products    repositories.ProductRepository
	Orders      repositories.OrderRepository
	Counters    repositories.CounterRepository
	Publisher   notify.Publisher
	Clock       func() time.Time
	Logger      func(ctx context.Context, event string, fields map[string]any)
	IDGenerator func() string
}

type checkoutService struct {
	carts     repositories.CartRepository
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
	counters  repositories.CounterRepository
	publisher notify.Publisher
	newID     func() string
	now       func() time.Time
	logger    func(ctx context.Context, event string, fields map[string]any)
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Carts == nil {
		return nil, errors.New("checkout service: cart repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("checkout service: product repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("checkout service: counter repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &checkoutService{
		carts:     deps.Carts,
		products:  deps.Products,
		orders:    deps.Orders,
		counters:  deps.Counters,
		publisher: deps.Publisher,
		newID:     idGen,
		now: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// Quote prices the customer's current cart for the requested destination.
// Unknown wilayas price the delivery at zero; the shop settles by phone.
func (s *checkoutService) Quote(ctx context.Context, cmd CheckoutQuoteCommand) (OrderTotals, error) {
	if s == nil || s.carts == nil {
		return OrderTotals{}, ErrCheckoutUnavailable
	}

	customerID := strings.TrimSpace(cmd.CustomerID)
	if customerID == "" {
		return OrderTotals{}, ErrCheckoutInvalidInput
	}

	cart, err := s.carts.GetCart(ctx, customerID)
	if err != nil {
		if isRepoNotFound(err) {
			cart = domain.Cart{}
		} else {
			return OrderTotals{}, s.translateRepoError(err)
		}
	}

	mode := cmd.DeliveryMode
	if mode != domain.DeliveryModeHome && mode != domain.DeliveryModeStopdesk {
		mode = domain.DeliveryModeHome
	}

	subtotal := cart.Subtotal()
	fee := shipping.Fee(strings.TrimSpace(cmd.Wilaya), mode)
	return OrderTotals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}, nil
}

// PlaceOrder validates the submission, decrements stock line by line, then
// persists the pending order. Any failure after a decrement restores the
// already-claimed stock before reporting the error.
func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (Order, error) {
	if s == nil || s.carts == nil || s.products == nil || s.orders == nil || s.counters == nil {
		return Order{}, ErrCheckoutUnavailable
	}

	submission, err := s.validateSubmission(cmd)
	if err != nil {
		return Order{}, err
	}

	cart, err := s.carts.GetCart(ctx, submission.customerID)
	if err != nil {
		if isRepoNotFound(err) {
			return Order{}, ErrCheckoutCartEmpty
		}
		return Order{}, s.translateRepoError(err)
	}

	lines := purchasableLines(cart.Items)
	if len(lines) == 0 {
		return Order{}, ErrCheckoutCartEmpty
	}

	claimed, err := s.claimStock(ctx, lines)
	if err != nil {
		return Order{}, err
	}

	order, err := s.buildOrder(ctx, submission, lines)
	if err != nil {
		if restoreErr := s.restoreClaimed(ctx, claimed, "checkout.number_failed"); restoreErr != nil {
			return Order{}, restoreErr
		}
		return Order{}, err
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		if restoreErr := s.restoreClaimed(ctx, claimed, "checkout.persist_failed"); restoreErr != nil {
			return Order{}, restoreErr
		}
		return Order{}, s.translateRepoError(err)
	}

	if err := s.carts.DeleteCart(ctx, submission.customerID); err != nil && !isRepoNotFound(err) {
		s.logger(ctx, "checkout.cart_clear_failed", map[string]any{
			"customerID": submission.customerID,
			"orderID":    order.ID,
			"error":      err.Error(),
		})
	}

	s.announceOrder(ctx, order)
	return order, nil
}

type checkoutSubmission struct {
	customerID string
	fullName   string
	phone      string
	wilaya     string
	commune    string
	address    string
	mode       domain.DeliveryMode
	notes      string
}

func (s *checkoutService) validateSubmission(cmd PlaceOrderCommand) (checkoutSubmission, error) {
	sub := checkoutSubmission{
		customerID: strings.TrimSpace(cmd.CustomerID),
		fullName:   strings.TrimSpace(cmd.FullName),
		phone:      normalisePhone(cmd.Phone),
		wilaya:     strings.TrimSpace(cmd.Wilaya),
		commune:    strings.TrimSpace(cmd.Commune),
		address:    strings.TrimSpace(cmd.Address),
		mode:       cmd.DeliveryMode,
		notes:      strings.TrimSpace(cmd.Notes),
	}

	if sub.customerID == "" {
		return checkoutSubmission{}, ErrCheckoutInvalidInput
	}
	if sub.fullName == "" {
		return checkoutSubmission{}, fmt.Errorf("%w: full name is required", ErrCheckoutInvalidInput)
	}
	if !validPhone(sub.phone) {
		return checkoutSubmission{}, fmt.Errorf("%w: phone number is invalid", ErrCheckoutInvalidInput)
	}
	if sub.wilaya == "" {
		return checkoutSubmission{}, fmt.Errorf("%w: wilaya is required", ErrCheckoutInvalidInput)
	}
	if len(sub.notes) > maxCheckoutNotes {
		return checkoutSubmission{}, fmt.Errorf("%w: notes must be %d characters or fewer", ErrCheckoutInvalidInput, maxCheckoutNotes)
	}

	switch sub.mode {
	case domain.DeliveryModeStopdesk:
		// Covers unknown wilayas too: pickup is never available there.
		if !shipping.PickupAvailable(sub.wilaya) {
			return checkoutSubmission{}, fmt.Errorf("%w: stopdesk delivery is not offered in %s", ErrCheckoutInvalidInput, sub.wilaya)
		}
	case domain.DeliveryModeHome, "":
		sub.mode = domain.DeliveryModeHome
		if sub.commune == "" {
			return checkoutSubmission{}, fmt.Errorf("%w: commune is required for home delivery", ErrCheckoutInvalidInput)
		}
		if sub.address == "" {
			return checkoutSubmission{}, fmt.Errorf("%w: address is required for home delivery", ErrCheckoutInvalidInput)
		}
	default:
		return checkoutSubmission{}, fmt.Errorf("%w: unknown delivery mode %q", ErrCheckoutInvalidInput, string(sub.mode))
	}

	return sub, nil
}

// claimStock decrements each line in order. The first failure rolls back the
// lines already claimed and surfaces the failing product.
func (s *checkoutService) claimStock(ctx context.Context, lines []domain.CartItem) ([]domain.CartItem, error) {
	claimed := make([]domain.CartItem, 0, len(lines))
	for _, line := range lines {
		if _, err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			cause := s.translateStockError(line, err)
			if restoreErr := s.restoreClaimed(ctx, claimed, "checkout.stock_claim_failed"); restoreErr != nil {
				return nil, fmt.Errorf("%w; original failure: %v", restoreErr, cause)
			}
			return nil, cause
		}
		claimed = append(claimed, line)
	}
	return claimed, nil
}

// restoreClaimed returns the claimed quantities to stock. Any line that
// cannot be restored leaves the catalog undercounting, so the failure is
// escalated to the caller for manual correction rather than swallowed.
func (s *checkoutService) restoreClaimed(ctx context.Context, claimed []domain.CartItem, event string) error {
	var failed error
	for _, line := range claimed {
		if _, err := s.products.RestoreStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.logger(ctx, event, map[string]any{
				"productID": line.ProductID,
				"quantity":  line.Quantity,
				"error":     err.Error(),
			})
			failed = fmt.Errorf("%w: product %s quantity %d: %v", ErrCheckoutStockRestoreFailed, line.ProductID, line.Quantity, err)
		}
	}
	return failed
}

func (s *checkoutService) buildOrder(ctx context.Context, sub checkoutSubmission, lines []domain.CartItem) (domain.Order, error) {
	seq, err := s.counters.Next(ctx, orderCounterID, 1)
	if err != nil {
		return domain.Order{}, s.translateRepoError(err)
	}

	now := s.now()
	fee := shipping.Fee(sub.wilaya, sub.mode)

	items := make([]domain.OrderLineItem, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		items = append(items, domain.OrderLineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Color:     line.Color,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			ImageURL:  line.ImageURL,
		})
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	return domain.Order{
		ID:          orderIDPrefix + strings.ToLower(s.newID()),
		OrderNumber: formatOrderNumber(now, seq),
		CustomerID:  sub.customerID,
		Status:      domain.OrderStatusPending,
		Customer: domain.OrderCustomer{
			FullName: sub.fullName,
			Phone:    sub.phone,
		},
		Delivery: domain.OrderDelivery{
			Mode:    sub.mode,
			Wilaya:  sub.wilaya,
			Commune: sub.commune,
			Address: sub.address,
			Fee:     fee,
		},
		Items: items,
		Totals: domain.OrderTotals{
			Subtotal:    subtotal,
			DeliveryFee: fee,
			Total:       subtotal + fee,
		},
		Notes:     sub.notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *checkoutService) announceOrder(ctx context.Context, order domain.Order) {
	if s.publisher == nil {
		return
	}
	_, err := s.publisher.Publish(ctx, notify.Event{
		Kind:        notify.KindOrderPlaced,
		Audience:    notify.AudienceAdmins,
		CustomerID:  order.CustomerID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Title: domain.LocalizedText{
			Arabic: "طلب جديد " + order.OrderNumber,
			French: "Nouvelle commande " + order.OrderNumber,
		},
		Body: domain.LocalizedText{
			Arabic: fmt.Sprintf("%s — %d دج", order.Customer.FullName, order.Totals.Total),
			French: fmt.Sprintf("%s — %d DA", order.Customer.FullName, order.Totals.Total),
		},
		OccurredAt: order.CreatedAt,
	})
	if err != nil {
		s.logger(ctx, "checkout.notify_failed", map[string]any{
			"orderID": order.ID,
			"error":   err.Error(),
		})
	}
}

func formatOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("FF-%d-%06d", now.Year(), seq)
}

func purchasableLines(items []domain.CartItem) []domain.CartItem {
	var out []domain.CartItem
	for _, item := range items {
		if item.Quantity <= 0 || strings.TrimSpace(item.ProductID) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// normalisePhone strips spacing and dashes so Algerian numbers compare evenly.
func normalisePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+213")
	digits = strings.TrimPrefix(digits, "213")
	if len(digits) == 9 && digits[0] != '0' {
		digits = "0" + digits
	}
	if len(digits) != 10 || digits[0] != '0' {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *checkoutService) translateStockError(line domain.CartItem, err error) error {
	var stockErr *repositories.StockError
	if errors.As(err, &stockErr) {
		switch stockErr.Code {
		case repositories.StockErrorInsufficient:
			return fmt.Errorf("%w: product %s has %d left, %d requested",
				ErrCheckoutInsufficientStock, stockErr.ProductID, stockErr.Available, stockErr.Requested)
		case repositories.StockErrorProductNotFound:
			return fmt.Errorf("%w: product %s no longer exists", ErrCheckoutInvalidInput, line.ProductID)
		}
	}
	return s.translateRepoError(err)
}

func (s *checkoutService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsConflict():
			return ErrCheckoutConflict
		case repoErr.IsNotFound():
			return ErrCheckoutInvalidInput
		case repoErr.IsUnavailable():
			return ErrCheckoutUnavailable
		}
	}
	return ErrCheckoutUnavailable
}
