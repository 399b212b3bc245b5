package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/notify"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

var (
	// ErrOrderInvalidInput indicates the caller supplied invalid input parameters.
	ErrOrderInvalidInput = errors.New("order service: invalid input")
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order service: not found")
	// ErrOrderConflict indicates a concurrent modification or a failed status precondition.
	ErrOrderConflict = errors.New("order service: conflict")
	// ErrOrderUnavailable indicates the order backend is unavailable.
	ErrOrderUnavailable = errors.New("order service: unavailable")
	// ErrOrderInvalidTransition indicates the requested status change is not allowed.
	ErrOrderInvalidTransition = errors.New("order service: invalid status transition")
	// ErrOrderInsufficientStock indicates reinstating a cancelled order exceeds current stock.
	ErrOrderInsufficientStock = errors.New("order service: insufficient stock")
)

// orderTransitions lists the allowed moves per current status. Delivered is
// terminal. Leaving cancelled reinstates the order and re-claims its stock.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:   {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed: {domain.OrderStatusShipping, domain.OrderStatusCancelled},
	domain.OrderStatusShipping:  {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
	domain.OrderStatusDelivered: nil,
	domain.OrderStatusCancelled: {domain.OrderStatusPending, domain.OrderStatusConfirmed},
}

// OrderServiceDeps wires the repositories and notification publisher for order management.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Products  repositories.ProductRepository
	Publisher notify.Publisher
	Clock     func() time.Time
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	publisher notify.Publisher
	now       func() time.Time
	logger    func(ctx context.Context, event string, fields map[string]any)
}

// NewOrderService constructs an OrderService validating required dependencies.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders:    deps.Orders,
		products:  deps.Products,
		publisher: deps.Publisher,
		now: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// GetOrder returns the order by ID.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	if s == nil || s.orders == nil {
		return Order{}, ErrOrderUnavailable
	}

	id := strings.TrimSpace(orderID)
	if id == "" {
		return Order{}, ErrOrderInvalidInput
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return Order{}, s.translateRepoError(err)
	}
	return order, nil
}

// ListOrders pages through orders matching the filter.
func (s *orderService) ListOrders(ctx context.Context, filter OrderListFilter) (domain.CursorPage[Order], error) {
	if s == nil || s.orders == nil {
		return domain.CursorPage[Order]{}, ErrOrderUnavailable
	}

	page, err := s.orders.List(ctx, filter)
	if err != nil {
		return domain.CursorPage[Order]{}, s.translateRepoError(err)
	}
	return page, nil
}

// TransitionStatus moves the order through its lifecycle. Entering cancelled
// returns every line to stock; leaving cancelled claims the stock again and
// fails when any line can no longer be covered.
func (s *orderService) TransitionStatus(ctx context.Context, cmd OrderStatusTransitionCommand) (Order, error) {
	if s == nil || s.orders == nil || s.products == nil {
		return Order{}, ErrOrderUnavailable
	}

	id := strings.TrimSpace(cmd.OrderID)
	if id == "" {
		return Order{}, ErrOrderInvalidInput
	}
	target := cmd.TargetStatus
	if !knownOrderStatus(target) {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, string(target))
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return Order{}, s.translateRepoError(err)
	}

	if cmd.ExpectedStatus != nil && order.Status != *cmd.ExpectedStatus {
		return Order{}, fmt.Errorf("%w: order is %s, expected %s", ErrOrderConflict, order.Status, *cmd.ExpectedStatus)
	}
	if order.Status == target {
		return order, nil
	}
	if !transitionAllowed(order.Status, target) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrOrderInvalidTransition, order.Status, target)
	}

	from := order.Status
	now := s.now()

	if target == domain.OrderStatusCancelled {
		s.releaseOrderStock(ctx, order)
	}
	if from == domain.OrderStatusCancelled {
		if err := s.reclaimOrderStock(ctx, order); err != nil {
			return Order{}, err
		}
	}

	order.Status = target
	order.UpdatedAt = now
	stampStatus(&order, target, now)

	if err := s.orders.Update(ctx, order); err != nil {
		// Keep stock consistent with the status that remains persisted.
		if target == domain.OrderStatusCancelled {
			if reclaimErr := s.reclaimOrderStock(ctx, order); reclaimErr != nil {
				s.logger(ctx, "order.stock_reclaim_failed", map[string]any{
					"orderID": order.ID,
					"error":   reclaimErr.Error(),
				})
			}
		}
		if from == domain.OrderStatusCancelled {
			s.releaseOrderStock(ctx, order)
		}
		return Order{}, s.translateRepoError(err)
	}

	s.announceStatus(ctx, order, from)
	s.logger(ctx, "order.status_changed", map[string]any{
		"orderID": order.ID,
		"from":    string(from),
		"to":      string(target),
		"actorID": strings.TrimSpace(cmd.ActorID),
	})
	return order, nil
}

// Cancel is shorthand for a transition to cancelled.
func (s *orderService) Cancel(ctx context.Context, cmd CancelOrderCommand) (Order, error) {
	order, err := s.TransitionStatus(ctx, OrderStatusTransitionCommand{
		OrderID:      cmd.OrderID,
		TargetStatus: domain.OrderStatusCancelled,
		ActorID:      cmd.ActorID,
	})
	if err != nil {
		return Order{}, err
	}
	if reason := strings.TrimSpace(cmd.Reason); reason != "" {
		s.logger(ctx, "order.cancelled", map[string]any{
			"orderID": order.ID,
			"reason":  reason,
		})
	}
	return order, nil
}

// Delete removes the order document. Orders still holding stock are released
// first so their lines return to inventory.
func (s *orderService) Delete(ctx context.Context, cmd DeleteOrderCommand) error {
	if s == nil || s.orders == nil || s.products == nil {
		return ErrOrderUnavailable
	}

	id := strings.TrimSpace(cmd.OrderID)
	if id == "" {
		return ErrOrderInvalidInput
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return s.translateRepoError(err)
	}

	if order.Status != domain.OrderStatusCancelled && order.Status != domain.OrderStatusDelivered {
		s.releaseOrderStock(ctx, order)
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return s.translateRepoError(err)
	}

	s.logger(ctx, "order.deleted", map[string]any{
		"orderID": id,
		"actorID": strings.TrimSpace(cmd.ActorID),
	})
	return nil
}

// releaseOrderStock returns every line to inventory. Failures are logged and
// skipped so one missing product does not strand the rest of the restock.
func (s *orderService) releaseOrderStock(ctx context.Context, order domain.Order) {
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}
		if _, err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger(ctx, "order.stock_restore_failed", map[string]any{
				"orderID":   order.ID,
				"productID": item.ProductID,
				"quantity":  item.Quantity,
				"error":     err.Error(),
			})
		}
	}
}

// reclaimOrderStock decrements every line again when an order leaves the
// cancelled state. The first shortfall rolls back the lines already claimed.
func (s *orderService) reclaimOrderStock(ctx context.Context, order domain.Order) error {
	claimed := make([]domain.OrderLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}
		if _, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			for _, done := range claimed {
				if _, restoreErr := s.products.RestoreStock(ctx, done.ProductID, done.Quantity); restoreErr != nil {
					s.logger(ctx, "order.stock_restore_failed", map[string]any{
						"orderID":   order.ID,
						"productID": done.ProductID,
						"quantity":  done.Quantity,
						"error":     restoreErr.Error(),
					})
				}
			}
			var stockErr *repositories.StockError
			if errors.As(err, &stockErr) && stockErr.Code == repositories.StockErrorInsufficient {
				return fmt.Errorf("%w: product %s has %d left, %d requested",
					ErrOrderInsufficientStock, stockErr.ProductID, stockErr.Available, stockErr.Requested)
			}
			return s.translateRepoError(err)
		}
		claimed = append(claimed, item)
	}
	return nil
}

func (s *orderService) announceStatus(ctx context.Context, order domain.Order, from domain.OrderStatus) {
	if s.publisher == nil {
		return
	}
	_, err := s.publisher.Publish(ctx, notify.Event{
		Kind:        notify.KindOrderStatusChanged,
		Audience:    notify.AudienceCustomer,
		CustomerID:  order.CustomerID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Title:       statusTitle(order.Status),
		Body: domain.LocalizedText{
			Arabic: "طلبك " + order.OrderNumber,
			French: "Votre commande " + order.OrderNumber,
		},
		OccurredAt: order.UpdatedAt,
	})
	if err != nil {
		s.logger(ctx, "order.notify_failed", map[string]any{
			"orderID": order.ID,
			"from":    string(from),
			"to":      string(order.Status),
			"error":   err.Error(),
		})
	}
}

func statusTitle(status domain.OrderStatus) domain.LocalizedText {
	switch status {
	case domain.OrderStatusConfirmed:
		return domain.LocalizedText{Arabic: "تم تأكيد طلبك", French: "Commande confirmée"}
	case domain.OrderStatusShipping:
		return domain.LocalizedText{Arabic: "طلبك في الطريق", French: "Commande expédiée"}
	case domain.OrderStatusDelivered:
		return domain.LocalizedText{Arabic: "تم تسليم طلبك", French: "Commande livrée"}
	case domain.OrderStatusCancelled:
		return domain.LocalizedText{Arabic: "تم إلغاء طلبك", French: "Commande annulée"}
	default:
		return domain.LocalizedText{Arabic: "تحديث الطلب", French: "Mise à jour de commande"}
	}
}

func stampStatus(order *domain.Order, status domain.OrderStatus, now time.Time) {
	ts := now
	switch status {
	case domain.OrderStatusConfirmed:
		order.ConfirmedAt = &ts
		order.CancelledAt = nil
	case domain.OrderStatusShipping:
		order.ShippedAt = &ts
	case domain.OrderStatusDelivered:
		order.DeliveredAt = &ts
	case domain.OrderStatusCancelled:
		order.CancelledAt = &ts
	case domain.OrderStatusPending:
		order.ConfirmedAt = nil
		order.CancelledAt = nil
	}
}

func knownOrderStatus(status domain.OrderStatus) bool {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusShipping,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled:
		return true
	}
	return false
}

func transitionAllowed(from, to domain.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *orderService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrOrderNotFound
		case repoErr.IsConflict():
			return ErrOrderConflict
		case repoErr.IsUnavailable():
			return ErrOrderUnavailable
		}
	}
	return ErrOrderUnavailable
}
