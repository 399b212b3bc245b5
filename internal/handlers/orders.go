package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/auth"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/httpx"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

const maxOrderBodySize = 16 * 1024

// OrderHandlers exposes order history endpoints for the current customer.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

// NewOrderHandlers constructs handlers enforcing Firebase authentication before invoking the order service.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Post("/{orderID}/cancel", h.cancelOrder)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type orderListResponse struct {
	Orders        []orderPayload `json:"orders"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

type orderPayload struct {
	ID          string               `json:"id"`
	OrderNumber string               `json:"orderNumber"`
	CustomerID  string               `json:"customerId"`
	Status      string               `json:"status"`
	Customer    orderCustomerPayload `json:"customer"`
	Delivery    orderDeliveryPayload `json:"delivery"`
	Items       []orderItemPayload   `json:"items"`
	Totals      orderTotalsPayload   `json:"totals"`
	Notes       string               `json:"notes,omitempty"`
	CreatedAt   string               `json:"createdAt,omitempty"`
	UpdatedAt   string               `json:"updatedAt,omitempty"`
	ConfirmedAt string               `json:"confirmedAt,omitempty"`
	ShippedAt   string               `json:"shippedAt,omitempty"`
	DeliveredAt string               `json:"deliveredAt,omitempty"`
	CancelledAt string               `json:"cancelledAt,omitempty"`
}

type orderCustomerPayload struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type orderDeliveryPayload struct {
	Mode    string `json:"mode"`
	Wilaya  string `json:"wilaya"`
	Commune string `json:"commune,omitempty"`
	Address string `json:"address,omitempty"`
	Fee     int64  `json:"fee"`
}

type orderItemPayload struct {
	ProductID string           `json:"productId"`
	Name      localizedPayload `json:"name"`
	Color     string           `json:"color,omitempty"`
	Size      string           `json:"size,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitPrice int64            `json:"unitPrice"`
	LineTotal int64            `json:"lineTotal"`
	ImageURL  string           `json:"imageUrl,omitempty"`
}

type orderTotalsPayload struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"total"`
}

func buildOrderPayload(order services.Order) orderPayload {
	payload := orderPayload{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		Customer: orderCustomerPayload{
			FullName: order.Customer.FullName,
			Phone:    order.Customer.Phone,
		},
		Delivery: orderDeliveryPayload{
			Mode:    string(order.Delivery.Mode),
			Wilaya:  order.Delivery.Wilaya,
			Commune: order.Delivery.Commune,
			Address: order.Delivery.Address,
			Fee:     order.Delivery.Fee,
		},
		Items: make([]orderItemPayload, 0, len(order.Items)),
		Totals: orderTotalsPayload{
			Subtotal:    order.Totals.Subtotal,
			DeliveryFee: order.Totals.DeliveryFee,
			Total:       order.Totals.Total,
		},
		Notes:       order.Notes,
		CreatedAt:   formatTime(order.CreatedAt),
		UpdatedAt:   formatTime(order.UpdatedAt),
		ConfirmedAt: formatTimePointer(order.ConfirmedAt),
		ShippedAt:   formatTimePointer(order.ShippedAt),
		DeliveredAt: formatTimePointer(order.DeliveredAt),
		CancelledAt: formatTimePointer(order.CancelledAt),
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, orderItemPayload{
			ProductID: item.ProductID,
			Name:      buildLocalizedPayload(item.Name),
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
			ImageURL:  item.ImageURL,
		})
	}
	return payload
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	filter := services.OrderListFilter{
		CustomerID: identity.UID,
		Pagination: parsePagination(r),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, ok := parseOrderStatus(raw)
		if !ok {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown order status filter", http.StatusBadRequest))
			return
		}
		filter.Status = []domain.OrderStatus{status}
	}

	page, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payload := orderListResponse{
		Orders:        make([]orderPayload, 0, len(page.Items)),
		NextPageToken: page.NextPageToken,
	}
	for _, order := range page.Items {
		payload.Orders = append(payload.Orders, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	if !canReadOrder(identity, order) {
		// Hide existence of other customers' orders.
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	if !canReadOrder(identity, order) {
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
		return
	}
	if !identity.HasAnyRole(auth.RoleStaff, auth.RoleAdmin) && order.Status != domain.OrderStatusPending {
		// Once the shop confirmed by phone, cancellation goes through support.
		httpx.WriteError(ctx, w, httpx.NewError("order_not_cancellable", "order can no longer be cancelled", http.StatusConflict))
		return
	}

	var req cancelOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil && !errors.Is(err, errEmptyBody) {
			writeBodyError(ctx, w, err)
			return
		}
	}

	cancelled, err := h.orders.Cancel(ctx, services.CancelOrderCommand{
		OrderID: orderID,
		ActorID: identity.UID,
		Reason:  strings.TrimSpace(req.Reason),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(cancelled)})
}

func (h *OrderHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func canReadOrder(identity *auth.Identity, order services.Order) bool {
	if identity == nil {
		return false
	}
	if identity.HasAnyRole(auth.RoleStaff, auth.RoleAdmin) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(order.CustomerID), strings.TrimSpace(identity.UID))
}

func parseOrderStatus(raw string) (domain.OrderStatus, bool) {
	switch domain.OrderStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.OrderStatusPending:
		return domain.OrderStatusPending, true
	case domain.OrderStatusConfirmed:
		return domain.OrderStatusConfirmed, true
	case domain.OrderStatusShipping:
		return domain.OrderStatusShipping, true
	case domain.OrderStatusDelivered:
		return domain.OrderStatusDelivered, true
	case domain.OrderStatusCancelled:
		return domain.OrderStatusCancelled, true
	default:
		return "", false
	}
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderInsufficientStock):
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_stock", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", "order was modified concurrently; retry", http.StatusConflict))
	case errors.Is(err, services.ErrOrderUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
