package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jacoubbakhouche/foufou-api/internal/platform/auth"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/httpx"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
	"github.com/jacoubbakhouche/foufou-api/internal/shipping"
)

const (
	maxCheckoutBodySize = 32 * 1024

	// Per-customer submission throttle. COD orders are confirmed by phone,
	// so a burst of identical submissions is always a client bug or abuse.
	checkoutRateLimit  = 5
	checkoutRateWindow = time.Minute
)

// CheckoutHandlers exposes the quote and order submission endpoints.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
	limiter  rateLimiter
}

// NewCheckoutHandlers constructs handlers enforcing Firebase authentication before invoking the checkout service.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{
		authn:    authn,
		checkout: checkout,
		limiter:  newSimpleRateLimiter(checkoutRateLimit, checkoutRateWindow, time.Now),
	}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/quote", h.quote)
	r.Post("/", h.placeOrder)
}

type checkoutQuoteRequest struct {
	Wilaya       string `json:"wilaya"`
	DeliveryMode string `json:"deliveryMode"`
}

type checkoutQuoteResponse struct {
	Wilaya       string `json:"wilaya"`
	DeliveryMode string `json:"deliveryMode"`
	Subtotal     int64  `json:"subtotal"`
	DeliveryFee  int64  `json:"deliveryFee"`
	Total        int64  `json:"total"`
}

type placeOrderRequest struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Wilaya       string `json:"wilaya"`
	Commune      string `json:"commune"`
	Address      string `json:"address"`
	DeliveryMode string `json:"deliveryMode"`
	Notes        string `json:"notes"`
}

func (h *CheckoutHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req checkoutQuoteRequest
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	mode := shipping.ParseDeliveryMode(req.DeliveryMode)
	totals, err := h.checkout.Quote(ctx, services.CheckoutQuoteCommand{
		CustomerID:   identity.UID,
		Wilaya:       req.Wilaya,
		DeliveryMode: mode,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, checkoutQuoteResponse{
		Wilaya:       strings.TrimSpace(req.Wilaya),
		DeliveryMode: string(mode),
		Subtotal:     totals.Subtotal,
		DeliveryFee:  totals.DeliveryFee,
		Total:        totals.Total,
	})
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	if h.limiter != nil && !h.limiter.Allow(identity.UID) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many order submissions; wait before retrying", http.StatusTooManyRequests))
		return
	}

	var req placeOrderRequest
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	order, err := h.checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		CustomerID:   identity.UID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Wilaya:       req.Wilaya,
		Commune:      req.Commune,
		Address:      req.Address,
		DeliveryMode: shipping.ParseDeliveryMode(req.DeliveryMode),
		Notes:        req.Notes,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, orderResponse{Order: buildOrderPayload(order)})
}

func (h *CheckoutHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutCartEmpty):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart has no purchasable items", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutInsufficientStock):
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_stock", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutStockRestoreFailed):
		httpx.WriteError(ctx, w, httpx.NewError("stock_restore_failed", "order failed and stock could not be fully restored; contact the shop before retrying", http.StatusInternalServerError))
	case errors.Is(err, services.ErrCheckoutConflict):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_conflict", "order could not be persisted; retry", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to place order", http.StatusInternalServerError))
	}
}
