package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jacoubbakhouche/foufou-api/internal/platform/auth"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/httpx"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes authenticated cart endpoints for the current customer.
type CartHandlers struct {
	authn *auth.Authenticator
	carts services.CartService
}

// NewCartHandlers constructs handlers enforcing Firebase authentication before invoking the cart service.
func NewCartHandlers(authn *auth.Authenticator, carts services.CartService) *CartHandlers {
	return &CartHandlers{
		authn: authn,
		carts: carts,
	}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Put("/items", h.upsertItem)
	r.Delete("/items", h.removeItem)
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type cartItemPayload struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Name      localizedPayload `json:"name"`
	Color     string           `json:"color,omitempty"`
	Size      string           `json:"size,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitPrice int64            `json:"unitPrice"`
	LineTotal int64            `json:"lineTotal"`
	ImageURL  string           `json:"imageUrl,omitempty"`
	AddedAt   string           `json:"addedAt,omitempty"`
	UpdatedAt string           `json:"updatedAt,omitempty"`
}

type cartPayload struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"customerId"`
	Items      []cartItemPayload `json:"items"`
	ItemsCount int               `json:"itemsCount"`
	Subtotal   int64             `json:"subtotal"`
	UpdatedAt  string            `json:"updatedAt,omitempty"`
}

type cartResponse struct {
	Cart cartPayload `json:"cart"`
}

func buildCartPayload(cart services.Cart) cartPayload {
	payload := cartPayload{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		Items:      make([]cartItemPayload, 0, len(cart.Items)),
		ItemsCount: len(cart.Items),
		Subtotal:   cart.Subtotal(),
		UpdatedAt:  formatTime(cart.UpdatedAt),
	}
	for _, item := range cart.Items {
		entry := cartItemPayload{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      buildLocalizedPayload(item.Name),
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice * int64(item.Quantity),
			ImageURL:  item.ImageURL,
			AddedAt:   formatTime(item.AddedAt),
			UpdatedAt: formatTimePointer(item.UpdatedAt),
		}
		payload.Items = append(payload.Items, entry)
	}
	return payload
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	cart, err := h.carts.GetOrCreateCart(ctx, identity.UID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

// addItem merges the submitted quantity into any existing line for the same
// variant, so adding the same product twice sums instead of overwriting.
func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	h.writeItem(w, r, true)
}

// upsertItem replaces the line's quantity outright.
func (h *CartHandlers) upsertItem(w http.ResponseWriter, r *http.Request) {
	h.writeItem(w, r, false)
}

func (h *CartHandlers) writeItem(w http.ResponseWriter, r *http.Request, merge bool) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	cart, err := h.carts.AddOrUpdateItem(ctx, services.UpsertCartItemCommand{
		CustomerID: identity.UID,
		ProductID:  req.ProductID,
		Color:      req.Color,
		Size:       req.Size,
		Quantity:   req.Quantity,
		Merge:      merge,
	})
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	cmd := services.RemoveCartItemCommand{
		CustomerID: identity.UID,
		ProductID:  strings.TrimSpace(r.URL.Query().Get("productId")),
		Color:      strings.TrimSpace(r.URL.Query().Get("color")),
		Size:       strings.TrimSpace(r.URL.Query().Get("size")),
	}
	if cmd.ProductID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId query parameter is required", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.RemoveItem(ctx, cmd)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(ctx, identity.UID); err != nil {
		writeCartError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_not_found", "cart not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCartConflict):
		httpx.WriteError(ctx, w, httpx.NewError("cart_conflict", "cart has been modified; refresh and retry", http.StatusConflict))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to update cart", http.StatusInternalServerError))
	}
}
