package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/auth"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/httpx"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

const maxAdminBodySize = 256 * 1024

// AdminHandlers groups the staff dashboard endpoints: catalog management,
// the order board, and support chat administration.
type AdminHandlers struct {
	authn    *auth.Authenticator
	products services.ProductService
	orders   services.OrderService
	chats    services.ChatService
}

// NewAdminHandlers constructs the staff-only handler set.
func NewAdminHandlers(authn *auth.Authenticator, products services.ProductService, orders services.OrderService, chats services.ChatService) *AdminHandlers {
	return &AdminHandlers{
		authn:    authn,
		products: products,
		orders:   orders,
		chats:    chats,
	}
}

// Routes wires the /admin endpoints onto the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}

	r.Get("/products", h.listProducts)
	r.Post("/products", h.upsertProduct)
	r.Put("/products/{productID}", h.upsertProduct)
	r.Delete("/products/{productID}", h.deleteProduct)

	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderID}", h.getOrder)
	r.Patch("/orders/{orderID}/status", h.transitionOrder)
	r.Delete("/orders/{orderID}", h.deleteOrder)

	r.Get("/chat/threads", h.listThreads)
	r.Post("/chat/threads/{threadID}/read", h.markThreadRead)
}

type upsertProductRequest struct {
	ID          string           `json:"id"`
	Name        localizedPayload `json:"name"`
	Description localizedPayload `json:"description"`
	Category    string           `json:"category"`
	Price       int64            `json:"price"`
	OldPrice    *int64           `json:"oldPrice"`
	Images      []string         `json:"images"`
	Colors      []string         `json:"colors"`
	Sizes       []string         `json:"sizes"`
	Stock       int              `json:"stock"`
	Published   bool             `json:"published"`
}

type orderStatusRequest struct {
	Status         string `json:"status"`
	ExpectedStatus string `json:"expectedStatus"`
}

type chatThreadListResponse struct {
	Threads       []chatThreadPayload `json:"threads"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
}

func (h *AdminHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireStaff(ctx, w); !ok {
		return
	}

	filter := services.ProductListFilter{Pagination: parsePagination(r)}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filter.Category = &category
	}

	page, err := h.products.ListProducts(ctx, filter)
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}

	payload := productListResponse{
		Products:      make([]productPayload, 0, len(page.Items)),
		NextPageToken: page.NextPageToken,
	}
	for _, product := range page.Items {
		payload.Products = append(payload.Products, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *AdminHandlers) upsertProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireStaff(ctx, w)
	if !ok {
		return
	}

	var req upsertProductRequest
	if err := decodeJSONBody(r, maxAdminBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		productID = strings.TrimSpace(req.ID)
	}

	created := productID == ""
	product, err := h.products.UpsertProduct(ctx, services.UpsertProductCommand{
		ActorID: identity.UID,
		Product: domain.Product{
			ID:          productID,
			Name:        req.Name.toDomain(),
			Description: req.Description.toDomain(),
			Category:    strings.TrimSpace(req.Category),
			Price:       req.Price,
			OldPrice:    req.OldPrice,
			ImageURLs:   req.Images,
			Colors:      req.Colors,
			Sizes:       req.Sizes,
			Stock:       req.Stock,
			Published:   req.Published,
		},
	})
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSONResponse(w, status, map[string]any{"product": buildProductPayload(product)})
}

func (h *AdminHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireStaff(ctx, w)
	if !ok {
		return
	}

	err := h.products.DeleteProduct(ctx, services.DeleteProductCommand{
		ProductID: strings.TrimSpace(chi.URLParam(r, "productID")),
		ActorID:   identity.UID,
	})
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireStaff(ctx, w); !ok {
		return
	}

	filter := services.OrderListFilter{
		CustomerID: strings.TrimSpace(r.URL.Query().Get("customerId")),
		Pagination: parsePagination(r),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, ok := parseOrderStatus(part)
			if !ok {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown order status filter", http.StatusBadRequest))
				return
			}
			filter.Status = append(filter.Status, status)
		}
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

func (h *AdminHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireStaff(ctx, w); !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, strings.TrimSpace(chi.URLParam(r, "orderID")))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *AdminHandlers) transitionOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireStaff(ctx, w)
	if !ok {
		return
	}

	var req orderStatusRequest
	if err := decodeJSONBody(r, maxAdminBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	target, okStatus := parseOrderStatus(req.Status)
	if !okStatus {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown target status", http.StatusBadRequest))
		return
	}

	cmd := services.OrderStatusTransitionCommand{
		OrderID:      strings.TrimSpace(chi.URLParam(r, "orderID")),
		TargetStatus: target,
		ActorID:      identity.UID,
	}
	if raw := strings.TrimSpace(req.ExpectedStatus); raw != "" {
		expected, okExpected := parseOrderStatus(raw)
		if !okExpected {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown expected status", http.StatusBadRequest))
			return
		}
		cmd.ExpectedStatus = &expected
	}

	order, err := h.orders.TransitionStatus(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *AdminHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireStaff(ctx, w)
	if !ok {
		return
	}

	err := h.orders.Delete(ctx, services.DeleteOrderCommand{
		OrderID: strings.TrimSpace(chi.URLParam(r, "orderID")),
		ActorID: identity.UID,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) listThreads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireStaff(ctx, w); !ok {
		return
	}
	if h.chats == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := h.chats.ListThreads(ctx, parsePagination(r))
	if err != nil {
		writeChatError(ctx, w, err)
		return
	}

	payload := chatThreadListResponse{
		Threads:       make([]chatThreadPayload, 0, len(page.Items)),
		NextPageToken: page.NextPageToken,
	}
	for _, thread := range page.Items {
		payload.Threads = append(payload.Threads, buildChatThreadPayload(thread))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *AdminHandlers) markThreadRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireStaff(ctx, w)
	if !ok {
		return
	}
	if h.chats == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
		return
	}

	thread, err := h.chats.MarkThreadRead(ctx, services.MarkThreadReadCommand{
		ThreadID: strings.TrimSpace(chi.URLParam(r, "threadID")),
		ActorID:  identity.UID,
	})
	if err != nil {
		writeChatError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"thread": buildChatThreadPayload(thread)})
}

func (h *AdminHandlers) requireStaff(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.products == nil || h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("admin_unavailable", "admin services are unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	if !identity.HasAnyRole(auth.RoleStaff, auth.RoleAdmin) {
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "staff role required", http.StatusForbidden))
		return nil, false
	}
	return identity, true
}
