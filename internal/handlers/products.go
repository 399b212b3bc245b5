package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jacoubbakhouche/foufou-api/internal/platform/httpx"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

// ProductHandlers exposes the public, read-only side of the catalog.
type ProductHandlers struct {
	products services.ProductService
}

// NewProductHandlers constructs the public catalog handlers.
func NewProductHandlers(products services.ProductService) *ProductHandlers {
	return &ProductHandlers{products: products}
}

// Routes wires the public product endpoints onto the provided router.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
}

type productPayload struct {
	ID          string           `json:"id"`
	Name        localizedPayload `json:"name"`
	Description localizedPayload `json:"description"`
	Category    string           `json:"category,omitempty"`
	Price       int64            `json:"price"`
	OldPrice    *int64           `json:"oldPrice,omitempty"`
	Images      []string         `json:"images"`
	Colors      []string         `json:"colors"`
	Sizes       []string         `json:"sizes"`
	Stock       int              `json:"stock"`
	InStock     bool             `json:"inStock"`
	Published   bool             `json:"published"`
	CreatedAt   string           `json:"createdAt,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

type productListResponse struct {
	Products      []productPayload `json:"products"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

func buildProductPayload(product services.Product) productPayload {
	payload := productPayload{
		ID:          product.ID,
		Name:        buildLocalizedPayload(product.Name),
		Description: buildLocalizedPayload(product.Description),
		Category:    product.Category,
		Price:       product.Price,
		OldPrice:    product.OldPrice,
		Images:      product.ImageURLs,
		Colors:      product.Colors,
		Sizes:       product.Sizes,
		Stock:       product.Stock,
		InStock:     product.InStock,
		Published:   product.Published,
		CreatedAt:   formatTime(product.CreatedAt),
		UpdatedAt:   formatTime(product.UpdatedAt),
	}
	if payload.Images == nil {
		payload.Images = []string{}
	}
	if payload.Colors == nil {
		payload.Colors = []string{}
	}
	if payload.Sizes == nil {
		payload.Sizes = []string{}
	}
	return payload
}

func (h *ProductHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter := services.ProductListFilter{
		OnlyPublished: true,
		Pagination:    parsePagination(r),
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filter.Category = &category
	}
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("inStock")), "true") {
		filter.OnlyInStock = true
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

func (h *ProductHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	product, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	if !product.Published {
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func writeProductError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrProductInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductConflict):
		httpx.WriteError(ctx, w, httpx.NewError("product_conflict", "product was modified concurrently; retry", http.StatusConflict))
	case errors.Is(err, services.ErrProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to read catalog", http.StatusInternalServerError))
	}
}
