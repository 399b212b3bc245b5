package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

const (
	productIDPrefix          = "prd_"
	maxProductNameLength     = 200
	maxProductDescLength     = 5000
	maxProductImages         = 12
	maxProductVariantOptions = 30
)

var (
	// ErrProductInvalidInput indicates the caller supplied invalid product data.
	ErrProductInvalidInput = errors.New("product service: invalid input")
	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("product service: not found")
	// ErrProductConflict indicates a concurrent modification prevented the write.
	ErrProductConflict = errors.New("product service: conflict")
	// ErrProductUnavailable indicates the catalog backend is unavailable.
	ErrProductUnavailable = errors.New("product service: unavailable")
)

// ProductServiceDeps wires the catalog repository and ambient helpers.
type ProductServiceDeps struct {
	Products    repositories.ProductRepository
	Clock       func() time.Time
	Logger      func(ctx context.Context, event string, fields map[string]any)
	IDGenerator func() string
}

type productService struct {
	products repositories.ProductRepository
	sanitize *bluemonday.Policy
	newID    func() string
	now      func() time.Time
	logger   func(ctx context.Context, event string, fields map[string]any)
}

// NewProductService constructs a ProductService validating required dependencies.
func NewProductService(deps ProductServiceDeps) (ProductService, error) {
	if deps.Products == nil {
		return nil, errors.New("product service: product repository is required")
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

	return &productService{
		products: deps.Products,
		// Descriptions come straight from the admin form; strip every tag.
		sanitize: bluemonday.StrictPolicy(),
		newID:    idGen,
		now: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// GetProduct returns the product by ID.
func (s *productService) GetProduct(ctx context.Context, productID string) (Product, error) {
	if s == nil || s.products == nil {
		return Product{}, ErrProductUnavailable
	}

	id := strings.TrimSpace(productID)
	if id == "" {
		return Product{}, ErrProductInvalidInput
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return Product{}, s.translateRepoError(err)
	}
	return product, nil
}

// ListProducts pages through catalog entries matching the filter.
func (s *productService) ListProducts(ctx context.Context, filter ProductListFilter) (domain.CursorPage[Product], error) {
	if s == nil || s.products == nil {
		return domain.CursorPage[Product]{}, ErrProductUnavailable
	}

	repoFilter := repositories.ProductListFilter{
		OnlyPublished: filter.OnlyPublished,
		OnlyInStock:   filter.OnlyInStock,
		Pagination:    filter.Pagination,
	}
	if filter.Category != nil {
		category := strings.TrimSpace(*filter.Category)
		if category != "" {
			repoFilter.Category = &category
		}
	}

	page, err := s.products.List(ctx, repoFilter)
	if err != nil {
		return domain.CursorPage[Product]{}, s.translateRepoError(err)
	}
	return page, nil
}

// UpsertProduct creates or replaces a catalog entry after validation and
// sanitisation of the bilingual text fields.
func (s *productService) UpsertProduct(ctx context.Context, cmd UpsertProductCommand) (Product, error) {
	if s == nil || s.products == nil {
		return Product{}, ErrProductUnavailable
	}

	product, err := s.normaliseProduct(cmd.Product)
	if err != nil {
		return Product{}, err
	}

	now := s.now()
	creating := product.ID == ""
	if creating {
		product.ID = productIDPrefix + strings.ToLower(strings.TrimSpace(s.newID()))
		product.CreatedAt = now
	} else if product.CreatedAt.IsZero() {
		if existing, err := s.products.FindByID(ctx, product.ID); err == nil {
			product.CreatedAt = existing.CreatedAt
		} else {
			product.CreatedAt = now
		}
	}
	product.UpdatedAt = now
	product.InStock = product.Stock > 0

	saved, err := s.products.Upsert(ctx, product)
	if err != nil {
		return Product{}, s.translateRepoError(err)
	}

	s.logger(ctx, "catalog.product_upserted", map[string]any{
		"productID": saved.ID,
		"actorID":   strings.TrimSpace(cmd.ActorID),
		"created":   creating,
	})
	return saved, nil
}

// DeleteProduct removes the product from the catalog.
func (s *productService) DeleteProduct(ctx context.Context, cmd DeleteProductCommand) error {
	if s == nil || s.products == nil {
		return ErrProductUnavailable
	}

	id := strings.TrimSpace(cmd.ProductID)
	if id == "" {
		return ErrProductInvalidInput
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return s.translateRepoError(err)
	}

	s.logger(ctx, "catalog.product_deleted", map[string]any{
		"productID": id,
		"actorID":   strings.TrimSpace(cmd.ActorID),
	})
	return nil
}

func (s *productService) normaliseProduct(product Product) (Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	product.Name.Arabic = strings.TrimSpace(product.Name.Arabic)
	product.Name.French = strings.TrimSpace(product.Name.French)
	product.Category = strings.TrimSpace(product.Category)

	if product.Name.Arabic == "" && product.Name.French == "" {
		return Product{}, fmt.Errorf("%w: a product name is required in at least one language", ErrProductInvalidInput)
	}
	if len(product.Name.Arabic) > maxProductNameLength || len(product.Name.French) > maxProductNameLength {
		return Product{}, fmt.Errorf("%w: name must be %d characters or fewer", ErrProductInvalidInput, maxProductNameLength)
	}
	if product.Price <= 0 {
		return Product{}, fmt.Errorf("%w: price must be greater than zero", ErrProductInvalidInput)
	}
	if product.OldPrice != nil && *product.OldPrice <= product.Price {
		return Product{}, fmt.Errorf("%w: old price must exceed the current price", ErrProductInvalidInput)
	}
	if product.Stock < 0 {
		return Product{}, fmt.Errorf("%w: stock cannot be negative", ErrProductInvalidInput)
	}

	product.Description.Arabic = s.sanitizeText(product.Description.Arabic)
	product.Description.French = s.sanitizeText(product.Description.French)
	if len(product.Description.Arabic) > maxProductDescLength || len(product.Description.French) > maxProductDescLength {
		return Product{}, fmt.Errorf("%w: description must be %d characters or fewer", ErrProductInvalidInput, maxProductDescLength)
	}

	product.ImageURLs = dedupeStrings(product.ImageURLs, false)
	if len(product.ImageURLs) > maxProductImages {
		return Product{}, fmt.Errorf("%w: at most %d images are allowed", ErrProductInvalidInput, maxProductImages)
	}
	for _, url := range product.ImageURLs {
		if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
			return Product{}, fmt.Errorf("%w: image URL %q must be absolute", ErrProductInvalidInput, url)
		}
	}

	product.Colors = dedupeStrings(product.Colors, true)
	product.Sizes = dedupeStrings(product.Sizes, true)
	if len(product.Colors) > maxProductVariantOptions || len(product.Sizes) > maxProductVariantOptions {
		return Product{}, fmt.Errorf("%w: at most %d variant options are allowed", ErrProductInvalidInput, maxProductVariantOptions)
	}

	return product, nil
}

func (s *productService) sanitizeText(value string) string {
	return strings.TrimSpace(s.sanitize.Sanitize(value))
}

// dedupeStrings trims and drops blanks and duplicates, keeping first-seen order.
func dedupeStrings(values []string, foldCase bool) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := trimmed
		if foldCase {
			key = strings.ToLower(trimmed)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *productService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var stockErr *repositories.StockError
	if errors.As(err, &stockErr) && stockErr.Code == repositories.StockErrorProductNotFound {
		return ErrProductNotFound
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrProductNotFound
		case repoErr.IsConflict():
			return ErrProductConflict
		case repoErr.IsUnavailable():
			return ErrProductUnavailable
		}
	}
	return ErrProductUnavailable
}
