package firestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	pfirestore "github.com/jacoubbakhouche/foufou-api/internal/platform/firestore"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

const productsCollection = "products"

type ProductRepository struct {
	provider *pfirestore.Provider
	products *pfirestore.BaseRepository[productDocument]
	now      func() time.Time
}

func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	products := pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil, nil)
	return &ProductRepository{provider: provider, products: products, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.products == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, errors.New("product find: id is required")
	}

	doc, err := r.products.Get(ctx, productID)
	if err != nil {
		if repoErr, ok := err.(*pfirestore.Error); ok && repoErr.IsNotFound() {
			return domain.Product{}, repositories.NewStockError(repositories.StockErrorProductNotFound, productID, fmt.Sprintf("product %s not found", productID), err)
		}
		return domain.Product{}, wrapStockError("products.findByID", err)
	}
	return doc.Data.toDomain(doc.ID), nil
}

func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	if r == nil || r.provider == nil {
		return domain.CursorPage[domain.Product]{}, errors.New("product repository not initialised")
	}

	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.CursorPage[domain.Product]{}, wrapStockError("products.list", err)
	}

	query := client.Collection(productsCollection).Query
	if filter.Category != nil {
		if category := strings.TrimSpace(*filter.Category); category != "" {
			query = query.Where("category", "==", category)
		}
	}
	if filter.OnlyPublished {
		query = query.Where("published", "==", true)
	}
	if filter.OnlyInStock {
		query = query.Where("inStock", "==", true)
	}
	query = query.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc).Limit(pageSize + 1)

	if token := strings.TrimSpace(filter.Pagination.PageToken); token != "" {
		decoded, err := decodeProductPageToken(token)
		if err != nil {
			return domain.CursorPage[domain.Product]{}, wrapStockError("products.list", err)
		}
		query = query.StartAfter(decoded.CreatedAt, decoded.ID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var products []domain.Product
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return domain.CursorPage[domain.Product]{}, wrapStockError("products.list", err)
		}
		var doc productDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.CursorPage[domain.Product]{}, fmt.Errorf("decode product %s: %w", snap.Ref.ID, err)
		}
		products = append(products, doc.toDomain(snap.Ref.ID))
	}

	hasMore := len(products) > pageSize
	if hasMore {
		products = products[:pageSize]
	}
	var nextToken string
	if hasMore && len(products) > 0 {
		last := products[len(products)-1]
		encoded, err := encodeProductPageToken(productPageToken{ID: last.ID, CreatedAt: last.CreatedAt})
		if err != nil {
			return domain.CursorPage[domain.Product]{}, wrapStockError("products.list", err)
		}
		nextToken = encoded
	}

	return domain.CursorPage[domain.Product]{
		Items:         products,
		NextPageToken: nextToken,
	}, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, product domain.Product) (domain.Product, error) {
	if r == nil || r.products == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	productID := strings.TrimSpace(product.ID)
	if productID == "" {
		return domain.Product{}, errors.New("product upsert: id is required")
	}

	doc := newProductDocument(product)
	doc.recalculate()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now()
	}
	doc.UpdatedAt = r.now()

	if _, err := r.products.Set(ctx, productID, doc); err != nil {
		return domain.Product{}, wrapStockError("products.upsert", err)
	}
	return doc.toDomain(productID), nil
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	if r == nil || r.products == nil {
		return errors.New("product repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return errors.New("product delete: id is required")
	}

	ref, err := r.products.DocumentRef(ctx, productID)
	if err != nil {
		return wrapStockError("products.delete", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return wrapStockError("products.delete", err)
	}
	return nil
}

// DecrementStock subtracts quantity from the product's stock in a single
// transaction. The write never happens when the remaining stock would go
// negative; callers get a *repositories.StockError instead.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID string, quantity int) (domain.Product, error) {
	return r.adjustStock(ctx, "products.decrementStock", productID, quantity, func(doc *productDocument) error {
		if doc.Stock < quantity {
			stockErr := repositories.NewStockError(repositories.StockErrorInsufficient, productID, fmt.Sprintf("insufficient stock for product %s", productID), nil)
			stockErr.Requested = quantity
			stockErr.Available = doc.Stock
			return stockErr
		}
		doc.Stock -= quantity
		return nil
	})
}

// RestoreStock adds quantity back after a cancelled or rolled-back order.
func (r *ProductRepository) RestoreStock(ctx context.Context, productID string, quantity int) (domain.Product, error) {
	return r.adjustStock(ctx, "products.restoreStock", productID, quantity, func(doc *productDocument) error {
		doc.Stock += quantity
		return nil
	})
}

func (r *ProductRepository) adjustStock(ctx context.Context, op, productID string, quantity int, apply func(doc *productDocument) error) (domain.Product, error) {
	if r == nil || r.provider == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, repositories.NewStockError(repositories.StockErrorUnknown, productID, "stock adjust: product id is required", nil)
	}
	if quantity <= 0 {
		return domain.Product{}, repositories.NewStockError(repositories.StockErrorUnknown, productID, fmt.Sprintf("stock adjust: quantity for %s must be > 0", productID), nil)
	}

	now := r.now()
	var updated domain.Product
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.products.DocumentRef(ctx, productID)
		if err != nil {
			return err
		}
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return repositories.NewStockError(repositories.StockErrorProductNotFound, productID, fmt.Sprintf("product %s not found", productID), err)
			}
			return err
		}
		var doc productDocument
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode product %s: %w", productID, err)
		}
		if err := apply(&doc); err != nil {
			return err
		}
		doc.UpdatedAt = now
		doc.recalculate()
		if err := tx.Set(ref, doc); err != nil {
			return err
		}
		updated = doc.toDomain(productID)
		return nil
	})
	if err != nil {
		return domain.Product{}, wrapStockError(op, err)
	}
	return updated, nil
}

// Helper structures ---------------------------------------------------------

type productDocument struct {
	NameFr        string    `firestore:"nameFr"`
	NameAr        string    `firestore:"nameAr"`
	DescriptionFr string    `firestore:"descriptionFr,omitempty"`
	DescriptionAr string    `firestore:"descriptionAr,omitempty"`
	Category      string    `firestore:"category"`
	Price         int64     `firestore:"price"`
	OldPrice      *int64    `firestore:"oldPrice,omitempty"`
	ImageURLs     []string  `firestore:"imageUrls"`
	Colors        []string  `firestore:"colors,omitempty"`
	Sizes         []string  `firestore:"sizes,omitempty"`
	Stock         int       `firestore:"stock"`
	InStock       bool      `firestore:"inStock"`
	Published     bool      `firestore:"published"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func (d *productDocument) recalculate() {
	if d.Stock < 0 {
		d.Stock = 0
	}
	d.InStock = d.Stock > 0
}

func newProductDocument(product domain.Product) productDocument {
	return productDocument{
		NameFr:        strings.TrimSpace(product.Name.French),
		NameAr:        strings.TrimSpace(product.Name.Arabic),
		DescriptionFr: strings.TrimSpace(product.Description.French),
		DescriptionAr: strings.TrimSpace(product.Description.Arabic),
		Category:      strings.TrimSpace(product.Category),
		Price:         product.Price,
		OldPrice:      product.OldPrice,
		ImageURLs:     product.ImageURLs,
		Colors:        product.Colors,
		Sizes:         product.Sizes,
		Stock:         product.Stock,
		InStock:       product.InStock,
		Published:     product.Published,
		CreatedAt:     product.CreatedAt.UTC(),
		UpdatedAt:     product.UpdatedAt.UTC(),
	}
}

func (d productDocument) toDomain(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        domain.LocalizedText{French: d.NameFr, Arabic: d.NameAr},
		Description: domain.LocalizedText{French: d.DescriptionFr, Arabic: d.DescriptionAr},
		Category:    strings.TrimSpace(d.Category),
		Price:       d.Price,
		OldPrice:    d.OldPrice,
		ImageURLs:   d.ImageURLs,
		Colors:      d.Colors,
		Sizes:       d.Sizes,
		Stock:       d.Stock,
		InStock:     d.InStock,
		Published:   d.Published,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type productPageToken struct {
	ID        string
	CreatedAt time.Time
}

func encodeProductPageToken(token productPageToken) (string, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	if err := enc.Encode(token); err != nil {
		return "", fmt.Errorf("encode product page token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes.TrimSpace(buf.Bytes())), nil
}

func decodeProductPageToken(encoded string) (*productPageToken, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode product page token: %w", err)
	}
	var token productPageToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode product page token json: %w", err)
	}
	return &token, nil
}

func wrapStockError(op string, err error) error {
	if err == nil {
		return nil
	}
	var stockErr *repositories.StockError
	if errors.As(err, &stockErr) {
		if stockErr.Op == "" {
			stockErr.Op = op
		}
		return stockErr
	}
	return pfirestore.WrapError(op, err)
}
