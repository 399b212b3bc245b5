package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	pfirestore "github.com/jacoubbakhouche/foufou-api/internal/platform/firestore"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

const (
	cartCollection = "carts"
)

// CartRepository persists carts within Firestore. Each customer owns a single
// cart document keyed by their customer ID, with line items embedded.
type CartRepository struct {
	base     *pfirestore.BaseRepository[cartDocument]
	provider *pfirestore.Provider
}

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[cartDocument](provider, cartCollection, nil, nil)
	return &CartRepository{
		base:     base,
		provider: provider,
	}, nil
}

// SaveCart writes the full cart document. When expectedUpdate is set the
// write carries a last-update-time precondition so that concurrent edits of
// the same cart surface as conflicts instead of silently overwriting.
func (r *CartRepository) SaveCart(ctx context.Context, cart domain.Cart, expectedUpdate *time.Time) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}

	cartID := strings.TrimSpace(firstCartID(cart))
	if cartID == "" {
		return domain.Cart{}, errors.New("cart repository: customer id is required")
	}

	now := time.Now().UTC()
	if !cart.UpdatedAt.IsZero() {
		now = cart.UpdatedAt.UTC()
	}
	createdAt := cart.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}

	doc := newCartDocument(cart)
	doc.CreatedAt = createdAt
	doc.UpdatedAt = now

	var result pfirestore.MutationResult
	var err error
	if expectedUpdate == nil || expectedUpdate.IsZero() {
		result, err = r.base.Set(ctx, cartID, doc)
	} else {
		updates := []firestore.Update{
			{Path: "items", Value: doc.Items},
			{Path: "itemsCount", Value: doc.ItemsCount},
			{Path: "updatedAt", Value: doc.UpdatedAt},
		}
		result, err = r.base.Update(ctx, cartID, updates, firestore.LastUpdateTime(expectedUpdate.UTC()))
	}
	if err != nil {
		return domain.Cart{}, err
	}

	saved := cloneCart(cart)
	saved.ID = cartID
	saved.CustomerID = cartID
	saved.CreatedAt = doc.CreatedAt
	saved.UpdatedAt = result.UpdateTime
	return saved, nil
}

// GetCart loads the cart for the given customer ID.
func (r *CartRepository) GetCart(ctx context.Context, customerID string) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	uid := strings.TrimSpace(customerID)
	if uid == "" {
		return domain.Cart{}, errors.New("cart repository: customer id is required")
	}

	doc, err := r.base.Get(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}

	items := make([]domain.CartItem, 0, len(doc.Data.Items))
	for _, item := range doc.Data.Items {
		items = append(items, item.toDomain())
	}

	cart := domain.Cart{
		ID:         doc.ID,
		CustomerID: doc.ID,
		Items:      items,
		UpdatedAt: func() time.Time {
			if !doc.UpdateTime.IsZero() {
				return doc.UpdateTime
			}
			return doc.Data.UpdatedAt
		}(),
		CreatedAt: func() time.Time {
			if !doc.Data.CreatedAt.IsZero() {
				return doc.Data.CreatedAt
			}
			return doc.UpdateTime
		}(),
	}
	return cart, nil
}

// DeleteCart removes the customer's cart document. Deleting a cart that does
// not exist is a no-op.
func (r *CartRepository) DeleteCart(ctx context.Context, customerID string) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	uid := strings.TrimSpace(customerID)
	if uid == "" {
		return errors.New("cart repository: customer id is required")
	}

	ref, err := r.base.DocumentRef(ctx, uid)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("carts.delete", err)
	}
	return nil
}

func firstCartID(cart domain.Cart) string {
	if strings.TrimSpace(cart.ID) != "" {
		return strings.TrimSpace(cart.ID)
	}
	return strings.TrimSpace(cart.CustomerID)
}

func cloneCart(cart domain.Cart) domain.Cart {
	dup := cart
	if cart.Items != nil {
		dup.Items = make([]domain.CartItem, len(cart.Items))
		copy(dup.Items, cart.Items)
	}
	return dup
}

type cartDocument struct {
	Items      []cartItemDocument `firestore:"items"`
	ItemsCount int                `firestore:"itemsCount"`
	CreatedAt  time.Time          `firestore:"createdAt"`
	UpdatedAt  time.Time          `firestore:"updatedAt"`
}

type cartItemDocument struct {
	ID        string     `firestore:"id"`
	ProductID string     `firestore:"productId"`
	NameFr    string     `firestore:"nameFr"`
	NameAr    string     `firestore:"nameAr"`
	Color     string     `firestore:"color,omitempty"`
	Size      string     `firestore:"size,omitempty"`
	Quantity  int        `firestore:"qty"`
	UnitPrice int64      `firestore:"unitPrice"`
	ImageURL  string     `firestore:"imageUrl,omitempty"`
	AddedAt   time.Time  `firestore:"addedAt"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty"`
}

func newCartDocument(cart domain.Cart) cartDocument {
	items := make([]cartItemDocument, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = cartItemDocument{
			ID:        strings.TrimSpace(item.ID),
			ProductID: strings.TrimSpace(item.ProductID),
			NameFr:    strings.TrimSpace(item.Name.French),
			NameAr:    strings.TrimSpace(item.Name.Arabic),
			Color:     strings.TrimSpace(item.Color),
			Size:      strings.TrimSpace(item.Size),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ImageURL:  strings.TrimSpace(item.ImageURL),
			AddedAt:   item.AddedAt.UTC(),
			UpdatedAt: item.UpdatedAt,
		}
	}
	return cartDocument{
		Items:      items,
		ItemsCount: len(items),
	}
}

func (d cartItemDocument) toDomain() domain.CartItem {
	return domain.CartItem{
		ID:        d.ID,
		ProductID: d.ProductID,
		Name:      domain.LocalizedText{French: d.NameFr, Arabic: d.NameAr},
		Color:     d.Color,
		Size:      d.Size,
		Quantity:  d.Quantity,
		UnitPrice: d.UnitPrice,
		ImageURL:  d.ImageURL,
		AddedAt:   d.AddedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

var _ repositories.CartRepository = (*CartRepository)(nil)
