package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: cart repository is required")
	errCartProductsRequired   = errors.New("cart service: product repository is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

const maxCartLines = 50

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to missing dependencies or backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// ErrCartNotFound indicates the requested cart or cart line does not exist.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartConflict indicates the cart could not be updated due to concurrent modifications.
var ErrCartConflict = errors.New("cart service: conflict")

// CartServiceDeps wires the repositories and ambient helpers for cart operations.
type CartServiceDeps struct {
	Carts       repositories.CartRepository
	Products    repositories.ProductRepository
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
	IDGenerator func() string
}

type cartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	newID    func() string
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Carts == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Products == nil {
		return nil, errCartProductsRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	service := &cartService{
		carts:    deps.Carts,
		products: deps.Products,
		newID:    idGen,
		now:      func() time.Time { return deps.Clock().UTC() },
		logger:   logger,
	}
	return service, nil
}

// GetOrCreateCart loads the active cart for the customer, creating an empty cart when absent.
func (s *cartService) GetOrCreateCart(ctx context.Context, customerID string) (Cart, error) {
	if s == nil || s.carts == nil {
		return Cart{}, ErrCartUnavailable
	}

	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.carts.GetCart(ctx, cid)
	if err != nil {
		if !isRepoNotFound(err) {
			return Cart{}, s.translateRepoError(err)
		}
		saved, err := s.carts.SaveCart(ctx, s.newCart(cid), nil)
		if err != nil {
			return Cart{}, s.translateRepoError(err)
		}
		cart = saved
	}

	return s.normaliseCart(cart, cid), nil
}

// AddOrUpdateItem sets or merges the quantity for a product variant line,
// keyed by (product, colour, size). With cmd.Merge the quantity is added onto
// any existing line; otherwise it replaces it. A zero or negative quantity
// removes the line.
func (s *cartService) AddOrUpdateItem(ctx context.Context, cmd UpsertCartItemCommand) (Cart, error) {
	if s == nil || s.carts == nil || s.products == nil {
		return Cart{}, ErrCartUnavailable
	}

	cid := strings.TrimSpace(cmd.CustomerID)
	if cid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return Cart{}, fmt.Errorf("%w: product_id is required", ErrCartInvalidInput)
	}

	cart, exists, err := s.loadOrNewCart(ctx, cid)
	if err != nil {
		return Cart{}, err
	}
	previousUpdatedAt := cart.UpdatedAt

	color := strings.TrimSpace(cmd.Color)
	size := strings.TrimSpace(cmd.Size)
	items := cloneCartItems(cart.Items)
	idx := indexOfCartLine(items, productID, color, size)
	now := s.now()

	if cmd.Quantity <= 0 {
		if idx < 0 {
			return s.normaliseCart(cart, cid), nil
		}
		items = append(items[:idx], items[idx+1:]...)
	} else {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if isStockProductNotFound(err) || isRepoNotFound(err) {
				return Cart{}, fmt.Errorf("%w: product not found", ErrCartInvalidInput)
			}
			return Cart{}, s.translateRepoError(err)
		}
		if err := validateCartSelection(product, color, size); err != nil {
			return Cart{}, err
		}

		if idx >= 0 {
			quantity := cmd.Quantity
			if cmd.Merge {
				quantity += items[idx].Quantity
			}
			items[idx].Quantity = quantity
			items[idx].Name = product.Name
			items[idx].UnitPrice = product.Price
			items[idx].ImageURL = firstImageURL(product)
			ts := now
			items[idx].UpdatedAt = &ts
		} else {
			if len(items) >= maxCartLines {
				return Cart{}, fmt.Errorf("%w: cart holds at most %d lines", ErrCartInvalidInput, maxCartLines)
			}
			newID := strings.TrimSpace(s.newID())
			if newID == "" {
				newID = fmt.Sprintf("line-%d", now.UnixNano())
			}
			items = append(items, domain.CartItem{
				ID:        newID,
				ProductID: productID,
				Name:      product.Name,
				Color:     color,
				Size:      size,
				Quantity:  cmd.Quantity,
				UnitPrice: product.Price,
				ImageURL:  firstImageURL(product),
				AddedAt:   now,
			})
		}
	}

	cart.Items = items
	cart.UpdatedAt = now

	saved, err := s.saveCart(ctx, cart, exists, previousUpdatedAt)
	if err != nil {
		return Cart{}, err
	}
	return s.normaliseCart(saved, cid), nil
}

// RemoveItem drops the line matching the product variant key.
func (s *cartService) RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error) {
	if s == nil || s.carts == nil {
		return Cart{}, ErrCartUnavailable
	}

	cid := strings.TrimSpace(cmd.CustomerID)
	if cid == "" {
		return Cart{}, ErrCartInvalidInput
	}
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return Cart{}, fmt.Errorf("%w: product_id is required", ErrCartInvalidInput)
	}

	cart, err := s.carts.GetCart(ctx, cid)
	if err != nil {
		if isRepoNotFound(err) {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, s.translateRepoError(err)
	}
	cart = s.normaliseCart(cart, cid)
	previousUpdatedAt := cart.UpdatedAt

	items := cloneCartItems(cart.Items)
	idx := indexOfCartLine(items, productID, strings.TrimSpace(cmd.Color), strings.TrimSpace(cmd.Size))
	if idx < 0 {
		return Cart{}, ErrCartNotFound
	}

	items = append(items[:idx], items[idx+1:]...)
	cart.Items = items
	cart.UpdatedAt = s.now()

	saved, err := s.saveCart(ctx, cart, true, previousUpdatedAt)
	if err != nil {
		return Cart{}, err
	}
	return s.normaliseCart(saved, cid), nil
}

// ClearCart deletes the customer's cart. A missing cart is not an error.
func (s *cartService) ClearCart(ctx context.Context, customerID string) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}

	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return ErrCartInvalidInput
	}

	if err := s.carts.DeleteCart(ctx, cid); err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return s.translateRepoError(err)
	}
	return nil
}

func (s *cartService) loadOrNewCart(ctx context.Context, customerID string) (domain.Cart, bool, error) {
	cart, err := s.carts.GetCart(ctx, customerID)
	if err != nil {
		if isRepoNotFound(err) {
			return s.newCart(customerID), false, nil
		}
		return domain.Cart{}, false, s.translateRepoError(err)
	}
	return s.normaliseCart(cart, customerID), true, nil
}

func (s *cartService) saveCart(ctx context.Context, cart domain.Cart, exists bool, previousUpdatedAt time.Time) (domain.Cart, error) {
	var expected *time.Time
	if exists && !previousUpdatedAt.IsZero() {
		// The timestamp read with the cart guards against lost updates between load and save.
		ts := previousUpdatedAt.UTC()
		expected = &ts
	}
	saved, err := s.carts.SaveCart(ctx, cart, expected)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

func (s *cartService) newCart(customerID string) domain.Cart {
	now := s.now()
	return domain.Cart{
		ID:         customerID,
		CustomerID: customerID,
		Items:      []domain.CartItem{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *cartService) normaliseCart(cart domain.Cart, customerID string) domain.Cart {
	if cart.ID = strings.TrimSpace(cart.ID); cart.ID == "" {
		cart.ID = customerID
	}
	cart.CustomerID = strings.TrimSpace(firstNonEmpty(cart.CustomerID, customerID))
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = s.now()
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = s.now()
	}
	return cart
}

func validateCartSelection(product domain.Product, color, size string) error {
	if !product.Published {
		return fmt.Errorf("%w: product is not available", ErrCartInvalidInput)
	}
	if len(product.Colors) > 0 {
		if color == "" {
			return fmt.Errorf("%w: colour selection is required", ErrCartInvalidInput)
		}
		if !containsFold(product.Colors, color) {
			return fmt.Errorf("%w: colour %q is not offered", ErrCartInvalidInput, color)
		}
	}
	if len(product.Sizes) > 0 {
		if size == "" {
			return fmt.Errorf("%w: size selection is required", ErrCartInvalidInput)
		}
		if !containsFold(product.Sizes, size) {
			return fmt.Errorf("%w: size %q is not offered", ErrCartInvalidInput, size)
		}
	}
	return nil
}

func firstImageURL(product domain.Product) string {
	for _, url := range product.ImageURLs {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}

// indexOfCartLine matches a line by the (product, colour, size) key, case-insensitively.
func indexOfCartLine(items []domain.CartItem, productID, color, size string) int {
	for i, item := range items {
		if !strings.EqualFold(strings.TrimSpace(item.ProductID), productID) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(item.Color), color) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(item.Size), size) {
			continue
		}
		return i
	}
	return -1
}

func cloneCartItems(items []domain.CartItem) []domain.CartItem {
	if len(items) == 0 {
		return []domain.CartItem{}
	}
	dup := make([]domain.CartItem, len(items))
	copy(dup, items)
	for i := range dup {
		if dup[i].UpdatedAt != nil {
			ts := dup[i].UpdatedAt.UTC()
			dup[i].UpdatedAt = &ts
		}
	}
	return dup
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func isStockProductNotFound(err error) bool {
	var stockErr *repositories.StockError
	return errors.As(err, &stockErr) && stockErr.Code == repositories.StockErrorProductNotFound
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCartNotFound
		case repoErr.IsConflict():
			return ErrCartConflict
		case repoErr.IsUnavailable():
			return ErrCartUnavailable
		}
	}
	return ErrCartUnavailable
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
