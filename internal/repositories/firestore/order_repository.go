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

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	pfirestore "github.com/jacoubbakhouche/foufou-api/internal/platform/firestore"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

const ordersCollection = "orders"

// OrderRepository persists customer orders within Firestore.
type OrderRepository struct {
	base     *pfirestore.BaseRepository[orderDocument]
	provider *pfirestore.Provider
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil)
	return &OrderRepository{base: base, provider: provider}, nil
}

// Insert creates the order document. Inserting an order whose ID already
// exists is reported as a conflict.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	orderID := strings.TrimSpace(order.ID)
	if orderID == "" {
		return errors.New("order insert: id is required")
	}

	ref, err := r.base.DocumentRef(ctx, orderID)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, newOrderDocument(order)); err != nil {
		return pfirestore.WrapError("orders.insert", err)
	}
	return nil
}

// Update overwrites the order document.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	orderID := strings.TrimSpace(order.ID)
	if orderID == "" {
		return errors.New("order update: id is required")
	}

	if _, err := r.base.Set(ctx, orderID, newOrderDocument(order)); err != nil {
		return err
	}
	return nil
}

// Delete removes the order document.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return errors.New("order delete: id is required")
	}

	ref, err := r.base.DocumentRef(ctx, orderID)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("orders.delete", err)
	}
	return nil
}

// FindByID loads a single order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, errors.New("order find: id is required")
	}

	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// List returns orders newest first, filtered by customer, status and
// creation date.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	if r == nil || r.provider == nil {
		return domain.CursorPage[domain.Order]{}, errors.New("order repository not initialised")
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
		return domain.CursorPage[domain.Order]{}, pfirestore.WrapError("orders.list", err)
	}

	query := client.Collection(ordersCollection).Query
	if customerID := strings.TrimSpace(filter.CustomerID); customerID != "" {
		query = query.Where("customerId", "==", customerID)
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, 0, len(filter.Status))
		for _, s := range filter.Status {
			statuses = append(statuses, string(s))
		}
		query = query.Where("status", "in", statuses)
	}
	if filter.DateRange.From != nil {
		query = query.Where("createdAt", ">=", filter.DateRange.From.UTC())
	}
	if filter.DateRange.To != nil {
		query = query.Where("createdAt", "<=", filter.DateRange.To.UTC())
	}
	query = query.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc).Limit(pageSize + 1)

	if token := strings.TrimSpace(filter.Pagination.PageToken); token != "" {
		decoded, err := decodeOrderPageToken(token)
		if err != nil {
			return domain.CursorPage[domain.Order]{}, pfirestore.WrapError("orders.list", err)
		}
		query = query.StartAfter(decoded.CreatedAt, decoded.ID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var orders []domain.Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return domain.CursorPage[domain.Order]{}, pfirestore.WrapError("orders.list", err)
		}
		var doc orderDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.CursorPage[domain.Order]{}, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
		}
		orders = append(orders, doc.toDomain(snap.Ref.ID))
	}

	hasMore := len(orders) > pageSize
	if hasMore {
		orders = orders[:pageSize]
	}
	var nextToken string
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		encoded, err := encodeOrderPageToken(orderPageToken{ID: last.ID, CreatedAt: last.CreatedAt})
		if err != nil {
			return domain.CursorPage[domain.Order]{}, pfirestore.WrapError("orders.list", err)
		}
		nextToken = encoded
	}

	return domain.CursorPage[domain.Order]{
		Items:         orders,
		NextPageToken: nextToken,
	}, nil
}

// Helper structures ---------------------------------------------------------

type orderDocument struct {
	OrderNumber string              `firestore:"orderNumber"`
	CustomerID  string              `firestore:"customerId"`
	Status      string              `firestore:"status"`
	Customer    orderCustomerDoc    `firestore:"customer"`
	Delivery    orderDeliveryDoc    `firestore:"delivery"`
	Items       []orderLineItemDoc  `firestore:"items"`
	Totals      orderTotalsDocument `firestore:"totals"`
	Notes       string              `firestore:"notes,omitempty"`
	CreatedAt   time.Time           `firestore:"createdAt"`
	UpdatedAt   time.Time           `firestore:"updatedAt"`
	ConfirmedAt *time.Time          `firestore:"confirmedAt,omitempty"`
	ShippedAt   *time.Time          `firestore:"shippedAt,omitempty"`
	DeliveredAt *time.Time          `firestore:"deliveredAt,omitempty"`
	CancelledAt *time.Time          `firestore:"cancelledAt,omitempty"`
}

type orderCustomerDoc struct {
	FullName string `firestore:"fullName"`
	Phone    string `firestore:"phone"`
}

type orderDeliveryDoc struct {
	Mode    string `firestore:"mode"`
	Wilaya  string `firestore:"wilaya"`
	Commune string `firestore:"commune,omitempty"`
	Address string `firestore:"address,omitempty"`
	Fee     int64  `firestore:"fee"`
}

type orderLineItemDoc struct {
	ProductID string `firestore:"productId"`
	NameFr    string `firestore:"nameFr"`
	NameAr    string `firestore:"nameAr"`
	Color     string `firestore:"color,omitempty"`
	Size      string `firestore:"size,omitempty"`
	Quantity  int    `firestore:"qty"`
	UnitPrice int64  `firestore:"unitPrice"`
	ImageURL  string `firestore:"imageUrl,omitempty"`
}

type orderTotalsDocument struct {
	Subtotal    int64 `firestore:"subtotal"`
	DeliveryFee int64 `firestore:"deliveryFee"`
	Total       int64 `firestore:"total"`
}

func newOrderDocument(order domain.Order) orderDocument {
	items := make([]orderLineItemDoc, len(order.Items))
	for i, item := range order.Items {
		items[i] = orderLineItemDoc{
			ProductID: strings.TrimSpace(item.ProductID),
			NameFr:    strings.TrimSpace(item.Name.French),
			NameAr:    strings.TrimSpace(item.Name.Arabic),
			Color:     strings.TrimSpace(item.Color),
			Size:      strings.TrimSpace(item.Size),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ImageURL:  strings.TrimSpace(item.ImageURL),
		}
	}
	return orderDocument{
		OrderNumber: strings.TrimSpace(order.OrderNumber),
		CustomerID:  strings.TrimSpace(order.CustomerID),
		Status:      string(order.Status),
		Customer: orderCustomerDoc{
			FullName: strings.TrimSpace(order.Customer.FullName),
			Phone:    strings.TrimSpace(order.Customer.Phone),
		},
		Delivery: orderDeliveryDoc{
			Mode:    string(order.Delivery.Mode),
			Wilaya:  strings.TrimSpace(order.Delivery.Wilaya),
			Commune: strings.TrimSpace(order.Delivery.Commune),
			Address: strings.TrimSpace(order.Delivery.Address),
			Fee:     order.Delivery.Fee,
		},
		Items: items,
		Totals: orderTotalsDocument{
			Subtotal:    order.Totals.Subtotal,
			DeliveryFee: order.Totals.DeliveryFee,
			Total:       order.Totals.Total,
		},
		Notes:       strings.TrimSpace(order.Notes),
		CreatedAt:   order.CreatedAt.UTC(),
		UpdatedAt:   order.UpdatedAt.UTC(),
		ConfirmedAt: order.ConfirmedAt,
		ShippedAt:   order.ShippedAt,
		DeliveredAt: order.DeliveredAt,
		CancelledAt: order.CancelledAt,
	}
}

func (d orderDocument) toDomain(id string) domain.Order {
	items := make([]domain.OrderLineItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = domain.OrderLineItem{
			ProductID: item.ProductID,
			Name:      domain.LocalizedText{French: item.NameFr, Arabic: item.NameAr},
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ImageURL:  item.ImageURL,
		}
	}
	return domain.Order{
		ID:          id,
		OrderNumber: d.OrderNumber,
		CustomerID:  d.CustomerID,
		Status:      domain.OrderStatus(d.Status),
		Customer: domain.OrderCustomer{
			FullName: d.Customer.FullName,
			Phone:    d.Customer.Phone,
		},
		Delivery: domain.OrderDelivery{
			Mode:    domain.DeliveryMode(d.Delivery.Mode),
			Wilaya:  d.Delivery.Wilaya,
			Commune: d.Delivery.Commune,
			Address: d.Delivery.Address,
			Fee:     d.Delivery.Fee,
		},
		Items: items,
		Totals: domain.OrderTotals{
			Subtotal:    d.Totals.Subtotal,
			DeliveryFee: d.Totals.DeliveryFee,
			Total:       d.Totals.Total,
		},
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		ConfirmedAt: d.ConfirmedAt,
		ShippedAt:   d.ShippedAt,
		DeliveredAt: d.DeliveredAt,
		CancelledAt: d.CancelledAt,
	}
}

type orderPageToken struct {
	ID        string
	CreatedAt time.Time
}

func encodeOrderPageToken(token orderPageToken) (string, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	if err := enc.Encode(token); err != nil {
		return "", fmt.Errorf("encode order page token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes.TrimSpace(buf.Bytes())), nil
}

func decodeOrderPageToken(encoded string) (*orderPageToken, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode order page token: %w", err)
	}
	var token orderPageToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode order page token json: %w", err)
	}
	return &token, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)
