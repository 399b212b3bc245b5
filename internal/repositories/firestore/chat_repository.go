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

const (
	chatThreadsCollection  = "chatThreads"
	chatMessagesCollection = "messages"
)

// ChatRepository persists support conversations. Threads live in a top level
// collection and each thread owns a messages subcollection.
type ChatRepository struct {
	base     *pfirestore.BaseRepository[chatThreadDocument]
	provider *pfirestore.Provider
}

// NewChatRepository constructs a Firestore-backed chat repository.
func NewChatRepository(provider *pfirestore.Provider) (*ChatRepository, error) {
	if provider == nil {
		return nil, errors.New("chat repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[chatThreadDocument](provider, chatThreadsCollection, nil, nil)
	return &ChatRepository{base: base, provider: provider}, nil
}

// UpsertThread writes the thread header document.
func (r *ChatRepository) UpsertThread(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error) {
	if r == nil || r.base == nil {
		return domain.ChatThread{}, errors.New("chat repository not initialised")
	}
	threadID := strings.TrimSpace(thread.ID)
	if threadID == "" {
		return domain.ChatThread{}, errors.New("chat upsert thread: id is required")
	}
	if strings.TrimSpace(thread.CustomerID) == "" {
		return domain.ChatThread{}, errors.New("chat upsert thread: customer id is required")
	}

	doc := newChatThreadDocument(thread)
	if _, err := r.base.Set(ctx, threadID, doc); err != nil {
		return domain.ChatThread{}, err
	}
	return doc.toDomain(threadID), nil
}

// FindThread returns the thread header by its document ID.
func (r *ChatRepository) FindThread(ctx context.Context, threadID string) (domain.ChatThread, error) {
	if r == nil || r.base == nil {
		return domain.ChatThread{}, errors.New("chat repository not initialised")
	}
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return domain.ChatThread{}, errors.New("chat find thread: id is required")
	}

	doc, err := r.base.Get(ctx, threadID)
	if err != nil {
		return domain.ChatThread{}, err
	}
	return doc.Data.toDomain(threadID), nil
}

// FindThreadByCustomer returns the customer's thread, if one exists.
func (r *ChatRepository) FindThreadByCustomer(ctx context.Context, customerID string) (domain.ChatThread, error) {
	if r == nil || r.provider == nil {
		return domain.ChatThread{}, errors.New("chat repository not initialised")
	}
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.ChatThread{}, errors.New("chat find thread: customer id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.ChatThread{}, pfirestore.WrapError("chat.findThread", err)
	}

	iter := client.Collection(chatThreadsCollection).
		Where("customerId", "==", customerID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return domain.ChatThread{}, pfirestore.WrapError("chat.findThread", chatThreadNotFound(customerID))
	}
	if err != nil {
		return domain.ChatThread{}, pfirestore.WrapError("chat.findThread", err)
	}

	var doc chatThreadDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.ChatThread{}, fmt.Errorf("decode chat thread %s: %w", snap.Ref.ID, err)
	}
	return doc.toDomain(snap.Ref.ID), nil
}

// ListThreads returns threads ordered by most recent message first.
func (r *ChatRepository) ListThreads(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ChatThread], error) {
	if r == nil || r.provider == nil {
		return domain.CursorPage[domain.ChatThread]{}, errors.New("chat repository not initialised")
	}

	pageSize := pager.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.CursorPage[domain.ChatThread]{}, pfirestore.WrapError("chat.listThreads", err)
	}

	query := client.Collection(chatThreadsCollection).
		OrderBy("lastMessageAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Limit(pageSize + 1)

	if token := strings.TrimSpace(pager.PageToken); token != "" {
		decoded, err := decodeChatPageToken(token)
		if err != nil {
			return domain.CursorPage[domain.ChatThread]{}, pfirestore.WrapError("chat.listThreads", err)
		}
		query = query.StartAfter(decoded.At, decoded.ID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var threads []domain.ChatThread
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return domain.CursorPage[domain.ChatThread]{}, pfirestore.WrapError("chat.listThreads", err)
		}
		var doc chatThreadDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.CursorPage[domain.ChatThread]{}, fmt.Errorf("decode chat thread %s: %w", snap.Ref.ID, err)
		}
		threads = append(threads, doc.toDomain(snap.Ref.ID))
	}

	hasMore := len(threads) > pageSize
	if hasMore {
		threads = threads[:pageSize]
	}
	var nextToken string
	if hasMore && len(threads) > 0 {
		last := threads[len(threads)-1]
		encoded, err := encodeChatPageToken(chatPageToken{ID: last.ID, At: last.LastMessageAt})
		if err != nil {
			return domain.CursorPage[domain.ChatThread]{}, pfirestore.WrapError("chat.listThreads", err)
		}
		nextToken = encoded
	}

	return domain.CursorPage[domain.ChatThread]{
		Items:         threads,
		NextPageToken: nextToken,
	}, nil
}

// AppendMessage stores a message under its thread's subcollection.
func (r *ChatRepository) AppendMessage(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	if r == nil || r.provider == nil {
		return domain.ChatMessage{}, errors.New("chat repository not initialised")
	}
	messageID := strings.TrimSpace(message.ID)
	threadID := strings.TrimSpace(message.ThreadID)
	if messageID == "" {
		return domain.ChatMessage{}, errors.New("chat append message: id is required")
	}
	if threadID == "" {
		return domain.ChatMessage{}, errors.New("chat append message: thread id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.ChatMessage{}, pfirestore.WrapError("chat.appendMessage", err)
	}

	doc := chatMessageDocument{
		Sender:    string(message.Sender),
		SenderID:  strings.TrimSpace(message.SenderID),
		Body:      message.Body,
		CreatedAt: message.CreatedAt.UTC(),
	}
	ref := client.Collection(chatThreadsCollection).Doc(threadID).Collection(chatMessagesCollection).Doc(messageID)
	if _, err := ref.Create(ctx, doc); err != nil {
		return domain.ChatMessage{}, pfirestore.WrapError("chat.appendMessage", err)
	}
	return doc.toDomain(messageID, threadID), nil
}

// ListMessages returns a thread's messages oldest first.
func (r *ChatRepository) ListMessages(ctx context.Context, threadID string, pager domain.Pagination) (domain.CursorPage[domain.ChatMessage], error) {
	if r == nil || r.provider == nil {
		return domain.CursorPage[domain.ChatMessage]{}, errors.New("chat repository not initialised")
	}
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return domain.CursorPage[domain.ChatMessage]{}, errors.New("chat list messages: thread id is required")
	}

	pageSize := pager.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	if pageSize > 500 {
		pageSize = 500
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.CursorPage[domain.ChatMessage]{}, pfirestore.WrapError("chat.listMessages", err)
	}

	query := client.Collection(chatThreadsCollection).Doc(threadID).Collection(chatMessagesCollection).
		OrderBy("createdAt", firestore.Asc).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Limit(pageSize + 1)

	if token := strings.TrimSpace(pager.PageToken); token != "" {
		decoded, err := decodeChatPageToken(token)
		if err != nil {
			return domain.CursorPage[domain.ChatMessage]{}, pfirestore.WrapError("chat.listMessages", err)
		}
		query = query.StartAfter(decoded.At, decoded.ID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []domain.ChatMessage
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return domain.CursorPage[domain.ChatMessage]{}, pfirestore.WrapError("chat.listMessages", err)
		}
		var doc chatMessageDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.CursorPage[domain.ChatMessage]{}, fmt.Errorf("decode chat message %s: %w", snap.Ref.ID, err)
		}
		messages = append(messages, doc.toDomain(snap.Ref.ID, threadID))
	}

	hasMore := len(messages) > pageSize
	if hasMore {
		messages = messages[:pageSize]
	}
	var nextToken string
	if hasMore && len(messages) > 0 {
		last := messages[len(messages)-1]
		encoded, err := encodeChatPageToken(chatPageToken{ID: last.ID, At: last.CreatedAt})
		if err != nil {
			return domain.CursorPage[domain.ChatMessage]{}, pfirestore.WrapError("chat.listMessages", err)
		}
		nextToken = encoded
	}

	return domain.CursorPage[domain.ChatMessage]{
		Items:         messages,
		NextPageToken: nextToken,
	}, nil
}

func chatThreadNotFound(customerID string) error {
	return status.Errorf(codes.NotFound, "chat thread for customer %s not found", customerID)
}

// Helper structures ---------------------------------------------------------

type chatThreadDocument struct {
	CustomerID    string    `firestore:"customerId"`
	CustomerName  string    `firestore:"customerName,omitempty"`
	LastMessage   string    `firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time `firestore:"lastMessageAt"`
	UnreadByAdmin int       `firestore:"unreadByAdmin"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func newChatThreadDocument(thread domain.ChatThread) chatThreadDocument {
	return chatThreadDocument{
		CustomerID:    strings.TrimSpace(thread.CustomerID),
		CustomerName:  strings.TrimSpace(thread.CustomerName),
		LastMessage:   thread.LastMessage,
		LastMessageAt: thread.LastMessageAt.UTC(),
		UnreadByAdmin: thread.UnreadByAdmin,
		CreatedAt:     thread.CreatedAt.UTC(),
		UpdatedAt:     thread.UpdatedAt.UTC(),
	}
}

func (d chatThreadDocument) toDomain(id string) domain.ChatThread {
	return domain.ChatThread{
		ID:            id,
		CustomerID:    d.CustomerID,
		CustomerName:  d.CustomerName,
		LastMessage:   d.LastMessage,
		LastMessageAt: d.LastMessageAt,
		UnreadByAdmin: d.UnreadByAdmin,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type chatMessageDocument struct {
	Sender    string    `firestore:"sender"`
	SenderID  string    `firestore:"senderId"`
	Body      string    `firestore:"body"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func (d chatMessageDocument) toDomain(id, threadID string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        id,
		ThreadID:  threadID,
		Sender:    domain.ChatSender(d.Sender),
		SenderID:  d.SenderID,
		Body:      d.Body,
		CreatedAt: d.CreatedAt,
	}
}

type chatPageToken struct {
	ID string
	At time.Time
}

func encodeChatPageToken(token chatPageToken) (string, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	if err := enc.Encode(token); err != nil {
		return "", fmt.Errorf("encode chat page token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes.TrimSpace(buf.Bytes())), nil
}

func decodeChatPageToken(encoded string) (*chatPageToken, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode chat page token: %w", err)
	}
	var token chatPageToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode chat page token json: %w", err)
	}
	return &token, nil
}

var _ repositories.ChatRepository = (*ChatRepository)(nil)
