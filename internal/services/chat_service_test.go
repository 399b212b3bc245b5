package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/notify"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

func TestChatServiceGetOrCreateThreadOpensOnFirstContact(t *testing.T) {
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	var created domain.ChatThread

	chat := &stubChatRepository{
		findByCustomerFunc: func(ctx context.Context, customerID string) (domain.ChatThread, error) {
			return domain.ChatThread{}, &repositoryErrorStub{notFound: true}
		},
		upsertThreadFunc: func(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error) {
			created = thread
			return thread, nil
		},
	}

	service, err := NewChatService(ChatServiceDeps{
		Chat:        chat,
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { return "01HTESTTHREAD" },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	thread, err := service.GetOrCreateThread(context.Background(), OpenThreadCommand{
		CustomerID:   "cust-1",
		CustomerName: " Amine ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if thread.ID != "thr_01htestthread" {
		t.Fatalf("expected generated thread id, got %q", thread.ID)
	}
	if created.CustomerName != "Amine" {
		t.Fatalf("expected trimmed customer name, got %q", created.CustomerName)
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, created.CreatedAt)
	}
}

func TestChatServiceGetOrCreateThreadReturnsExisting(t *testing.T) {
	existing := domain.ChatThread{ID: "thr_abc", CustomerID: "cust-2", UnreadByAdmin: 3}
	upserts := 0

	chat := &stubChatRepository{
		findByCustomerFunc: func(ctx context.Context, customerID string) (domain.ChatThread, error) {
			return existing, nil
		},
		upsertThreadFunc: func(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error) {
			upserts++
			return thread, nil
		},
	}

	service, err := NewChatService(ChatServiceDeps{Chat: chat})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	thread, err := service.GetOrCreateThread(context.Background(), OpenThreadCommand{CustomerID: "cust-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thread.ID != "thr_abc" || upserts != 0 {
		t.Fatalf("expected existing thread untouched, got %+v with %d upserts", thread, upserts)
	}
}

func TestChatServicePostMessagePersistsBroadcastsAndNotifies(t *testing.T) {
	now := time.Date(2025, 5, 11, 14, 0, 0, 0, time.UTC)
	var appended domain.ChatMessage
	var updatedThread domain.ChatThread
	var frames [][]byte
	var published []notify.Event

	chat := &stubChatRepository{
		findThreadFunc: func(ctx context.Context, threadID string) (domain.ChatThread, error) {
			return domain.ChatThread{ID: threadID, CustomerID: "cust-1", UnreadByAdmin: 1}, nil
		},
		appendMessageFunc: func(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
			appended = message
			return message, nil
		},
		upsertThreadFunc: func(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error) {
			updatedThread = thread
			return thread, nil
		},
	}

	service, err := NewChatService(ChatServiceDeps{
		Chat: chat,
		Broadcaster: broadcastFunc(func(threadID string, data []byte) {
			frames = append(frames, data)
		}),
		Publisher: notify.PublisherFunc(func(ctx context.Context, event notify.Event) (string, error) {
			published = append(published, event)
			return "msg-1", nil
		}),
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { return "01HTESTMSG" },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	message, err := service.PostMessage(context.Background(), PostMessageCommand{
		ThreadID: "thr_abc",
		SenderID: "cust-1",
		Sender:   domain.ChatSenderCustomer,
		Body:     "  سلام، <b>وين</b> طلبيتي؟  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if message.ID != "msg_01htestmsg" {
		t.Fatalf("expected generated message id, got %q", message.ID)
	}
	if strings.Contains(appended.Body, "<") {
		t.Fatalf("expected sanitised body, got %q", appended.Body)
	}
	if !strings.Contains(appended.Body, "سلام") {
		t.Fatalf("expected arabic text preserved, got %q", appended.Body)
	}
	if updatedThread.UnreadByAdmin != 2 {
		t.Fatalf("expected unread counter bumped to 2, got %d", updatedThread.UnreadByAdmin)
	}
	if updatedThread.LastMessage == "" || !updatedThread.LastMessageAt.Equal(now) {
		t.Fatalf("expected thread preview refreshed, got %+v", updatedThread)
	}

	if len(frames) != 1 {
		t.Fatalf("expected 1 broadcast frame, got %d", len(frames))
	}
	var wire struct {
		Type     string `json:"type"`
		ThreadID string `json:"threadId"`
		Sender   string `json:"sender"`
	}
	if err := json.Unmarshal(frames[0], &wire); err != nil {
		t.Fatalf("broadcast frame is not JSON: %v", err)
	}
	if wire.Type != "message" || wire.ThreadID != "thr_abc" || wire.Sender != "customer" {
		t.Fatalf("unexpected wire frame %+v", wire)
	}

	if len(published) != 1 {
		t.Fatalf("expected 1 push event, got %d", len(published))
	}
	if published[0].Kind != notify.KindChatMessage || published[0].Audience != notify.AudienceAdmins {
		t.Fatalf("expected admins notified of customer message, got %+v", published[0])
	}
}

func TestChatServicePostMessageSupportResetsUnreadAndNotifiesCustomer(t *testing.T) {
	now := time.Date(2025, 5, 11, 15, 0, 0, 0, time.UTC)
	var updatedThread domain.ChatThread
	var published []notify.Event

	chat := &stubChatRepository{
		findThreadFunc: func(ctx context.Context, threadID string) (domain.ChatThread, error) {
			return domain.ChatThread{ID: threadID, CustomerID: "cust-1", UnreadByAdmin: 4}, nil
		},
		appendMessageFunc: func(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
			return message, nil
		},
		upsertThreadFunc: func(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error) {
			updatedThread = thread
			return thread, nil
		},
	}

	service, err := NewChatService(ChatServiceDeps{
		Chat: chat,
		Publisher: notify.PublisherFunc(func(ctx context.Context, event notify.Event) (string, error) {
			published = append(published, event)
			return "msg-2", nil
		}),
		Clock: func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	if _, err := service.PostMessage(context.Background(), PostMessageCommand{
		ThreadID: "thr_abc",
		SenderID: "admin-1",
		Sender:   domain.ChatSenderSupport,
		Body:     "Votre commande part demain.",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updatedThread.UnreadByAdmin != 0 {
		t.Fatalf("expected unread counter reset, got %d", updatedThread.UnreadByAdmin)
	}
	if len(published) != 1 || published[0].Audience != notify.AudienceCustomer || published[0].CustomerID != "cust-1" {
		t.Fatalf("expected customer notified of support reply, got %+v", published)
	}
}

func TestChatServicePostMessageCustomerCannotWriteForeignThread(t *testing.T) {
	chat := &stubChatRepository{
		findThreadFunc: func(ctx context.Context, threadID string) (domain.ChatThread, error) {
			return domain.ChatThread{ID: threadID, CustomerID: "cust-owner"}, nil
		},
	}

	service, err := NewChatService(ChatServiceDeps{Chat: chat})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	_, err = service.PostMessage(context.Background(), PostMessageCommand{
		ThreadID: "thr_abc",
		SenderID: "cust-intruder",
		Sender:   domain.ChatSenderCustomer,
		Body:     "hello",
	})
	if !errors.Is(err, ErrChatForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestChatServicePostMessageEmptyAfterSanitise(t *testing.T) {
	service, err := NewChatService(ChatServiceDeps{Chat: &stubChatRepository{}})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	_, err = service.PostMessage(context.Background(), PostMessageCommand{
		ThreadID: "thr_abc",
		SenderID: "cust-1",
		Sender:   domain.ChatSenderCustomer,
		Body:     "<script>alert(1)</script>",
	})
	if !errors.Is(err, ErrChatInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestChatServiceListMessagesGuardsCustomerAccess(t *testing.T) {
	chat := &stubChatRepository{
		findThreadFunc: func(ctx context.Context, threadID string) (domain.ChatThread, error) {
			return domain.ChatThread{ID: threadID, CustomerID: "cust-owner"}, nil
		},
		listMessagesFunc: func(ctx context.Context, threadID string, pager domain.Pagination) (domain.CursorPage[domain.ChatMessage], error) {
			return domain.CursorPage[domain.ChatMessage]{Items: []domain.ChatMessage{{ID: "msg-1"}}}, nil
		},
	}

	service, err := NewChatService(ChatServiceDeps{Chat: chat})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	_, err = service.ListMessages(context.Background(), ListMessagesCommand{
		ThreadID:   "thr_abc",
		CustomerID: "cust-intruder",
	})
	if !errors.Is(err, ErrChatForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	page, err := service.ListMessages(context.Background(), ListMessagesCommand{
		ThreadID: "thr_abc",
		Staff:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error for staff: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 message, got %d", len(page.Items))
	}
}

func TestChatServiceMarkThreadReadClearsCounter(t *testing.T) {
	now := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)
	var updated domain.ChatThread

	chat := &stubChatRepository{
		findThreadFunc: func(ctx context.Context, threadID string) (domain.ChatThread, error) {
			return domain.ChatThread{ID: threadID, CustomerID: "cust-1", UnreadByAdmin: 5}, nil
		},
		upsertThreadFunc: func(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error) {
			updated = thread
			return thread, nil
		},
	}

	service, err := NewChatService(ChatServiceDeps{
		Chat:  chat,
		Clock: func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}

	thread, err := service.MarkThreadRead(context.Background(), MarkThreadReadCommand{ThreadID: "thr_abc", ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thread.UnreadByAdmin != 0 || updated.UnreadByAdmin != 0 {
		t.Fatalf("expected unread cleared, got %d / %d", thread.UnreadByAdmin, updated.UnreadByAdmin)
	}
}

// Shared stubs ---------------------------------------------------------------

type broadcastFunc func(threadID string, data []byte)

func (f broadcastFunc) Broadcast(threadID string, data []byte) {
	f(threadID, data)
}

type stubChatRepository struct {
	upsertThreadFunc   func(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error)
	findThreadFunc     func(ctx context.Context, threadID string) (domain.ChatThread, error)
	findByCustomerFunc func(ctx context.Context, customerID string) (domain.ChatThread, error)
	listThreadsFunc    func(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ChatThread], error)
	appendMessageFunc  func(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error)
	listMessagesFunc   func(ctx context.Context, threadID string, pager domain.Pagination) (domain.CursorPage[domain.ChatMessage], error)
}

func (s *stubChatRepository) UpsertThread(ctx context.Context, thread domain.ChatThread) (domain.ChatThread, error) {
	if s.upsertThreadFunc != nil {
		return s.upsertThreadFunc(ctx, thread)
	}
	return thread, nil
}

func (s *stubChatRepository) FindThread(ctx context.Context, threadID string) (domain.ChatThread, error) {
	if s.findThreadFunc != nil {
		return s.findThreadFunc(ctx, threadID)
	}
	return domain.ChatThread{}, errors.New("not implemented")
}

func (s *stubChatRepository) FindThreadByCustomer(ctx context.Context, customerID string) (domain.ChatThread, error) {
	if s.findByCustomerFunc != nil {
		return s.findByCustomerFunc(ctx, customerID)
	}
	return domain.ChatThread{}, errors.New("not implemented")
}

func (s *stubChatRepository) ListThreads(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ChatThread], error) {
	if s.listThreadsFunc != nil {
		return s.listThreadsFunc(ctx, pager)
	}
	return domain.CursorPage[domain.ChatThread]{}, errors.New("not implemented")
}

func (s *stubChatRepository) AppendMessage(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	if s.appendMessageFunc != nil {
		return s.appendMessageFunc(ctx, message)
	}
	return message, nil
}

func (s *stubChatRepository) ListMessages(ctx context.Context, threadID string, pager domain.Pagination) (domain.CursorPage[domain.ChatMessage], error) {
	if s.listMessagesFunc != nil {
		return s.listMessagesFunc(ctx, threadID, pager)
	}
	return domain.CursorPage[domain.ChatMessage]{}, errors.New("not implemented")
}

var _ repositories.ChatRepository = (*stubChatRepository)(nil)
