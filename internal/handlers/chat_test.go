package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/auth"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

type stubChatService struct {
	openFunc     func(ctx context.Context, cmd services.OpenThreadCommand) (services.ChatThread, error)
	listFunc     func(ctx context.Context, pager services.Pagination) (domain.CursorPage[services.ChatThread], error)
	messagesFunc func(ctx context.Context, cmd services.ListMessagesCommand) (domain.CursorPage[services.ChatMessage], error)
	postFunc     func(ctx context.Context, cmd services.PostMessageCommand) (services.ChatMessage, error)
	readFunc     func(ctx context.Context, cmd services.MarkThreadReadCommand) (services.ChatThread, error)
}

func (s *stubChatService) GetOrCreateThread(ctx context.Context, cmd services.OpenThreadCommand) (services.ChatThread, error) {
	if s.openFunc != nil {
		return s.openFunc(ctx, cmd)
	}
	return services.ChatThread{}, nil
}

func (s *stubChatService) ListThreads(ctx context.Context, pager services.Pagination) (domain.CursorPage[services.ChatThread], error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, pager)
	}
	return domain.CursorPage[services.ChatThread]{}, nil
}

func (s *stubChatService) ListMessages(ctx context.Context, cmd services.ListMessagesCommand) (domain.CursorPage[services.ChatMessage], error) {
	if s.messagesFunc != nil {
		return s.messagesFunc(ctx, cmd)
	}
	return domain.CursorPage[services.ChatMessage]{}, nil
}

func (s *stubChatService) PostMessage(ctx context.Context, cmd services.PostMessageCommand) (services.ChatMessage, error) {
	if s.postFunc != nil {
		return s.postFunc(ctx, cmd)
	}
	return services.ChatMessage{}, nil
}

func (s *stubChatService) MarkThreadRead(ctx context.Context, cmd services.MarkThreadReadCommand) (services.ChatThread, error) {
	if s.readFunc != nil {
		return s.readFunc(ctx, cmd)
	}
	return services.ChatThread{}, nil
}

var _ services.ChatService = (*stubChatService)(nil)

func newChatRouter(service services.ChatService) chi.Router {
	handler := NewChatHandlers(nil, service, nil)
	router := chi.NewRouter()
	router.Route("/chat", handler.Routes)
	return router
}

func TestChatHandlersOpenThread(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	service := &stubChatService{
		openFunc: func(ctx context.Context, cmd services.OpenThreadCommand) (services.ChatThread, error) {
			if cmd.CustomerID != "cust-7" {
				t.Fatalf("unexpected customer %q", cmd.CustomerID)
			}
			if cmd.CustomerName != "Amina" {
				t.Fatalf("expected customer name forwarded, got %q", cmd.CustomerName)
			}
			return services.ChatThread{
				ID:           "thr_01htest",
				CustomerID:   cmd.CustomerID,
				CustomerName: cmd.CustomerName,
				CreatedAt:    now,
			}, nil
		},
	}

	router := newChatRouter(service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/chat/thread", `{"customerName":"Amina"}`, "cust-7"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body struct {
		Thread chatThreadPayload `json:"thread"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Thread.ID != "thr_01htest" {
		t.Fatalf("unexpected thread id %q", body.Thread.ID)
	}
}

func TestChatHandlersOpenThreadDefaultsNameFromIdentity(t *testing.T) {
	service := &stubChatService{
		openFunc: func(ctx context.Context, cmd services.OpenThreadCommand) (services.ChatThread, error) {
			if cmd.CustomerName != "amina@example.dz" {
				t.Fatalf("expected email fallback, got %q", cmd.CustomerName)
			}
			return services.ChatThread{ID: "thr_01htest", CustomerID: cmd.CustomerID}, nil
		},
	}

	handler := NewChatHandlers(nil, service, nil)
	router := chi.NewRouter()
	router.Route("/chat", handler.Routes)

	req := httptest.NewRequest(http.MethodPost, "/chat/thread", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: "cust-7", Email: "amina@example.dz"}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestChatHandlersListMessagesForwardsStaffFlag(t *testing.T) {
	var captured services.ListMessagesCommand
	service := &stubChatService{
		messagesFunc: func(ctx context.Context, cmd services.ListMessagesCommand) (domain.CursorPage[services.ChatMessage], error) {
			captured = cmd
			return domain.CursorPage[services.ChatMessage]{
				Items: []services.ChatMessage{
					{ID: "msg_1", ThreadID: cmd.ThreadID, Sender: domain.ChatSenderCustomer, Body: "سلام"},
				},
			}, nil
		},
	}

	router := newChatRouter(service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/chat/threads/thr_1/messages", "", "staff-1", "staff"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !captured.Staff {
		t.Fatalf("expected staff flag set for staff identity")
	}
	if captured.ThreadID != "thr_1" {
		t.Fatalf("unexpected thread id %q", captured.ThreadID)
	}

	var body chatMessageListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Messages) != 1 || body.Messages[0].Body != "سلام" {
		t.Fatalf("unexpected messages payload: %+v", body.Messages)
	}
}

func TestChatHandlersListMessagesForbiddenTranslated(t *testing.T) {
	service := &stubChatService{
		messagesFunc: func(ctx context.Context, cmd services.ListMessagesCommand) (domain.CursorPage[services.ChatMessage], error) {
			return domain.CursorPage[services.ChatMessage]{}, services.ErrChatForbidden
		},
	}

	router := newChatRouter(service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/chat/threads/thr_1/messages", "", "intruder"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}
}

func TestChatHandlersPostMessage(t *testing.T) {
	var captured services.PostMessageCommand
	service := &stubChatService{
		postFunc: func(ctx context.Context, cmd services.PostMessageCommand) (services.ChatMessage, error) {
			captured = cmd
			return services.ChatMessage{
				ID:       "msg_01htest",
				ThreadID: cmd.ThreadID,
				Sender:   cmd.Sender,
				SenderID: cmd.SenderID,
				Body:     cmd.Body,
			}, nil
		},
	}

	router := newChatRouter(service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/chat/threads/thr_1/messages", `{"body":"Bonjour"}`, "cust-7"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if captured.Sender != domain.ChatSenderCustomer {
		t.Fatalf("expected customer sender, got %s", captured.Sender)
	}
	if captured.Body != "Bonjour" || captured.SenderID != "cust-7" {
		t.Fatalf("unexpected command: %+v", captured)
	}
}

func TestChatHandlersPostMessageStaffSender(t *testing.T) {
	service := &stubChatService{
		postFunc: func(ctx context.Context, cmd services.PostMessageCommand) (services.ChatMessage, error) {
			if cmd.Sender != domain.ChatSenderSupport {
				t.Fatalf("expected support sender for staff, got %s", cmd.Sender)
			}
			return services.ChatMessage{ID: "msg_1", ThreadID: cmd.ThreadID}, nil
		},
	}

	router := newChatRouter(service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/chat/threads/thr_1/messages", `{"body":"On arrive"}`, "staff-1", "admin"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
}

func TestChatHandlersWebsocketDeniedWithoutAccess(t *testing.T) {
	service := &stubChatService{
		messagesFunc: func(ctx context.Context, cmd services.ListMessagesCommand) (domain.CursorPage[services.ChatMessage], error) {
			return domain.CursorPage[services.ChatMessage]{}, services.ErrChatForbidden
		},
	}

	// Access is checked before the upgrade, so no hub is needed here.
	router := newChatRouter(service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/chat/ws/thr_1", "", "intruder"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}
}

func TestChatHandlersRequiresIdentity(t *testing.T) {
	router := newChatRouter(&stubChatService{})

	req := httptest.NewRequest(http.MethodPost, "/chat/thread", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}
