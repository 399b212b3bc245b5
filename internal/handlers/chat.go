package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jacoubbakhouche/foufou-api/internal/chat"
	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/auth"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/httpx"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

const maxChatBodySize = 16 * 1024

// ChatHandlers exposes the support chat REST endpoints and the websocket upgrade.
type ChatHandlers struct {
	authn *auth.Authenticator
	chats services.ChatService
	hub   *chat.Hub
}

// NewChatHandlers constructs handlers bridging HTTP clients to the chat service and hub.
func NewChatHandlers(authn *auth.Authenticator, chats services.ChatService, hub *chat.Hub) *ChatHandlers {
	return &ChatHandlers{
		authn: authn,
		chats: chats,
		hub:   hub,
	}
}

// Routes wires the /chat endpoints onto the provided router.
func (h *ChatHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/thread", h.openThread)
	r.Get("/threads/{threadID}/messages", h.listMessages)
	r.Post("/threads/{threadID}/messages", h.postMessage)
	r.Get("/ws/{threadID}", h.serveWebsocket)
}

type openThreadRequest struct {
	CustomerName string `json:"customerName"`
}

type postMessageRequest struct {
	Body string `json:"body"`
}

type chatThreadPayload struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName,omitempty"`
	LastMessage   string `json:"lastMessage,omitempty"`
	LastMessageAt string `json:"lastMessageAt,omitempty"`
	UnreadByAdmin int    `json:"unreadByAdmin"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

type chatMessagePayload struct {
	ID        string `json:"id"`
	ThreadID  string `json:"threadId"`
	Sender    string `json:"sender"`
	SenderID  string `json:"senderId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type chatMessageListResponse struct {
	Messages      []chatMessagePayload `json:"messages"`
	NextPageToken string               `json:"nextPageToken,omitempty"`
}

func buildChatThreadPayload(thread services.ChatThread) chatThreadPayload {
	return chatThreadPayload{
		ID:            thread.ID,
		CustomerID:    thread.CustomerID,
		CustomerName:  thread.CustomerName,
		LastMessage:   thread.LastMessage,
		LastMessageAt: formatTime(thread.LastMessageAt),
		UnreadByAdmin: thread.UnreadByAdmin,
		CreatedAt:     formatTime(thread.CreatedAt),
		UpdatedAt:     formatTime(thread.UpdatedAt),
	}
}

func buildChatMessagePayload(message services.ChatMessage) chatMessagePayload {
	return chatMessagePayload{
		ID:        message.ID,
		ThreadID:  message.ThreadID,
		Sender:    string(message.Sender),
		SenderID:  message.SenderID,
		Body:      message.Body,
		CreatedAt: formatTime(message.CreatedAt),
	}
}

func (h *ChatHandlers) openThread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req openThreadRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSONBody(r, maxChatBodySize, &req); err != nil && !errors.Is(err, errEmptyBody) {
			writeBodyError(ctx, w, err)
			return
		}
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = strings.TrimSpace(identity.Email)
	}

	thread, err := h.chats.GetOrCreateThread(ctx, services.OpenThreadCommand{
		CustomerID:   identity.UID,
		CustomerName: name,
	})
	if err != nil {
		writeChatError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"thread": buildChatThreadPayload(thread)})
}

func (h *ChatHandlers) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	page, err := h.chats.ListMessages(ctx, services.ListMessagesCommand{
		ThreadID:   strings.TrimSpace(chi.URLParam(r, "threadID")),
		CustomerID: identity.UID,
		Staff:      isStaff(identity),
		Pagination: parsePagination(r),
	})
	if err != nil {
		writeChatError(ctx, w, err)
		return
	}

	payload := chatMessageListResponse{
		Messages:      make([]chatMessagePayload, 0, len(page.Items)),
		NextPageToken: page.NextPageToken,
	}
	for _, message := range page.Items {
		payload.Messages = append(payload.Messages, buildChatMessagePayload(message))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ChatHandlers) postMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := decodeJSONBody(r, maxChatBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	message, err := h.chats.PostMessage(ctx, services.PostMessageCommand{
		ThreadID: strings.TrimSpace(chi.URLParam(r, "threadID")),
		SenderID: identity.UID,
		Sender:   senderFor(identity),
		Body:     req.Body,
	})
	if err != nil {
		writeChatError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"message": buildChatMessagePayload(message)})
}

// serveWebsocket upgrades the connection and joins the thread room. Inbound
// frames are persisted through the chat service, which fans them back out via
// the hub broadcaster.
func (h *ChatHandlers) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	threadID := strings.TrimSpace(chi.URLParam(r, "threadID"))
	staff := isStaff(identity)

	// Probe access before upgrading so intruders get a clean HTTP error.
	if _, err := h.chats.ListMessages(ctx, services.ListMessagesCommand{
		ThreadID:   threadID,
		CustomerID: identity.UID,
		Staff:      staff,
		Pagination: services.Pagination{PageSize: 1},
	}); err != nil {
		writeChatError(ctx, w, err)
		return
	}

	if h.hub == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat realtime channel is unavailable", http.StatusServiceUnavailable))
		return
	}

	handler := func(ctx context.Context, in chat.Inbound) {
		body := string(in.Data)
		var frame postMessageRequest
		if err := json.Unmarshal(in.Data, &frame); err == nil && strings.TrimSpace(frame.Body) != "" {
			body = frame.Body
		}
		sender := domain.ChatSenderCustomer
		if in.Staff {
			sender = domain.ChatSenderSupport
		}
		// Persistence failures are logged by the service; the frame is dropped.
		_, _ = h.chats.PostMessage(ctx, services.PostMessageCommand{
			ThreadID: in.ThreadID,
			SenderID: in.UserID,
			Sender:   sender,
			Body:     body,
		})
	}

	if err := h.hub.Serve(w, r, threadID, identity.UID, staff, handler); err != nil {
		// Upgrade failures already wrote an HTTP error response.
		return
	}
}

func (h *ChatHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.chats == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func isStaff(identity *auth.Identity) bool {
	return identity != nil && identity.HasAnyRole(auth.RoleStaff, auth.RoleAdmin)
}

func senderFor(identity *auth.Identity) services.ChatSender {
	if isStaff(identity) {
		return domain.ChatSenderSupport
	}
	return domain.ChatSenderCustomer
}

func writeChatError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrChatInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrChatThreadNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("thread_not_found", "chat thread not found", http.StatusNotFound))
	case errors.Is(err, services.ErrChatForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "access to thread denied", http.StatusForbidden))
	case errors.Is(err, services.ErrChatUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("chat_error", "failed to process chat request", http.StatusInternalServerError))
	}
}
