package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/notify"
	"github.com/jacoubbakhouche/foufou-api/internal/repositories"
)

const (
	chatThreadIDPrefix  = "thr_"
	chatMessageIDPrefix = "msg_"
	maxChatMessageRunes = 2000
	threadPreviewRunes  = 200
)

var (
	// ErrChatInvalidInput indicates the caller supplied invalid input.
	ErrChatInvalidInput = errors.New("chat service: invalid input")
	// ErrChatThreadNotFound indicates the thread does not exist.
	ErrChatThreadNotFound = errors.New("chat service: thread not found")
	// ErrChatForbidden indicates the caller may not access the thread.
	ErrChatForbidden = errors.New("chat service: forbidden")
	// ErrChatUnavailable indicates the chat backend is unavailable.
	ErrChatUnavailable = errors.New("chat service: unavailable")
)

// ChatBroadcaster pushes a payload to every websocket subscriber of a thread.
type ChatBroadcaster interface {
	Broadcast(threadID string, data []byte)
}

// ChatServiceDeps wires the repository, live hub, and push relay for support chat.
type ChatServiceDeps struct {
	Chat        repositories.ChatRepository
	Broadcaster ChatBroadcaster
	Publisher   notify.Publisher
	Clock       func() time.Time
	Logger      func(ctx context.Context, event string, fields map[string]any)
	IDGenerator func() string
}

type chatService struct {
	chat        repositories.ChatRepository
	broadcaster ChatBroadcaster
	publisher   notify.Publisher
	sanitize    *bluemonday.Policy
	newID       func() string
	now         func() time.Time
	logger      func(ctx context.Context, event string, fields map[string]any)
}

// NewChatService constructs a ChatService validating required dependencies.
func NewChatService(deps ChatServiceDeps) (ChatService, error) {
	if deps.Chat == nil {
		return nil, errors.New("chat service: chat repository is required")
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

	return &chatService{
		chat:        deps.Chat,
		broadcaster: deps.Broadcaster,
		publisher:   deps.Publisher,
		sanitize:    bluemonday.StrictPolicy(),
		newID:       idGen,
		now: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// GetOrCreateThread returns the customer's support thread, opening one on first contact.
func (s *chatService) GetOrCreateThread(ctx context.Context, cmd OpenThreadCommand) (ChatThread, error) {
	if s == nil || s.chat == nil {
		return ChatThread{}, ErrChatUnavailable
	}

	customerID := strings.TrimSpace(cmd.CustomerID)
	if customerID == "" {
		return ChatThread{}, ErrChatInvalidInput
	}

	thread, err := s.chat.FindThreadByCustomer(ctx, customerID)
	if err == nil {
		return thread, nil
	}
	if !isRepoNotFound(err) {
		return ChatThread{}, s.translateRepoError(err)
	}

	now := s.now()
	created, err := s.chat.UpsertThread(ctx, domain.ChatThread{
		ID:           chatThreadIDPrefix + strings.ToLower(strings.TrimSpace(s.newID())),
		CustomerID:   customerID,
		CustomerName: strings.TrimSpace(cmd.CustomerName),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return ChatThread{}, s.translateRepoError(err)
	}

	s.logger(ctx, "chat.thread_opened", map[string]any{
		"threadID":   created.ID,
		"customerID": customerID,
	})
	return created, nil
}

// ListThreads pages through support threads, most recent conversation first.
func (s *chatService) ListThreads(ctx context.Context, pager Pagination) (domain.CursorPage[ChatThread], error) {
	if s == nil || s.chat == nil {
		return domain.CursorPage[ChatThread]{}, ErrChatUnavailable
	}

	page, err := s.chat.ListThreads(ctx, pager)
	if err != nil {
		return domain.CursorPage[ChatThread]{}, s.translateRepoError(err)
	}
	return page, nil
}

// ListMessages returns thread history. Customers may only read their own thread.
func (s *chatService) ListMessages(ctx context.Context, cmd ListMessagesCommand) (domain.CursorPage[ChatMessage], error) {
	if s == nil || s.chat == nil {
		return domain.CursorPage[ChatMessage]{}, ErrChatUnavailable
	}

	threadID := strings.TrimSpace(cmd.ThreadID)
	if threadID == "" {
		return domain.CursorPage[ChatMessage]{}, ErrChatInvalidInput
	}

	if !cmd.Staff {
		thread, err := s.chat.FindThread(ctx, threadID)
		if err != nil {
			return domain.CursorPage[ChatMessage]{}, s.translateRepoError(err)
		}
		if thread.CustomerID != strings.TrimSpace(cmd.CustomerID) {
			return domain.CursorPage[ChatMessage]{}, ErrChatForbidden
		}
	}

	page, err := s.chat.ListMessages(ctx, threadID, cmd.Pagination)
	if err != nil {
		return domain.CursorPage[ChatMessage]{}, s.translateRepoError(err)
	}
	return page, nil
}

// PostMessage persists the message, refreshes the thread header, pushes it to
// live websocket subscribers, and relays a push notification to the other side.
func (s *chatService) PostMessage(ctx context.Context, cmd PostMessageCommand) (ChatMessage, error) {
	if s == nil || s.chat == nil {
		return ChatMessage{}, ErrChatUnavailable
	}

	threadID := strings.TrimSpace(cmd.ThreadID)
	senderID := strings.TrimSpace(cmd.SenderID)
	if threadID == "" || senderID == "" {
		return ChatMessage{}, ErrChatInvalidInput
	}
	if cmd.Sender != domain.ChatSenderCustomer && cmd.Sender != domain.ChatSenderSupport {
		return ChatMessage{}, fmt.Errorf("%w: unknown sender %q", ErrChatInvalidInput, string(cmd.Sender))
	}

	body := strings.TrimSpace(s.sanitize.Sanitize(cmd.Body))
	if body == "" {
		return ChatMessage{}, fmt.Errorf("%w: message body is required", ErrChatInvalidInput)
	}
	if utf8.RuneCountInString(body) > maxChatMessageRunes {
		return ChatMessage{}, fmt.Errorf("%w: message must be %d characters or fewer", ErrChatInvalidInput, maxChatMessageRunes)
	}

	thread, err := s.chat.FindThread(ctx, threadID)
	if err != nil {
		return ChatMessage{}, s.translateRepoError(err)
	}
	if cmd.Sender == domain.ChatSenderCustomer && thread.CustomerID != senderID {
		return ChatMessage{}, ErrChatForbidden
	}

	now := s.now()
	createdAt := cmd.OccurredAt.UTC()
	if cmd.OccurredAt.IsZero() {
		createdAt = now
	}

	message, err := s.chat.AppendMessage(ctx, domain.ChatMessage{
		ID:        chatMessageIDPrefix + strings.ToLower(strings.TrimSpace(s.newID())),
		ThreadID:  threadID,
		Sender:    cmd.Sender,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: createdAt,
	})
	if err != nil {
		return ChatMessage{}, s.translateRepoError(err)
	}

	thread.LastMessage = truncateRunes(body, threadPreviewRunes)
	thread.LastMessageAt = message.CreatedAt
	thread.UpdatedAt = now
	if cmd.Sender == domain.ChatSenderCustomer {
		thread.UnreadByAdmin++
	} else {
		thread.UnreadByAdmin = 0
	}
	if _, err := s.chat.UpsertThread(ctx, thread); err != nil {
		s.logger(ctx, "chat.thread_refresh_failed", map[string]any{
			"threadID": threadID,
			"error":    err.Error(),
		})
	}

	s.broadcastMessage(ctx, message)
	s.announceMessage(ctx, thread, message)
	return message, nil
}

// MarkThreadRead clears the admin unread counter.
func (s *chatService) MarkThreadRead(ctx context.Context, cmd MarkThreadReadCommand) (ChatThread, error) {
	if s == nil || s.chat == nil {
		return ChatThread{}, ErrChatUnavailable
	}

	threadID := strings.TrimSpace(cmd.ThreadID)
	if threadID == "" {
		return ChatThread{}, ErrChatInvalidInput
	}

	thread, err := s.chat.FindThread(ctx, threadID)
	if err != nil {
		return ChatThread{}, s.translateRepoError(err)
	}
	if thread.UnreadByAdmin == 0 {
		return thread, nil
	}

	thread.UnreadByAdmin = 0
	thread.UpdatedAt = s.now()
	updated, err := s.chat.UpsertThread(ctx, thread)
	if err != nil {
		return ChatThread{}, s.translateRepoError(err)
	}
	return updated, nil
}

// chatWireMessage is the JSON frame pushed to websocket subscribers.
type chatWireMessage struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	Sender    string    `json:"sender"`
	SenderID  string    `json:"senderId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *chatService) broadcastMessage(ctx context.Context, message domain.ChatMessage) {
	if s.broadcaster == nil {
		return
	}
	frame, err := json.Marshal(chatWireMessage{
		Type:      "message",
		ID:        message.ID,
		ThreadID:  message.ThreadID,
		Sender:    string(message.Sender),
		SenderID:  message.SenderID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	})
	if err != nil {
		s.logger(ctx, "chat.broadcast_encode_failed", map[string]any{
			"threadID": message.ThreadID,
			"error":    err.Error(),
		})
		return
	}
	s.broadcaster.Broadcast(message.ThreadID, frame)
}

func (s *chatService) announceMessage(ctx context.Context, thread domain.ChatThread, message domain.ChatMessage) {
	if s.publisher == nil {
		return
	}

	audience := notify.AudienceAdmins
	if message.Sender == domain.ChatSenderSupport {
		audience = notify.AudienceCustomer
	}

	_, err := s.publisher.Publish(ctx, notify.Event{
		Kind:       notify.KindChatMessage,
		Audience:   audience,
		CustomerID: thread.CustomerID,
		ThreadID:   thread.ID,
		Title: domain.LocalizedText{
			Arabic: "رسالة جديدة",
			French: "Nouveau message",
		},
		Body: domain.LocalizedText{
			Arabic: thread.LastMessage,
			French: thread.LastMessage,
		},
		OccurredAt: message.CreatedAt,
	})
	if err != nil {
		s.logger(ctx, "chat.notify_failed", map[string]any{
			"threadID": thread.ID,
			"error":    err.Error(),
		})
	}
}

func truncateRunes(value string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}

func (s *chatService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrChatThreadNotFound
		case repoErr.IsConflict():
			return ErrChatUnavailable
		case repoErr.IsUnavailable():
			return ErrChatUnavailable
		}
	}
	return ErrChatUnavailable
}
