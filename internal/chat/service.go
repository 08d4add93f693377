package chat

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const (
	MaxContentLength = 2000
	DefaultHistory   = 500
)

var (
	ErrEmptyContent   = errors.New("message content is required")
	ErrContentTooLong = errors.New("message content is too long")
	ErrMissingChatID  = errors.New("chat id is required")
	ErrMissingName    = errors.New("chat username is required")
)

var messagesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "justplanit",
	Name:      "chat_messages_total",
	Help:      "Chat messages accepted.",
})

type Store interface {
	Insert(ctx context.Context, m Message) error
	List(ctx context.Context, chatID string, limit int) ([]Message, error)
}

type SendInput struct {
	ChatID   string  `json:"chat_id"`
	Content  string  `json:"content"`
	Username string  `json:"chat_username"`
	UserID   *string `json:"user_id,omitempty"`
}

type Service struct {
	store Store
	hub   *Hub
	now   func() time.Time
}

func NewService(store Store, hub *Hub) *Service {
	return &Service{store: store, hub: hub, now: time.Now}
}

func (s *Service) Send(ctx context.Context, in SendInput) (Message, error) {
	chatID := strings.TrimSpace(in.ChatID)
	content := strings.TrimSpace(in.Content)
	username := strings.TrimSpace(in.Username)
	switch {
	case chatID == "":
		return Message{}, ErrMissingChatID
	case content == "":
		return Message{}, ErrEmptyContent
	case utf8.RuneCountInString(content) > MaxContentLength:
		return Message{}, ErrContentTooLong
	case username == "":
		return Message{}, ErrMissingName
	}

	m := Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Content:   content,
		Username:  username,
		UserID:    in.UserID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return Message{}, err
	}
	messagesTotal.Inc()
	s.hub.Publish(m)
	zerolog.Ctx(ctx).Debug().Str("chat_id", chatID).Str("message_id", m.ID).Msg("chat message stored")
	return m, nil
}

func (s *Service) History(ctx context.Context, chatID string) ([]Message, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, ErrMissingChatID
	}
	return s.store.List(ctx, chatID, DefaultHistory)
}

func (s *Service) Subscribe(ctx context.Context, chatID string) (<-chan Message, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, ErrMissingChatID
	}
	return s.hub.Subscribe(ctx, chatID), nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// AnonymousUsername returns "anon_" followed by six random base-36 characters.
func AnonymousUsername() string {
	b := make([]byte, 6)
	radix := big.NewInt(int64(len(base36)))
	for i := range b {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			n = big.NewInt(int64(time.Now().UnixNano() % int64(len(base36))))
		}
		b[i] = base36[n.Int64()]
	}
	return "anon_" + string(b)
}
