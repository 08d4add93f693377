package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Username string `json:"chat_username,omitempty"`
}

type wsOutbound struct {
	Type     string   `json:"type"`
	ChatID   string   `json:"chat_id,omitempty"`
	Username string   `json:"chat_username,omitempty"`
	Message  *Message `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ServeWS upgrades the request and streams messages inserted into chatID.
// Clients may send {"type":"send","content":...} to post and {"type":"ping"}.
// A client that omits chat_username is assigned an anonymous one.
func (s *Service) ServeWS(w http.ResponseWriter, r *http.Request, chatID string) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		http.Error(w, ErrMissingChatID.Error(), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		username = AnonymousUsername()
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	log := zerolog.Ctx(ctx).With().Str("chat_id", chatID).Logger()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, subscriberBuffer)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					log.Debug().Err(err).Msg("chat ws write failed")
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	sub := s.hub.Subscribe(ctx, chatID)
	push(writeCh, wsOutbound{Type: "subscribed", ChatID: chatID, Username: username})

	go func() {
		for m := range sub {
			push(writeCh, wsOutbound{Type: "message", ChatID: chatID, Message: &m})
		}
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(writeCh, wsOutbound{Type: "pong"})
		case "send":
			name := username
			if v := strings.TrimSpace(in.Username); v != "" {
				name = v
			}
			if _, err := s.Send(ctx, SendInput{ChatID: chatID, Content: in.Content, Username: name}); err != nil {
				push(writeCh, wsOutbound{Type: "error", Error: err.Error()})
			}
		default:
			push(writeCh, wsOutbound{Type: "error", Error: "unsupported type: " + in.Type})
		}
	}
}

// push enqueues out, dropping the oldest queued frame when the writer is behind.
func push(writeCh chan wsOutbound, out wsOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
