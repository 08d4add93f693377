package chat

import (
	"context"
	"sync"
)

const subscriberBuffer = 32

// Hub fans out published messages to subscribers of the message's room.
// Slow subscribers lose their oldest undelivered message rather than block
// the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Message]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Message]struct{})}
}

// Subscribe returns a channel of messages for chatID. The channel is closed
// when ctx ends.
func (h *Hub) Subscribe(ctx context.Context, chatID string) <-chan Message {
	ch := make(chan Message, subscriberBuffer)
	h.mu.Lock()
	room, ok := h.subs[chatID]
	if !ok {
		room = make(map[chan Message]struct{})
		h.subs[chatID] = room
	}
	room[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[chatID], ch)
		if len(h.subs[chatID]) == 0 {
			delete(h.subs, chatID)
		}
		close(ch)
		h.mu.Unlock()
	}()
	return ch
}

func (h *Hub) Publish(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[m.ChatID] {
		select {
		case ch <- m:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- m:
		default:
		}
	}
}

func (h *Hub) Subscribers(chatID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[chatID])
}
