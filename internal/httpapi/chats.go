package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joelkehle/justplanit/internal/chat"
)

type sendMessageRequest struct {
	Content  string `json:"content"`
	Username string `json:"chat_username"`
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.deps.Chat.History(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var in sendMessageRequest
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	send := chat.SendInput{
		ChatID:   chi.URLParam(r, "chatID"),
		Content:  in.Content,
		Username: strings.TrimSpace(in.Username),
	}
	if user := s.currentUser(r); user != nil {
		id := user.ID
		send.UserID = &id
		if send.Username == "" {
			send.Username = user.Username
		}
	}
	if send.Username == "" {
		send.Username = chat.AnonymousUsername()
	}
	msg, err := s.deps.Chat.Send(r.Context(), send)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	s.deps.Chat.ServeWS(w, r, chi.URLParam(r, "chatID"))
}
