package httpapi

import (
	"net/http"

	"github.com/joelkehle/justplanit/internal/auth"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in auth.SignUpInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.deps.Auth.SignUp(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.deps.Auth.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Auth.Lookup(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// currentUser resolves the bearer token if one is sent. Anonymous requests
// and invalid tokens both yield nil.
func (s *Server) currentUser(r *http.Request) *auth.User {
	token := bearerToken(r)
	if token == "" || s.deps.Auth == nil {
		return nil
	}
	user, err := s.deps.Auth.Lookup(r.Context(), token)
	if err != nil {
		return nil
	}
	return &user
}
