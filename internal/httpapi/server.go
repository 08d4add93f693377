// Package httpapi exposes analyses, reports, accounts and chat rooms over
// HTTP under /api/v1.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/joelkehle/justplanit/internal/auth"
	"github.com/joelkehle/justplanit/internal/chat"
	"github.com/joelkehle/justplanit/internal/progress"
	"github.com/joelkehle/justplanit/internal/report"
	"github.com/joelkehle/justplanit/internal/session"
	"github.com/joelkehle/justplanit/internal/telemetry"
	"github.com/joelkehle/justplanit/internal/validation"
)

const maxBodyBytes = 1 << 20

type Analyzer interface {
	AnalyzeIdea(ctx context.Context, req validation.ValidationRequest) (validation.Result, error)
	AnalyzeIdeaDirect(ctx context.Context, req validation.ValidationRequest) (validation.Result, error)
}

type PDFRenderer interface {
	Render(ctx context.Context, htmlDoc string, meta report.PageMeta) ([]byte, error)
}

type Dependencies struct {
	Analyzer Analyzer
	Sessions *session.Store
	Auth     *auth.Service
	Chat     *chat.Service
	PDF      PDFRenderer
	Steps    progress.Sequence
	Logger   zerolog.Logger
	WebDir   string
	Clock    func() time.Time
}

type Server struct {
	deps Dependencies
}

func NewServer(deps Dependencies) http.Handler {
	if deps.Steps == nil {
		deps.Steps = progress.DefaultSteps
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	s := &Server{deps: deps}
	logger := deps.Logger

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(telemetry.RequestLogger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Get("/progress/steps", s.handleProgressSteps)

		r.Post("/analyses", s.handleStartAnalysis)
		r.Get("/analyses/{token}", s.handleGetAnalysis)
		r.Delete("/analyses/{token}", s.handleCancelAnalysis)
		r.Post("/analyses/{token}/retry", s.handleRetryAnalysis)
		r.Get("/analyses/{token}/report.md", s.handleReportMarkdown)
		r.Get("/analyses/{token}/report.html", s.handleReportHTML)
		r.Get("/analyses/{token}/report.pdf", s.handleReportPDF)

		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signout", s.handleSignOut)
		r.Get("/auth/me", s.handleMe)

		r.Get("/chats/{chatID}/messages", s.handleListMessages)
		r.Post("/chats/{chatID}/messages", s.handleSendMessage)
		r.Get("/chats/{chatID}/ws", s.handleChatWS)
	})

	if deps.WebDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(deps.WebDir)))
	}
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// writeJSON encodes before writing the header so an unencodable payload
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "internal error", Kind: "internal"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	log := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("kind", kind).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("kind", kind).Msg("request rejected")
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return badRequestError{msg: msg} }

// classify maps an error to an HTTP status and a stable kind string.
func classify(err error) (int, string) {
	var bad badRequestError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, "bad_request"

	case errors.Is(err, session.ErrEmptyIdea):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, session.ErrDuplicateInFlight):
		return http.StatusConflict, "duplicate_in_flight"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"

	case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized, "unauthorized"

	case errors.Is(err, chat.ErrEmptyContent), errors.Is(err, chat.ErrContentTooLong),
		errors.Is(err, chat.ErrMissingChatID), errors.Is(err, chat.ErrMissingName):
		return http.StatusBadRequest, "bad_request"
	}

	switch kind := validation.ErrorKind(err); kind {
	case validation.KindTransport:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, kind
		}
		return http.StatusBadGateway, kind
	case validation.KindEmptyResponse, validation.KindMalformedResponse, validation.KindIncompleteReport:
		return http.StatusUnprocessableEntity, kind
	case validation.KindCanceled:
		return http.StatusServiceUnavailable, kind
	default:
		return http.StatusInternalServerError, validation.KindInternal
	}
}

// readJSON decodes the request body into dst. An empty body leaves dst untouched.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
