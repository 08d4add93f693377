package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/joelkehle/justplanit/internal/auth"
	"github.com/joelkehle/justplanit/internal/chat"
	"github.com/joelkehle/justplanit/internal/report"
	"github.com/joelkehle/justplanit/internal/session"
	"github.com/joelkehle/justplanit/internal/storage"
	"github.com/joelkehle/justplanit/internal/validation"
	"github.com/joelkehle/justplanit/internal/validation/validationtest"
)

type fakePDF struct {
	got  string
	meta report.PageMeta
}

func (f *fakePDF) Render(_ context.Context, htmlDoc string, meta report.PageMeta) ([]byte, error) {
	f.got = htmlDoc
	f.meta = meta
	return []byte("%PDF-1.4 fake"), nil
}

type testEnv struct {
	handler   http.Handler
	completer *validationtest.Completer
	sessions  *session.Store
	pdf       *fakePDF
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))

	completer := &validationtest.Completer{Text: validationtest.ReportJSON}
	analyzer := validation.NewAnalyzer(completer, validation.AnalyzerConfig{})
	sessions, err := session.NewStore(analyzer, session.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	db, err := storage.Open(filepath.Join(t.TempDir(), "api.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	authSvc, err := auth.NewService(db, auth.Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	chatStore, err := chat.NewSQLiteStore(db)
	require.NoError(t, err)

	pdf := &fakePDF{}
	h := NewServer(Dependencies{
		Analyzer: analyzer,
		Sessions: sessions,
		Auth:     authSvc,
		Chat:     chat.NewService(chatStore, chat.NewHub()),
		PDF:      pdf,
		Logger:   logger,
	})
	return &testEnv{handler: h, completer: completer, sessions: sessions, pdf: pdf}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil, "").Code)

	rr := env.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "justplanit_http_requests_total")
}

func TestValidateSync(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/v1/validate", map[string]any{
		"idea":    "AI meal planner",
		"context": map[string]string{"industry": "FoodTech"},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	out := decode[validateResponse](t, rr)
	require.NotNil(t, out.Report)
	assert.Equal(t, validation.Number(2_000_000), out.Report.FinancialProjections.Projections.Year1)
	assert.Contains(t, env.completer.Last().Messages[1].Content, "Industry Focus: FoodTech")
}

func TestValidateDirect(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/v1/validate", map[string]any{"idea": "x", "direct": true}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, env.completer.Last().Messages, 1)
}

func TestValidateNonFiniteNumbersStillEncode(t *testing.T) {
	env := newTestEnv(t)
	env.completer.Text = strings.Replace(validationtest.ReportJSON, `"year1": 2`, `"year1": "nan"`, 1)

	rr := env.do(t, http.MethodPost, "/api/v1/validate", map[string]any{"idea": "AI meal planner"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Body.String())
	out := decode[validateResponse](t, rr)
	require.NotNil(t, out.Report)
	assert.Equal(t, validation.Number(0), out.Report.FinancialProjections.Projections.Year1)
}

func TestWriteJSONUnencodablePayload(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "internal", decode[errorResponse](t, rr).Kind)
}

func TestValidateErrors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/v1/validate", map[string]any{"idea": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, env.completer.Calls())

	env.completer.Text = ""
	rr = env.do(t, http.MethodPost, "/api/v1/validate", map[string]any{"idea": "x"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, validation.KindEmptyResponse, decode[errorResponse](t, rr).Kind)

	env.completer.Err = &validation.TransportError{Status: 500, Body: "rate limited"}
	rr = env.do(t, http.MethodPost, "/api/v1/validate", map[string]any{"idea": "x"}, "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := decode[errorResponse](t, rr)
	assert.Equal(t, "completion endpoint error: 500 - rate limited", body.Error)
	assert.Equal(t, validation.KindTransport, body.Kind)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalysisLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/v1/analyses", map[string]any{"idea": "AI meal planner"}, "")
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	started := decode[session.Snapshot](t, rr)
	require.NotEmpty(t, started.Token)
	assert.Equal(t, "/api/v1/analyses/"+started.Token, rr.Header().Get("Location"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := env.sessions.Wait(ctx, started.Token)
	require.NoError(t, err)

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+started.Token, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decode[session.Snapshot](t, rr)
	assert.Equal(t, session.StateSuccess, snap.State)
	assert.Equal(t, 100.0, snap.Progress.Percent)

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+started.Token+"/report.md", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "## Sources & Citations")

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+started.Token+"/report.html", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+started.Token+"/report.pdf", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, env.pdf.got, "Executive Summary")
	assert.Equal(t, validation.VerdictGo, env.pdf.meta.Verdict)
	assert.NotEmpty(t, env.pdf.meta.Idea)

	rr = env.do(t, http.MethodDelete, "/api/v1/analyses/"+started.Token, nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+started.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnalysisDuplicateAndRetry(t *testing.T) {
	env := newTestEnv(t)
	env.completer.Block = make(chan struct{})
	env.completer.Err = errors.New("connection reset")

	rr := env.do(t, http.MethodPost, "/api/v1/analyses", map[string]any{"idea": "AI meal planner"}, "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	token := decode[session.Snapshot](t, rr).Token

	rr = env.do(t, http.MethodPost, "/api/v1/analyses", map[string]any{"idea": "ai meal planner"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, token, decode[map[string]any](t, rr)["token"])

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+token+"/report.md", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	close(env.completer.Block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	failed, err := env.sessions.Wait(ctx, token)
	require.NoError(t, err)
	require.Equal(t, session.StateError, failed.State)

	env.completer.Block = nil
	env.completer.Err = nil
	rr = env.do(t, http.MethodPost, "/api/v1/analyses/"+token+"/retry", nil, "")
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	done, err := env.sessions.Wait(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.StateSuccess, done.State)
}

func TestProgressSteps(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/v1/progress/steps", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode[struct {
		Steps []struct {
			Text       string `json:"text"`
			DurationMS int64  `json:"duration_ms"`
		} `json:"steps"`
	}](t, rr)
	require.Len(t, out.Steps, 5)
	assert.Equal(t, "Conducting web research...", out.Steps[1].Text)
	assert.EqualValues(t, 2500, out.Steps[1].DurationMS)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{"email": "a@b.co", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "please fill in all fields", decode[errorResponse](t, rr).Error)

	signup := map[string]string{"email": "ada@example.com", "password": "hunter22", "username": "ada", "display_name": "Ada"}
	rr = env.do(t, http.MethodPost, "/api/v1/auth/signup", signup, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = env.do(t, http.MethodPost, "/api/v1/auth/signup", signup, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{"email": "ada@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{"email": "ada@example.com", "password": "hunter22"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	sess := decode[auth.Session](t, rr)

	rr = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, sess.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ada", decode[auth.User](t, rr).Username)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/v1/auth/signout", nil, sess.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, sess.Token).Code)
}

func TestChatMessages(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/v1/chats/lobby/messages", map[string]string{"content": "  hello  "}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	msg := decode[chat.Message](t, rr)
	assert.Equal(t, "hello", msg.Content)
	assert.Regexp(t, `^anon_[0-9a-z]{6}$`, msg.Username)
	assert.Nil(t, msg.UserID)

	rr = env.do(t, http.MethodPost, "/api/v1/chats/lobby/messages", map[string]string{"content": " "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/v1/chats/lobby/messages", map[string]string{"content": "again", "chat_username": "anon_aaaaaa"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/v1/chats/lobby/messages", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode[struct {
		Messages []chat.Message `json:"messages"`
	}](t, rr)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "hello", out.Messages[0].Content)
	assert.Equal(t, "anon_aaaaaa", out.Messages[1].Username)
}

func TestChatMessageFromSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	signup := map[string]string{"email": "ada@example.com", "password": "hunter22", "username": "ada", "display_name": "Ada"}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/auth/signup", signup, "").Code)
	rr := env.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{"email": "ada@example.com", "password": "hunter22"}, "")
	sess := decode[auth.Session](t, rr)

	rr = env.do(t, http.MethodPost, "/api/v1/chats/lobby/messages", map[string]string{"content": "hi"}, sess.Token)
	require.Equal(t, http.StatusCreated, rr.Code)
	msg := decode[chat.Message](t, rr)
	assert.Equal(t, "ada", msg.Username)
	require.NotNil(t, msg.UserID)
	assert.Equal(t, sess.User.ID, *msg.UserID)
}

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		err    error
		status int
	}{
		{err: &validation.TransportError{Err: context.DeadlineExceeded}, status: http.StatusGatewayTimeout},
		{err: &validation.IncompleteReportError{Missing: []string{"sources"}}, status: http.StatusUnprocessableEntity},
		{err: &validation.MalformedResponseError{Reason: "x"}, status: http.StatusUnprocessableEntity},
		{err: context.Canceled, status: http.StatusServiceUnavailable},
		{err: session.ErrClosed, status: http.StatusServiceUnavailable},
		{err: errors.New("boom"), status: http.StatusInternalServerError},
	} {
		status, _ := classify(tc.err)
		assert.Equal(t, tc.status, status, "%v", tc.err)
	}
}
