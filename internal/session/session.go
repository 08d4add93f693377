// Package session tracks in-flight and finished idea analyses for consumers
// that poll for results. Nothing is persisted; finished sessions live in a
// bounded LRU and vanish on eviction.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/joelkehle/justplanit/internal/progress"
	"github.com/joelkehle/justplanit/internal/validation"
)

type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateSuccess State = "success"
)

const (
	DefaultCapacity = 256
	DefaultTimeout  = 3 * time.Minute
)

var (
	ErrEmptyIdea         = errors.New("idea is required")
	ErrDuplicateInFlight = errors.New("an analysis for this idea is already running")
	ErrNotFound          = errors.New("analysis not found")
	ErrClosed            = errors.New("session store closed")
)

var inflightGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "justplanit",
	Name:      "analyses_inflight",
	Help:      "Analyses currently waiting on the completion endpoint.",
})

type Analyzer interface {
	AnalyzeIdea(ctx context.Context, req validation.ValidationRequest) (validation.Result, error)
}

type Options struct {
	Capacity int
	// Timeout bounds each run of the pipeline, including retries individually.
	Timeout time.Duration
	Steps   progress.Sequence
	Logger  zerolog.Logger
	Clock   func() time.Time
}

type analysis struct {
	token     string
	key       string
	req       validation.ValidationRequest
	createdAt time.Time

	state      State
	report     *validation.ValidationReport
	err        error
	processing time.Duration
	startedAt  time.Time
	settledAt  time.Time

	generation int
	cancel     context.CancelFunc
	done       chan struct{}
}

// Snapshot is the externally visible state of one analysis.
type Snapshot struct {
	Token        string                       `json:"token"`
	Idea         string                       `json:"idea"`
	Context      *validation.ContextFields    `json:"context,omitempty"`
	State        State                        `json:"state"`
	Error        string                       `json:"error,omitempty"`
	ErrorKind    string                       `json:"error_kind,omitempty"`
	Report       *validation.ValidationReport `json:"report,omitempty"`
	ProcessingMS int64                        `json:"processing_ms,omitempty"`
	Progress     progress.Snapshot            `json:"progress"`
	CreatedAt    time.Time                    `json:"created_at"`
}

type Store struct {
	analyzer Analyzer
	opts     Options

	mu       sync.Mutex
	sessions *lru.Cache[string, *analysis]
	inflight map[string]string // idea key -> token
	closed   bool

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

func NewStore(analyzer Analyzer, opts Options) (*Store, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Steps == nil {
		opts.Steps = progress.DefaultSteps
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Store{
		analyzer: analyzer,
		opts:     opts,
		inflight: make(map[string]string),
	}
	s.base, s.stop = context.WithCancel(context.Background())
	cache, err := lru.NewWithEvict[string, *analysis](opts.Capacity, s.discard)
	if err != nil {
		return nil, err
	}
	s.sessions = cache
	return s, nil
}

func generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ideaKey folds case and whitespace so resubmitting the same idea is caught.
func ideaKey(idea string) string {
	return strings.ToLower(strings.Join(strings.Fields(idea), " "))
}

// Start registers a new analysis and runs it in the background. If the same
// idea is already loading, the existing analysis is returned with
// ErrDuplicateInFlight.
func (s *Store) Start(req validation.ValidationRequest) (Snapshot, error) {
	if strings.TrimSpace(req.Idea) == "" {
		return Snapshot{}, ErrEmptyIdea
	}
	key := ideaKey(req.Idea)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrClosed
	}
	if token, ok := s.inflight[key]; ok {
		if existing, ok := s.sessions.Peek(token); ok {
			return s.snapshot(existing), ErrDuplicateInFlight
		}
	}

	a := &analysis{
		token:     generateToken(),
		key:       key,
		req:       req,
		createdAt: s.opts.Clock(),
	}
	s.sessions.Add(a.token, a)
	s.launch(a)
	return s.snapshot(a), nil
}

func (s *Store) Get(token string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.sessions.Get(token)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return s.snapshot(a), nil
}

// Report returns the finished report for token. Sessions that are loading or
// failed have none.
func (s *Store) Report(token string) (*validation.ValidationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.sessions.Get(token)
	if !ok || a.state != StateSuccess {
		return nil, ErrNotFound
	}
	return a.report, nil
}

// Cancel aborts any in-flight call and discards the session. A result that
// arrives afterwards is dropped.
func (s *Store) Cancel(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Remove(token)
}

// Retry reruns the whole pipeline for a settled analysis.
func (s *Store) Retry(token string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrClosed
	}
	a, ok := s.sessions.Get(token)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if a.state == StateLoading {
		return s.snapshot(a), ErrDuplicateInFlight
	}
	if other, ok := s.inflight[a.key]; ok && other != token {
		return s.snapshot(a), ErrDuplicateInFlight
	}
	s.launch(a)
	return s.snapshot(a), nil
}

// Wait blocks until the current run of token settles or ctx ends.
func (s *Store) Wait(ctx context.Context, token string) (Snapshot, error) {
	s.mu.Lock()
	a, ok := s.sessions.Peek(token)
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, ErrNotFound
	}
	done := a.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	return s.Get(token)
}

// Close cancels every in-flight analysis and waits for the workers to exit.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.stop()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Len()
}

// launch starts a new generation for a. Caller holds s.mu.
func (s *Store) launch(a *analysis) {
	a.generation++
	a.state = StateLoading
	a.report = nil
	a.err = nil
	a.processing = 0
	a.startedAt = s.opts.Clock()
	a.settledAt = time.Time{}
	a.done = make(chan struct{})
	s.inflight[a.key] = a.token

	logger := s.opts.Logger.With().Str("token", a.token).Int("attempt", a.generation).Logger()
	ctx, cancel := context.WithTimeout(logger.WithContext(s.base), s.opts.Timeout)
	a.cancel = cancel

	inflightGauge.Inc()
	s.wg.Add(1)
	go s.run(ctx, a, a.generation, a.done)
}

func (s *Store) run(ctx context.Context, a *analysis, generation int, done chan struct{}) {
	defer s.wg.Done()
	defer inflightGauge.Dec()
	defer close(done)

	res, err := s.analyzer.AnalyzeIdea(ctx, a.req)

	s.mu.Lock()
	defer s.mu.Unlock()
	a.cancel()
	current, ok := s.sessions.Peek(a.token)
	if !ok || current != a || a.generation != generation {
		zerolog.Ctx(ctx).Debug().Msg("dropping result for discarded analysis")
		return
	}
	if s.inflight[a.key] == a.token {
		delete(s.inflight, a.key)
	}
	a.settledAt = s.opts.Clock()
	a.processing = res.ProcessingTime
	if err != nil {
		a.state = StateError
		a.err = err
		return
	}
	a.state = StateSuccess
	a.report = res.Report
}

// discard is the LRU eviction hook; it runs with s.mu held.
func (s *Store) discard(token string, a *analysis) {
	if a.cancel != nil {
		a.cancel()
	}
	if s.inflight[a.key] == token {
		delete(s.inflight, a.key)
	}
}

func (s *Store) snapshot(a *analysis) Snapshot {
	snap := Snapshot{
		Token:        a.token,
		Idea:         a.req.Idea,
		Context:      a.req.Context,
		State:        a.state,
		ProcessingMS: a.processing.Milliseconds(),
		CreatedAt:    a.createdAt,
	}
	switch a.state {
	case StateLoading:
		snap.Progress = s.opts.Steps.At(s.opts.Clock().Sub(a.startedAt))
	case StateSuccess:
		snap.Report = a.report
		snap.Progress = s.opts.Steps.At(a.settledAt.Sub(a.startedAt)).Settle(true)
	case StateError:
		snap.Error = a.err.Error()
		snap.ErrorKind = validation.ErrorKind(a.err)
		snap.Progress = s.opts.Steps.At(a.settledAt.Sub(a.startedAt)).Settle(false)
	}
	return snap
}
