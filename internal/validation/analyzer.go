package validation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/joelkehle/justplanit/internal/validation")

type AnalyzerConfig struct {
	Model string
	// Temperature is sent as is, including zero. Nil means DefaultTemperature.
	Temperature *float64
	MaxTokens   int
	// Timeout bounds a single completion call. Zero disables it.
	Timeout time.Duration
	Clock   func() time.Time
}

// Analyzer turns an idea into a validated report with one completion call.
// It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	completer   ChatCompleter
	cfg         AnalyzerConfig
	temperature float64
}

func NewAnalyzer(completer ChatCompleter, cfg AnalyzerConfig) *Analyzer {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Analyzer{completer: completer, cfg: cfg, temperature: temperature}
}

// AnalyzeIdea builds the prompt, queries the model once, then sanitizes,
// parses, checks all nine sections and normalizes financial magnitudes.
// Errors are one of *TransportError, *EmptyResponseError,
// *MalformedResponseError or *IncompleteReportError. Nothing is retried.
func (a *Analyzer) AnalyzeIdea(ctx context.Context, req ValidationRequest) (Result, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "validation.AnalyzeIdea", trace.WithAttributes(
		attribute.String("llm.model", a.cfg.Model),
		attribute.Int("idea.length", len(req.Idea)),
	))
	defer span.End()
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	log := zerolog.Ctx(ctx)
	log.Info().Str("model", a.cfg.Model).Msg("starting validation analysis")

	report, err := a.analyze(ctx, req)
	elapsed := time.Since(start)
	observe("validated", err, elapsed.Seconds())
	endSpan(span, err)
	if err != nil {
		log.Error().Err(err).Str("kind", ErrorKind(err)).Dur("elapsed", elapsed).Msg("validation analysis failed")
		return Result{ProcessingTime: elapsed}, err
	}
	log.Info().Dur("elapsed", elapsed).Str("verdict", string(report.ExecutiveSummary.Verdict)).Msg("validation analysis completed")
	return Result{Report: report, ProcessingTime: elapsed}, nil
}

func (a *Analyzer) analyze(ctx context.Context, req ValidationRequest) (*ValidationReport, error) {
	prompt := BuildPrompt(req.Idea, req.Context, a.cfg.Clock())
	raw, err := a.completer.Complete(ctx, ChatRequest{
		Model: a.cfg.Model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: prompt},
		},
		Temperature: a.temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, asTransportError(err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &EmptyResponseError{}
	}

	cleaned := Sanitize(raw)
	blob := []byte(cleaned)
	var probe any
	if err := json.Unmarshal(blob, &probe); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("cleaned", cleaned).Msg("failed to parse model response")
		return nil, &MalformedResponseError{Reason: err.Error(), Text: cleaned, Err: err}
	}
	if missing := MissingSections(blob); len(missing) > 0 {
		return nil, &IncompleteReportError{Missing: missing}
	}

	var report ValidationReport
	if err := json.Unmarshal(blob, &report); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("cleaned", cleaned).Msg("model response does not match report schema")
		return nil, &MalformedResponseError{Reason: err.Error(), Text: cleaned, Err: err}
	}
	Normalize(&report)
	return &report, nil
}

// AnalyzeIdeaDirect is for upstream modes that natively return JSON. It sends
// no system message and skips sanitization, section checks and normalization;
// decode errors from encoding/json are returned unwrapped.
func (a *Analyzer) AnalyzeIdeaDirect(ctx context.Context, req ValidationRequest) (Result, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "validation.AnalyzeIdeaDirect", trace.WithAttributes(
		attribute.String("llm.model", a.cfg.Model),
	))
	defer span.End()
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	raw, err := a.completer.Complete(ctx, ChatRequest{
		Model:       a.cfg.Model,
		Messages:    []ChatMessage{{Role: RoleUser, Content: BuildPrompt(req.Idea, req.Context, a.cfg.Clock())}},
		Temperature: a.temperature,
		MaxTokens:   DirectMaxTokens,
	})
	if err == nil {
		var report ValidationReport
		if err = json.Unmarshal([]byte(raw), &report); err == nil {
			elapsed := time.Since(start)
			observe("direct", nil, elapsed.Seconds())
			endSpan(span, nil)
			return Result{Report: &report, ProcessingTime: elapsed}, nil
		}
	}
	elapsed := time.Since(start)
	observe("direct", err, elapsed.Seconds())
	endSpan(span, err)
	return Result{ProcessingTime: elapsed}, err
}

func (a *Analyzer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func asTransportError(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Err: err}
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, ErrorKind(err))
}
