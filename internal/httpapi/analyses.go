package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joelkehle/justplanit/internal/report"
	"github.com/joelkehle/justplanit/internal/session"
	"github.com/joelkehle/justplanit/internal/validation"
)

type validateRequest struct {
	Idea    string                    `json:"idea"`
	Context *validation.ContextFields `json:"context,omitempty"`
	Direct  bool                      `json:"direct,omitempty"`
}

type validateResponse struct {
	Report       *validation.ValidationReport `json:"report"`
	ProcessingMS int64                        `json:"processing_ms"`
}

// handleValidate runs one analysis bound to the request; a client that goes
// away cancels the completion call.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var in validateRequest
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Idea) == "" {
		writeError(w, r, session.ErrEmptyIdea)
		return
	}
	req := validation.ValidationRequest{Idea: in.Idea, Context: in.Context}

	analyze := s.deps.Analyzer.AnalyzeIdea
	if in.Direct {
		analyze = s.deps.Analyzer.AnalyzeIdeaDirect
	}
	res, err := analyze(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Report: res.Report, ProcessingMS: res.ProcessingTime.Milliseconds()})
}

func (s *Server) handleProgressSteps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"steps":         s.deps.Steps,
		"complete_text": "Analysis complete!",
	})
}

func (s *Server) handleStartAnalysis(w http.ResponseWriter, r *http.Request) {
	var in validation.ValidationRequest
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := s.deps.Sessions.Start(in)
	if errors.Is(err, session.ErrDuplicateInFlight) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": err.Error(),
			"kind":  "duplicate_in_flight",
			"token": snap.Token,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/analyses/"+snap.Token)
	writeJSON(w, http.StatusAccepted, snap)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Sessions.Get(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCancelAnalysis(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Sessions.Cancel(chi.URLParam(r, "token")) {
		writeError(w, r, session.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetryAnalysis(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Sessions.Retry(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

type finished struct {
	idea     string
	markdown string
	verdict  validation.Verdict
	at       time.Time
}

// finishedReport returns the Markdown for a successful analysis.
func (s *Server) finishedReport(r *http.Request) (finished, error) {
	snap, err := s.deps.Sessions.Get(chi.URLParam(r, "token"))
	if err != nil {
		return finished{}, err
	}
	if snap.State != session.StateSuccess || snap.Report == nil {
		return finished{}, session.ErrNotFound
	}
	f := finished{idea: snap.Idea, at: s.deps.Clock()}
	if snap.Report.ExecutiveSummary != nil {
		f.verdict = snap.Report.ExecutiveSummary.Verdict
	}
	f.markdown = report.Markdown(snap.Idea, snap.Report, f.at)
	return f, nil
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	f, err := s.finishedReport(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(f.markdown))
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	f, err := s.finishedReport(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := report.RenderHTML(f.markdown, f.verdict)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if s.deps.PDF == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "pdf rendering is not configured", Kind: "unavailable"})
		return
	}
	f, err := s.finishedReport(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := report.RenderHTML(f.markdown, f.verdict)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pdf, err := s.deps.PDF.Render(r.Context(), doc, report.PageMeta{Idea: f.idea, Verdict: f.verdict, GeneratedAt: f.at})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="justplanit-report.pdf"`)
	_, _ = w.Write(pdf)
}
