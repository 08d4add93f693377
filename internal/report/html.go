package report

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joelkehle/justplanit/internal/validation"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

const reportCSS = `
:root{--ink:#111827;--muted:#4b5563;--accent:#dc2626;--rule:#d1d5db;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;color:var(--ink);background:#fff;margin:0;padding:0.6rem;line-height:1.45;}
.report-wrap{max-width:960px;margin:0 auto;}
.report-header{display:flex;justify-content:space-between;align-items:flex-start;border-bottom:3px solid var(--accent);padding-bottom:0.5rem;margin-bottom:1rem;}
.report-badge{display:inline-block;border-radius:999px;padding:0.2rem 0.75rem;font-weight:700;font-size:0.85rem;}
.bg-green-500{background:#22c55e;} .bg-green-400{background:#4ade80;} .bg-yellow-500{background:#eab308;}
.bg-red-500{background:#ef4444;} .bg-gray-500{background:#6b7280;} .text-white{color:#fff;} .text-black{color:#000;}
.report-html h1{font-size:1.6rem;margin:0 0 0.5rem;}
.report-html h2{font-size:1.2rem;border-bottom:1px solid var(--rule);padding-bottom:0.2rem;margin-top:1.4rem;break-after:avoid;}
.report-html h2[data-page-break-before="true"]{break-before:page;page-break-before:always;}
.report-html table{width:100%;border-collapse:collapse;font-size:0.8rem;margin:0.5rem 0;}
.report-html th,.report-html td{border:1px solid var(--rule);padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}
.report-html thead th{background:#f3f4f6;font-weight:700;}
.report-html a{color:#1d4ed8;text-decoration:underline;}
@media print{ @page{size:auto;margin:12mm;} body{padding:0;} .report-wrap{max-width:none;} }
`

var pageBreakHeadings = regexp.MustCompile(`(?i)<h2([^>]*)>\s*(Implementation Roadmap|Sources &amp; Citations)\s*</h2>`)

// RenderHTML converts Markdown output into a standalone printable page. The
// verdict badge uses the same palette as the dashboard.
func RenderHTML(markdown string, verdict validation.Verdict) (string, error) {
	var content strings.Builder
	if err := markdownRenderer.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	body := pageBreakHeadings.ReplaceAllString(content.String(), `<h2$1 data-page-break-before="true">$2</h2>`)

	badge := ""
	if verdict != "" {
		badge = "<span class='report-badge " + VerdictColor(verdict) + "'>" + html.EscapeString(VerdictLabel(verdict)) + "</span>"
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Startup Idea Validation Report</title>" +
		"<style>" + reportCSS + "</style></head><body>" +
		"<div class='report-wrap'><div class='report-header'><strong>JustPlanIt</strong><div class='report-badges'>" + badge + "</div></div>" +
		"<div class='report-html'>" + body + "</div></div>" +
		"</body></html>", nil
}

// Document renders r straight to HTML.
func Document(idea string, r *validation.ValidationReport, meta Meta) (string, error) {
	var verdict validation.Verdict
	if r != nil && r.ExecutiveSummary != nil {
		verdict = r.ExecutiveSummary.Verdict
	}
	return RenderHTML(Markdown(idea, r, meta.GeneratedAt), verdict)
}
