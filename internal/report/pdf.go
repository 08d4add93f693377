package report

import (
	"context"
	"fmt"
	"html"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/joelkehle/justplanit/internal/validation"
)

const DefaultPDFTimeout = 30 * time.Second

// A4 in inches, with margins matching the 12mm @page rule of the HTML export.
const (
	a4Width      = 8.27
	a4Height     = 11.69
	pageMargin   = 0.47
	headerMargin = 0.7
	maxTitleLen  = 90
)

// Meta is the document metadata shared by the HTML and PDF renderers.
type Meta struct {
	GeneratedAt time.Time
}

// PageMeta is printed in the running header and footer of every PDF page.
type PageMeta struct {
	Idea        string
	Verdict     validation.Verdict
	GeneratedAt time.Time
}

// PDFRenderer prints report pages to A4 PDF with headless Chromium.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
}

func NewPDFRenderer(chromePath string) *PDFRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	return &PDFRenderer{chromePath: chromePath, timeout: DefaultPDFTimeout}
}

// Render loads htmlDoc into a blank tab and prints it. The document is set
// directly on the frame, so large reports are not limited by data URL size.
func (r *PDFRenderer) Render(ctx context.Context, htmlDoc string, meta PageMeta) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlDoc).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := printParams(meta).Do(ctx)
			pdf = out
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print report: %w", err)
	}
	return pdf, nil
}

func (r *PDFRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	return opts
}

func printParams(meta PageMeta) *page.PrintToPDFParams {
	header, footer := pageTemplates(meta)
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithDisplayHeaderFooter(true).
		WithHeaderTemplate(header).
		WithFooterTemplate(footer).
		WithPaperWidth(a4Width).
		WithPaperHeight(a4Height).
		WithMarginTop(headerMargin).
		WithMarginBottom(headerMargin).
		WithMarginLeft(pageMargin).
		WithMarginRight(pageMargin)
}

// pageTemplates builds Chromium header/footer markup. Chromium renders them
// outside the page CSS, so every style is inline.
func pageTemplates(meta PageMeta) (header, footer string) {
	const row = `<div style="width:100%;margin:0 12mm;display:flex;justify-content:space-between;font-size:8px;color:#6b7280;font-family:Helvetica,Arial,sans-serif;">`

	title := oneLine(meta.Idea)
	if r := []rune(title); len(r) > maxTitleLen {
		title = string(r[:maxTitleLen-1]) + "…"
	}
	if title == "" {
		title = "Startup Idea Validation Report"
	}
	verdict := ""
	if meta.Verdict != "" {
		verdict = "Verdict: " + VerdictLabel(meta.Verdict)
	}
	header = row + "<span>" + html.EscapeString(title) + "</span><span>" + html.EscapeString(verdict) + "</span></div>"

	generated := ""
	if !meta.GeneratedAt.IsZero() {
		generated = "Generated " + meta.GeneratedAt.UTC().Format("January 2, 2006")
	}
	footer = row + "<span>JustPlanIt " + html.EscapeString(generated) + "</span>" +
		`<span><span class="pageNumber"></span> / <span class="totalPages"></span></span></div>`
	return header, footer
}

func detectChromePath() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, p := range []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
