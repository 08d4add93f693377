package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joelkehle/justplanit/internal/report"
	"github.com/joelkehle/justplanit/internal/validation"
)

func renderCmd() *cobra.Command {
	var (
		outPath string
		idea    string
	)
	cmd := &cobra.Command{
		Use:   "render <report.json>",
		Short: "Render a saved report as Markdown, HTML or PDF",
		Long: `Render reads a report JSON file (as printed by "validate --format json")
and writes it in the format implied by --out: .md, .html or .pdf.
Without --out the Markdown goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			var r validation.ValidationReport
			if err := json.Unmarshal(blob, &r); err != nil {
				return fmt.Errorf("decode input JSON: %w", err)
			}
			if missing := validation.MissingSections(blob); len(missing) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: report is missing sections: %s\n", strings.Join(missing, ", "))
			}

			now := time.Now()
			ext := strings.ToLower(filepath.Ext(outPath))
			if outPath == "" || ext == ".md" || ext == ".markdown" {
				md := report.Markdown(idea, &r, now)
				if outPath == "" {
					_, err := fmt.Fprint(cmd.OutOrStdout(), md)
					return err
				}
				return os.WriteFile(outPath, []byte(md), 0o644)
			}

			doc, err := report.Document(idea, &r, report.Meta{GeneratedAt: now})
			if err != nil {
				return err
			}
			switch ext {
			case ".html", ".htm":
				return os.WriteFile(outPath, []byte(doc), 0o644)
			case ".pdf":
				var verdict validation.Verdict
				if r.ExecutiveSummary != nil {
					verdict = r.ExecutiveSummary.Verdict
				}
				pdf, err := report.NewPDFRenderer("").Render(cmd.Context(), doc, report.PageMeta{Idea: idea, Verdict: verdict, GeneratedAt: now})
				if err != nil {
					return fmt.Errorf("render pdf: %w", err)
				}
				return os.WriteFile(outPath, pdf, 0o644)
			default:
				return fmt.Errorf("unsupported output extension %q", ext)
			}
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (.md, .html or .pdf)")
	cmd.Flags().StringVar(&idea, "idea", "", "Idea text to show in the report header")
	return cmd
}
