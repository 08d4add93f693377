package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joelkehle/justplanit/internal/progress"
	"github.com/joelkehle/justplanit/internal/report"
	"github.com/joelkehle/justplanit/internal/validation"
)

func validateCmd(flags *globalFlags) *cobra.Command {
	var (
		ctxFields validation.ContextFields
		direct    bool
		format    string
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "validate <idea>",
		Short: "Analyze one idea and print the report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea := strings.TrimSpace(strings.Join(args, " "))
			if idea == "" {
				return fmt.Errorf("idea is required")
			}
			if format != "md" && format != "json" {
				return fmt.Errorf("unknown format %q (want md or json)", format)
			}
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}

			req := validation.ValidationRequest{Idea: idea}
			if ctxFields != (validation.ContextFields{}) {
				req.Context = &ctxFields
			}
			analyze := analyzer.AnalyzeIdea
			if direct {
				analyze = analyzer.AnalyzeIdeaDirect
			}

			ctx := logger.WithContext(cmd.Context())
			stop := func(bool) {}
			if !quiet {
				stop = showProgress(ctx, cmd.ErrOrStderr())
			}
			res, err := analyze(ctx, req)
			stop(err == nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Report)
			}
			_, err = io.WriteString(out, report.Markdown(idea, res.Report, time.Now()))
			return err
		},
	}
	cmd.Flags().StringVar(&ctxFields.Industry, "industry", "", "Industry focus")
	cmd.Flags().StringVar(&ctxFields.TargetMarket, "target-market", "", "Target market")
	cmd.Flags().StringVar(&ctxFields.BudgetRange, "budget-range", "", "Budget range")
	cmd.Flags().BoolVar(&direct, "direct", false, "Skip sanitization and validation (for upstreams that return raw JSON)")
	cmd.Flags().StringVar(&format, "format", "md", "Output format: md or json")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show progress")
	return cmd
}

// showProgress draws the cosmetic step sequence on w until the returned func
// is called with the request outcome.
func showProgress(ctx context.Context, w io.Writer) func(success bool) {
	ctx, cancel := context.WithCancel(ctx)
	var (
		mu   sync.Mutex
		last progress.Snapshot
		wg   sync.WaitGroup
	)
	draw := func(s progress.Snapshot) {
		fmt.Fprintf(w, "\r\033[K[%3.0f%%] %s", s.Percent, s.Text)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		progress.DefaultSteps.Run(ctx, 200*time.Millisecond, func(s progress.Snapshot) {
			mu.Lock()
			last = s
			draw(s)
			mu.Unlock()
		})
	}()
	return func(success bool) {
		cancel()
		wg.Wait()
		mu.Lock()
		defer mu.Unlock()
		if success {
			draw(last.Settle(true))
		}
		fmt.Fprintln(w)
	}
}
