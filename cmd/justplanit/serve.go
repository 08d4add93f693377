package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joelkehle/justplanit/internal/auth"
	"github.com/joelkehle/justplanit/internal/chat"
	"github.com/joelkehle/justplanit/internal/httpapi"
	"github.com/joelkehle/justplanit/internal/report"
	"github.com/joelkehle/justplanit/internal/session"
	"github.com/joelkehle/justplanit/internal/storage"
	"github.com/joelkehle/justplanit/internal/telemetry"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr, webDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if webDir != "" {
				cfg.Server.WebDir = webDir
			}
			ctx := logger.WithContext(cmd.Context())

			shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
				Endpoint:    cfg.Telemetry.OTLPEndpoint,
				ServiceName: cfg.Telemetry.ServiceName,
				Insecure:    cfg.Telemetry.Insecure,
			})
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracing(flushCtx)
			}()

			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			sessions, err := session.NewStore(analyzer, session.Options{
				Capacity: cfg.Sessions.Capacity,
				Timeout:  cfg.Sessions.Timeout,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("create session store: %w", err)
			}
			defer sessions.Close()

			db, err := storage.Open(cfg.Store.Path, "")
			if err != nil {
				return err
			}
			defer db.Close()
			authSvc, err := auth.NewService(db, auth.Options{})
			if err != nil {
				return err
			}
			chatStore, err := chat.NewSQLiteStore(db)
			if err != nil {
				return err
			}

			if cfg.Server.WebDir != "" {
				if _, err := os.Stat(filepath.Join(cfg.Server.WebDir, "index.html")); err != nil {
					logger.Warn().Str("web_dir", cfg.Server.WebDir).Msg("web dir has no index.html")
				}
			}

			handler := httpapi.NewServer(httpapi.Dependencies{
				Analyzer: analyzer,
				Sessions: sessions,
				Auth:     authSvc,
				Chat:     chat.NewService(chatStore, chat.NewHub()),
				PDF:      report.NewPDFRenderer(""),
				Logger:   logger,
				WebDir:   cfg.Server.WebDir,
			})
			logger.Info().
				Str("provider", cfg.LLM.Provider).
				Str("model", cfg.LLM.Model).
				Str("store", cfg.Store.Path).
				Msg("justplanit configured")
			return httpapi.Run(ctx, cfg.Server.Addr, handler, cfg.Server.ShutdownTimeout, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&webDir, "web-dir", "", "Directory of static web UI files")
	return cmd
}
