package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joelkehle/justplanit/internal/config"
	"github.com/joelkehle/justplanit/internal/telemetry"
	"github.com/joelkehle/justplanit/internal/validation"
)

var version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "justplanit",
		Short:         "Startup idea validation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(flags), validateCmd(flags), renderCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "justplanit %s\n", version)
		},
	})
	return cmd
}

// loadConfig reads configuration and builds the root logger writing to stderr.
func loadConfig(flags *globalFlags) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	logger, err := telemetry.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func newCompleter(cfg *config.Config) (validation.ChatCompleter, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		c, err := validation.NewAnthropicCompleter(cfg.LLM.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return validation.NewOpenRouterCompleter(validation.OpenRouterConfig{
			BaseURL:  cfg.LLM.BaseURL,
			APIKey:   cfg.LLM.APIKey,
			SiteURL:  cfg.LLM.SiteURL,
			AppTitle: cfg.LLM.AppTitle,
		}), nil
	}
}

func newAnalyzer(cfg *config.Config) (*validation.Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	completer, err := newCompleter(cfg)
	if err != nil {
		return nil, err
	}
	return validation.NewAnalyzer(completer, validation.AnalyzerConfig{
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}), nil
}
