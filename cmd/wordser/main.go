package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/config"
	"github.com/kailas-cloud/wordser/internal/domain"
	logpkg "github.com/kailas-cloud/wordser/internal/logger"
	"github.com/kailas-cloud/wordser/internal/metrics"
	"github.com/kailas-cloud/wordser/internal/shutdown"
	"github.com/kailas-cloud/wordser/internal/telemetry"
	chiTransport "github.com/kailas-cloud/wordser/internal/transport/chi"
	openaiEngine "github.com/kailas-cloud/wordser/internal/transport/openai"
	thesaurusClient "github.com/kailas-cloud/wordser/internal/transport/thesaurus"
	healthuc "github.com/kailas-cloud/wordser/internal/usecase/health"
	summaryuc "github.com/kailas-cloud/wordser/internal/usecase/summary"
	synonymsuc "github.com/kailas-cloud/wordser/internal/usecase/synonyms"
	"github.com/kailas-cloud/wordser/internal/version"
)

const healthCheckTimeout = 3 * time.Second

type serveOptions struct {
	env    string
	port   int
	dotenv string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordser",
		Short:         "Synonym lookup and text summarization gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(), newVersionCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.env, "env", "e", config.GetEnv(), "Environment name, selects config/<env>.yaml")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Override http.port from the config file")
	cmd.Flags().StringVar(&opts.dotenv, "dotenv", ".env", "Optional .env file with secrets")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfgPath := config.FindPath(opts.env)
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.port > 0 {
		cfg.HTTP.Port = opts.port
	}

	logger, level, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	secrets, err := config.LoadSecrets(opts.dotenv)
	if err != nil {
		logger.Error("Missing credentials, refusing to start", zap.Error(err))
		return err
	}

	metrics.RegisterHTTPMetrics()
	metrics.RegisterUpstreamMetrics()

	shutdownTracing, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version.Version,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Environment:    opts.env,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Trace flush failed", zap.Error(err))
		}
	}()

	logger.Info("Starting wordser",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.String("config", cfgPath),
		zap.String("addr", cfg.HTTP.Addr()),
		zap.Bool("tracing", cfg.Telemetry.OTLPEndpoint != ""),
	)

	thesaurus := thesaurusClient.NewClient(thesaurusClient.Config{
		BaseURL:      cfg.Thesaurus.BaseURL,
		APIKey:       secrets.ThesaurusAPIKey,
		Timeout:      time.Duration(cfg.Thesaurus.TimeoutSec) * time.Second,
		MaxBodyBytes: cfg.Thesaurus.MaxBodyBytes,
		Logger:       logger,
	})

	engine, engineCheck := loadEngine(ctx, cfg.Summarizer, secrets.SummarizerAPIKey, logger)

	health := healthuc.New(map[string]healthuc.Checker{"summarizer": engineCheck}, healthCheckTimeout)
	coordinator := shutdown.New(time.Duration(cfg.HTTP.ShutdownSec)*time.Second, logger)

	server := chiTransport.NewServer(
		synonymsuc.New(thesaurus, logger),
		summaryuc.New(engine, cfg.Summarizer.Workers, logger),
		health,
		logger,
	)
	router := chiTransport.NewRouter(server, logger, coordinator.Track)

	srv := &http.Server{
		Handler:           otelhttp.NewHandler(router, "wordser"),
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	ln, err := net.Listen("tcp", cfg.HTTP.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr(), err)
	}
	logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		err := config.Watch(watchCtx, cfgPath, logger, func(next config.Config) {
			applyLogLevel(level, next.Logging.Level, logger)
		})
		if err != nil {
			logger.Warn("Config watch disabled", zap.Error(err))
		}
	}()

	if err := coordinator.Run(ctx, srv, ln); err != nil {
		if errors.Is(err, shutdown.ErrDrainTimeout) {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
		return err
	}

	logger.Info("Server stopped")
	return nil
}

// loadEngine builds the summarization engine and verifies it once. On failure the
// gateway keeps serving synonyms and summary requests report the engine as unavailable.
func loadEngine(
	ctx context.Context, cfg config.SummarizerConfig, apiKey string, logger *zap.Logger,
) (domain.Summarizer, healthuc.Checker) {
	engine := openaiEngine.NewSummarizer(&openaiEngine.Config{
		APIKey:       apiKey,
		BaseURL:      cfg.BaseURL,
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
		Candidates:   cfg.Candidates,
		HTTPClient:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Logger:       logger,
	})

	loadCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.LoadTimeoutSec)*time.Second)
	defer cancel()

	if err := engine.Load(loadCtx); err != nil {
		logger.Error("Summarization engine failed to load, summaries disabled",
			zap.String("model", cfg.Model),
			zap.String("base_url", cfg.BaseURL),
			zap.String("error_kind", domain.Kind(err)),
			zap.Error(err),
		)
		return nil, nil
	}

	logger.Info("Summarization engine loaded",
		zap.String("model", cfg.Model),
		zap.Int("workers", cfg.Workers),
		zap.Int("candidates", cfg.Candidates),
	)
	return engine, engine
}

func applyLogLevel(level zap.AtomicLevel, raw string, logger *zap.Logger) {
	if raw == "" {
		return
	}
	lvl, err := logpkg.ParseLevel(raw)
	if err != nil {
		logger.Warn("Ignoring invalid log level", zap.String("level", raw), zap.Error(err))
		return
	}
	if lvl == level.Level() {
		return
	}
	level.SetLevel(lvl)
	logger.Info("Log level changed", zap.Stringer("level", lvl))
}
