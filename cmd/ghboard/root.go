package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/amishk599/ghboard/internal/adapter"
	"github.com/amishk599/ghboard/internal/config"
	"github.com/amishk599/ghboard/internal/model"
	"github.com/amishk599/ghboard/internal/normalize"
	"github.com/amishk599/ghboard/internal/processor"
	"github.com/amishk599/ghboard/internal/ratelimit"
	"github.com/amishk599/ghboard/internal/retry"
	"github.com/amishk599/ghboard/internal/sink"
)

var (
	cfgPath   string
	debug     bool
	logFormat string
	envFile   string
)

var rootCmd = &cobra.Command{
	Use:   "ghboard",
	Short: "Greenhouse job boards, normalized",
	Long:  "ghboard reads public Greenhouse job boards, filters their postings and emits one flat record per job.",
	// `ghboard <url...>` behaves like `ghboard run <url...>`.
	Args:         cobra.ArbitraryArgs,
	RunE:         runRun,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		// A missing .env is normal; anything else is worth reporting.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: GHBOARD_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format: text or json")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config; empty disables")
	addRunFlags(rootCmd)
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > GHBOARD_CONFIG env var > "./config.yaml".
// When allowMissing is set and the file does not exist, defaults are used;
// `run <url...>` needs no config file at all.
func loadConfig(path string, allowMissing bool) (*config.Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv("GHBOARD_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil && allowMissing && !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogger(dbg bool, format string) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildClient stacks the fetch decorators: retries wrap the rate limiter,
// so every attempt waits for a token.
func buildClient(cfg *config.Config, logger *slog.Logger) (model.BoardClient, error) {
	httpClient, err := adapter.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.ProxyURL)
	if err != nil {
		return nil, err
	}

	var client model.BoardClient = adapter.NewGreenhouseClient(cfg.HTTP.BaseURL, cfg.HTTP.UserAgent, httpClient)

	u, err := url.Parse(cfg.HTTP.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	host := u.Host
	limiter := ratelimit.NewHostLimiter(cfg.HTTP.RequestsPerSecond, cfg.HTTP.Burst)
	client = ratelimit.NewClient(client, limiter, host)
	logger.Debug("rate limiter configured", "host", host, "rps", cfg.HTTP.RequestsPerSecond, "burst", cfg.HTTP.Burst)

	return retry.NewClient(client, cfg.HTTP.MaxRetries, cfg.HTTP.RetryDelay, logger), nil
}

// buildSinks opens every configured sink. On error, the ones already opened
// are closed again.
func buildSinks(ctx context.Context, cfgs []config.SinkConfig, logger *slog.Logger) (sink.Multi, error) {
	var out sink.Multi
	for _, sc := range cfgs {
		s, err := openSink(ctx, sc, logger)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("open %s sink: %w", sc.Type, err)
		}
		logger.Debug("sink opened", "type", sc.Type)
		out = append(out, s)
	}
	return out, nil
}

func openSink(ctx context.Context, sc config.SinkConfig, logger *slog.Logger) (model.Sink, error) {
	switch sc.Type {
	case "log":
		return sink.NewLogSink(logger), nil
	case "jsonl":
		return sink.NewJSONLSink(sc.Path)
	case "sqlite":
		return sink.NewSQLiteSink(sc.Path)
	case "postgres":
		return sink.NewPostgresSink(ctx, sc.DSN, sc.Table)
	case "elasticsearch":
		return sink.NewElasticsearchSink(ctx, sink.ElasticsearchConfig{
			Addresses: sc.Addresses,
			Username:  sc.Username,
			Password:  sc.Password,
			Index:     sc.Index,
		})
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     sc.Addr,
			Password: sc.Password,
			DB:       sc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", sc.Addr, err)
		}
		return sink.NewRedisSink(client, sc.Queue), nil
	case "slack":
		return sink.NewSlackSink(sc.WebhookURL, &http.Client{Timeout: 10 * time.Second}, logger), nil
	default:
		return nil, fmt.Errorf("unknown sink type %q", sc.Type)
	}
}

func buildProcessor(cfg *config.Config, client model.BoardClient, out model.Sink, skipDetails bool, logger *slog.Logger) *processor.BoardProcessor {
	return processor.New(client, out, normalize.New(cfg.Description), processor.Options{
		DetailConcurrency: cfg.Concurrency.Details,
		SkipDetails:       skipDetails || !cfg.FetchDetails,
	}, logger)
}
