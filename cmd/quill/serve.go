package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/quill-ui/quill/internal/config"
	"github.com/quill-ui/quill/internal/panel"
	"github.com/quill-ui/quill/pkg/ai"
	"github.com/quill-ui/quill/pkg/permit"
	"github.com/quill-ui/quill/pkg/server"
	"github.com/quill-ui/quill/pkg/store"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the panel server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if debug {
				cfg.Debug = true
			}

			logger, closeLogs, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLogs()
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}

			p := panel.New(panel.Deps{
				Store:  st,
				AI:     ai.Script("Quill is running. Wire a real model client to chat."),
				Permit: permit.AllowAll(),
				Logger: logger,
			})

			srv := server.New(p.Root, server.Config{
				Addr:         cfg.Addr,
				StaticDir:    cfg.StaticDir,
				MaxSessions:  cfg.Session.Max,
				PingInterval: cfg.PingInterval(),
				Debug:        cfg.Debug,
			},
				server.WithLogger(logger),
				server.WithTracer(otel.Tracer("quill/server")),
			)

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to quill.json")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug mode")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(wd)
}

// newLogger fans log records out to a text handler on stderr and, when
// configured, a JSON file handler.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closeLogs := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeLogs = func() { f.Close() }
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeLogs, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		return store.NewS3Store(client, cfg.Store.Bucket, cfg.Store.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
