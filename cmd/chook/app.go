package main

import (
	"fmt"
	"io"
	"log/slog"

	corecfg "github.com/chook-lab/chook/internal/core/config"
	"github.com/chook-lab/chook/internal/event"
	"github.com/chook-lab/chook/internal/handler"
	"github.com/chook-lab/chook/internal/handler/formats/builtin"
	"github.com/chook-lab/chook/internal/handler/formats/script"
	"github.com/chook-lab/chook/internal/logging"
	"github.com/chook-lab/chook/internal/schema"
)

// app holds the pieces every subcommand builds from configuration.
type app struct {
	cfg      *corecfg.Config
	logger   *slog.Logger
	closer   io.Closer
	subjects *schema.Registry
	types    *event.Registry
	decoder  *event.Decoder
	handlers *handler.Registry
}

func newApp(path string) (*app, error) {
	cfg, err := corecfg.Load(path)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	subjects, err := schema.NewDefaultRegistry()
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to build subject registry: %w", err)
	}
	types, err := event.NewDefaultRegistry(subjects)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to build event type registry: %w", err)
	}

	formats, err := handler.NewFormatRegistry(
		script.NewCompiler(logger),
		builtin.New(builtin.Defaults()),
	)
	if err != nil {
		closer.Close()
		return nil, err
	}

	handlers := handler.NewRegistry(handler.Options{
		Dir:          cfg.Handlers.Dir,
		NamedSubdir:  cfg.Handlers.NamedSubdir,
		IgnorePrefix: cfg.Handlers.IgnorePrefix,
		Formats:      formats,
		EventTypes:   types.Names(),
		Logger:       logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		closer:   closer,
		subjects: subjects,
		types:    types,
		decoder:  event.NewDecoder(types, event.WithLogger(logger)),
		handlers: handlers,
	}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}
