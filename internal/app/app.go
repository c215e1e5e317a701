package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/outpace-bio/hallcamp/internal/ctxlog"
)

// App encapsulates one pipeline-stage invocation: its configuration, its
// isolated logger and its output stream.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
}

// New returns a fully initialized App with its own logger instance.
func New(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, logger: logger, cfg: cfg}
}

// Run dispatches the configured pipeline stage.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "stage", a.cfg.Stage)

	var err error
	switch a.cfg.Stage {
	case StagePlan:
		err = a.plan(ctx)
	case StageRun:
		err = a.runLocal(ctx)
	case StageAggregate:
		err = a.aggregate(ctx)
	case StageSelect:
		err = a.selectHits(ctx)
	case StagePromote:
		err = a.promoteHits(ctx)
	case StagePropagate:
		err = a.propagateParent(ctx)
	default:
		err = fmt.Errorf("unknown stage %q", a.cfg.Stage)
	}

	a.logger.Debug("App.Run method finished.", "stage", a.cfg.Stage, "error", err)
	return err
}
