package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/outpace-bio/hallcamp/internal/ctxlog"
	"github.com/outpace-bio/hallcamp/internal/runner"
)

// runLocal executes the campaign's generator commands in-process with a
// worker pool, standing in for the external scheduler on small campaigns.
func (a *App) runLocal(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	in, cmds, err := a.buildCommands(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(in.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create generation directory: %w", err)
	}

	tracker := runner.NewTracker()
	if a.cfg.StatusPort > 0 {
		a.startStatusServer(tracker)
	}

	logger.Info("🚀 Starting concurrent execution...", "jobs", len(cmds), "workers", a.cfg.Workers)
	if err := runner.Run(ctx, cmds, a.cfg.Workers, tracker); err != nil {
		return fmt.Errorf("generation run failed: %w", err)
	}
	logger.Info("🏁 Execution finished.", "campaign", in.Name, "generation", in.Generation)
	return nil
}

// startStatusServer exposes the tracker on /status. Best-effort: a failure
// to bind is logged, never fatal to the run itself.
func (a *App) startStatusServer(tracker *runner.Tracker) {
	mux := http.NewServeMux()
	mux.Handle("/status", tracker)

	addr := fmt.Sprintf(":%d", a.cfg.StatusPort)
	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed", "error", err)
		}
	}()
}
