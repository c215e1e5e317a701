package app

import (
	"context"

	"github.com/outpace-bio/hallcamp/internal/ctxlog"
	"github.com/outpace-bio/hallcamp/internal/metrics"
	"github.com/outpace-bio/hallcamp/internal/promote"
	"github.com/outpace-bio/hallcamp/internal/store"
)

// promoteHits copies every selected design's artifact set into the curated
// directory. Per-design failures are reported by name and never block
// siblings; the stage still fails at the end so a shortfall is visible.
func (a *App) promoteHits(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	hitTable, err := metrics.ReadFile(a.cfg.HitsPath)
	if err != nil {
		return err
	}

	res, err := promote.Promote(hitTable, store.New(a.cfg.FromDir), a.cfg.ToDir)
	if err != nil {
		return err
	}
	for name, designErr := range res.Failed {
		logger.Error("Design skipped during promotion.", "design", name, "error", designErr)
	}
	logger.Info("✅ Designs promoted.",
		"promoted", len(res.Promoted),
		"failed", len(res.Failed),
		"to", a.cfg.ToDir,
	)
	return res.Err()
}
