package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/ctxlog"
	"github.com/outpace-bio/hallcamp/internal/fsutil"
	"github.com/outpace-bio/hallcamp/internal/metrics"
)

// aggregate joins every scorer output found under the configured score
// directories (plus an optional prior table) into one wide table and adds
// the campaign's derived columns.
func (a *App) aggregate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var tables []*metrics.Table
	if a.cfg.PriorPath != "" {
		prior, err := metrics.ReadFile(a.cfg.PriorPath)
		if err != nil {
			return err
		}
		logger.Debug("Prior aggregated table loaded.", "rows", prior.Len())
		tables = append(tables, prior)
	}

	for _, dir := range a.cfg.ScoreDirs {
		var files []string
		for _, ext := range metrics.Extensions() {
			found, err := fsutil.FindFilesByExtension(dir, ext)
			if err != nil {
				return fmt.Errorf("scan score directory %s: %w", dir, err)
			}
			files = append(files, found...)
		}
		sort.Strings(files)
		if len(files) == 0 {
			logger.Warn("No scorer outputs found.", "dir", dir)
			continue
		}
		for _, file := range files {
			t, err := metrics.ReadFile(file)
			if err != nil {
				return err
			}
			logger.Debug("Scorer output loaded.", "file", file, "rows", t.Len(), "columns", t.Columns())
			tables = append(tables, t)
		}
	}
	if len(tables) == 0 {
		return fmt.Errorf("nothing to aggregate: no prior table and no scorer outputs")
	}

	out, err := metrics.Aggregate(tables...)
	if err != nil {
		return err
	}

	if a.cfg.CampaignPath != "" {
		in, err := campaign.Load(a.cfg.CampaignPath)
		if err != nil {
			return err
		}
		for _, d := range in.Derived {
			if err := metrics.AddDerived(out, d.Name, d.Expr); err != nil {
				return err
			}
			logger.Debug("Derived column added.", "column", d.Name, "expr", d.Expr)
		}
	}

	if err := metrics.WriteCSVFile(a.cfg.OutPath, out); err != nil {
		return err
	}
	logger.Info("✅ Metrics aggregated.", "rows", out.Len(), "columns", len(out.Columns()), "out", a.cfg.OutPath)
	return nil
}
