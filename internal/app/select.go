package app

import (
	"context"
	"fmt"
	"os"

	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/ctxlog"
	"github.com/outpace-bio/hallcamp/internal/hits"
	"github.com/outpace-bio/hallcamp/internal/metrics"
)

// selectHits filters the aggregated table down to the designs worth
// breeding. Predicates come from -where flags, falling back to the
// campaign's selection block; the relaxation policy always comes from the
// campaign.
func (a *App) selectHits(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	table, err := metrics.ReadFile(a.cfg.MetricsPath)
	if err != nil {
		return err
	}
	logger.Debug("Aggregated table loaded.", "rows", table.Len())

	where := a.cfg.Where
	var policy *hits.Relax
	if a.cfg.CampaignPath != "" {
		in, err := campaign.Load(a.cfg.CampaignPath)
		if err != nil {
			return err
		}
		if sel := in.Selection; sel != nil {
			if len(where) == 0 {
				where = sel.Where
			}
			if sel.Relax != nil {
				policy = &hits.Relax{
					Order:     sel.Relax.Order,
					Step:      sel.Relax.Step,
					MaxRounds: sel.Relax.MaxRounds,
					MinHits:   sel.Relax.MinHits,
				}
			}
		}
	}
	if len(where) == 0 {
		return fmt.Errorf("no selection predicates: pass -where or a campaign with a selection block")
	}
	if policy != nil && a.cfg.MinHits > 0 {
		policy.MinHits = a.cfg.MinHits
	}

	preds, err := hits.ParsePredicates(where)
	if err != nil {
		return err
	}

	res, err := hits.Select(table, preds, policy)
	if err != nil {
		return err
	}
	if res.Rounds > 0 {
		logger.Warn("Thresholds were relaxed to reach the hit floor.",
			"rounds", res.Rounds, "final", res.Predicates)
	}

	out := a.outW
	if a.cfg.OutPath != "" {
		f, err := os.Create(a.cfg.OutPath)
		if err != nil {
			return fmt.Errorf("create hits file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := metrics.WriteCSV(out, res.Hits); err != nil {
		return err
	}

	if a.cfg.AuditPath != "" {
		audit := hits.NewAudit(a.cfg.MetricsPath, preds, res)
		if err := hits.WriteAudit(a.cfg.AuditPath, audit); err != nil {
			return err
		}
		logger.Debug("Selection audit written.", "id", audit.ID, "path", a.cfg.AuditPath)
	}

	logger.Info("✅ Hits selected.",
		"hits", res.Hits.Len(),
		"of", table.Len(),
		"rounds", res.Rounds,
		"out", a.cfg.OutPath,
	)
	return nil
}
