package app

import (
	"context"

	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/ctxlog"
	"github.com/outpace-bio/hallcamp/internal/propagate"
	"github.com/outpace-bio/hallcamp/internal/store"
)

// propagateParent derives the next generation's campaign intent from one
// promoted parent design and writes it as the HCL input of the next plan.
func (a *App) propagateParent(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	base, err := campaign.Load(a.cfg.CampaignPath)
	if err != nil {
		return err
	}

	child, err := propagate.Derive(a.cfg.Parent, store.New(a.cfg.FromDir), base, propagate.Options{
		Retention: a.cfg.Spike,
	})
	if err != nil {
		return err
	}

	if err := campaign.WriteFile(a.cfg.OutPath, child); err != nil {
		return err
	}
	logger.Info("✅ Child campaign written.",
		"parent", a.cfg.Parent,
		"campaign", child.Name,
		"generation", child.Generation,
		"contigs", child.Contigs,
		"out", a.cfg.OutPath,
	)
	return nil
}
