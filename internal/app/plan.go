package app

import (
	"context"
	"fmt"
	"os"

	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/ctxlog"
	"github.com/outpace-bio/hallcamp/internal/dispatch"
	"github.com/outpace-bio/hallcamp/internal/jobspec"
	"github.com/outpace-bio/hallcamp/internal/pdbref"
)

// buildCommands runs the Job Spec Builder and Batch Dispatcher for the
// configured campaign: intent -> specs -> command descriptors. Specs that
// cannot be serialized are logged and skipped; their siblings proceed.
func (a *App) buildCommands(ctx context.Context) (*campaign.Intent, []dispatch.Command, error) {
	logger := ctxlog.FromContext(ctx)

	in, err := campaign.Load(a.cfg.CampaignPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Campaign intent loaded.", "campaign", in.Name, "generation", in.Generation)

	ref, err := pdbref.Load(in.Reference)
	if err != nil {
		return nil, nil, fmt.Errorf("reference structure: %w", err)
	}

	specs, err := jobspec.Build(in, ref, a.cfg.StartIndex)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Job specs built.", "count", len(specs), "total", in.Batch.Total, "batch_size", in.Batch.Size)

	cmds, serErrs := dispatch.DescribeAll(specs)
	for _, serErr := range serErrs {
		logger.Error("Skipping unserializable job spec.", "error", serErr)
	}
	if len(cmds) == 0 {
		if len(serErrs) > 0 {
			return nil, nil, serErrs[0]
		}
		return nil, nil, fmt.Errorf("campaign %s produced no dispatchable jobs", in.Name)
	}
	return in, cmds, nil
}

// plan writes the scheduler-facing job list for the campaign.
func (a *App) plan(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	in, cmds, err := a.buildCommands(ctx)
	if err != nil {
		return err
	}

	out := a.outW
	if a.cfg.OutPath != "" {
		f, err := os.Create(a.cfg.OutPath)
		if err != nil {
			return fmt.Errorf("create job list: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := dispatch.WriteJobList(out, cmds); err != nil {
		return err
	}

	logger.Info("✅ Job list written.",
		"campaign", in.Name,
		"generation", in.Generation,
		"jobs", len(cmds),
		"designs", in.Batch.Total,
		"out", a.cfg.OutPath,
	)
	return nil
}
