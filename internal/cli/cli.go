// Package cli parses the hallcamp command line: one pipeline stage per
// subcommand, shared logging flags, per-stage required options.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/outpace-bio/hallcamp/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usage = `hallcamp - generational design-campaign controller.

Usage:
  hallcamp <stage> [options]

Stages:
  plan       Build job specs from a campaign file and write the job list.
  run        Execute a campaign's generator jobs locally with a worker pool.
  aggregate  Join scorer outputs into one metrics table.
  select     Filter the metrics table down to hits.
  promote    Copy each hit's artifact set into a curated directory.
  propagate  Derive the next generation's campaign from a parent design.

Run 'hallcamp <stage> -h' for stage options.
`

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	if len(args) == 0 {
		fmt.Fprint(output, usage)
		return nil, true, nil
	}
	stage := args[0]
	switch stage {
	case "help", "-h", "--help":
		fmt.Fprint(output, usage)
		return nil, true, nil
	case app.StagePlan, app.StageRun, app.StageAggregate, app.StageSelect, app.StagePromote, app.StagePropagate:
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown stage %q; run 'hallcamp help'", stage)}
	}

	flagSet := flag.NewFlagSet("hallcamp "+stage, flag.ContinueOnError)
	flagSet.SetOutput(output)

	cfg := app.Config{Stage: stage}
	flagSet.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	var scores, where stringList
	switch stage {
	case app.StagePlan:
		flagSet.StringVar(&cfg.CampaignPath, "campaign", "", "Path to the campaign HCL file.")
		flagSet.StringVar(&cfg.OutPath, "out", "", "Job list output path. Empty writes to stdout.")
		flagSet.IntVar(&cfg.StartIndex, "start-index", 0, "First design index of this generation.")
	case app.StageRun:
		flagSet.StringVar(&cfg.CampaignPath, "campaign", "", "Path to the campaign HCL file.")
		flagSet.IntVar(&cfg.StartIndex, "start-index", 0, "First design index of this generation.")
		flagSet.IntVar(&cfg.Workers, "workers", 2, "Number of concurrent generator jobs.")
		flagSet.IntVar(&cfg.StatusPort, "status-port", 0, "Port for the HTTP status endpoint. 0 is disabled.")
	case app.StageAggregate:
		flagSet.Var(&scores, "scores", "Scorer output directory. Repeatable.")
		flagSet.StringVar(&cfg.PriorPath, "prior", "", "Prior aggregated table to extend.")
		flagSet.StringVar(&cfg.CampaignPath, "campaign", "", "Campaign file contributing derived columns.")
		flagSet.StringVar(&cfg.OutPath, "out", "metrics.csv", "Aggregated table output path.")
	case app.StageSelect:
		flagSet.StringVar(&cfg.MetricsPath, "metrics", "", "Aggregated metrics table.")
		flagSet.StringVar(&cfg.CampaignPath, "campaign", "", "Campaign file providing selection defaults.")
		flagSet.Var(&where, "where", "Threshold predicate, e.g. 'af2_lddt > 60'. Repeatable.")
		flagSet.IntVar(&cfg.MinHits, "min-hits", 0, "Override the relaxation policy's hit floor.")
		flagSet.StringVar(&cfg.OutPath, "out", "", "Hits table output path. Empty writes to stdout.")
		flagSet.StringVar(&cfg.AuditPath, "audit", "", "Selection audit record output path.")
	case app.StagePromote:
		flagSet.StringVar(&cfg.HitsPath, "hits", "", "Filtered hits table.")
		flagSet.StringVar(&cfg.FromDir, "from", "", "Generation directory holding the artifacts.")
		flagSet.StringVar(&cfg.ToDir, "to", "", "Curated destination directory.")
	case app.StagePropagate:
		flagSet.StringVar(&cfg.Parent, "parent", "", "Parent design name, e.g. 'rsv2_g1_12'.")
		flagSet.StringVar(&cfg.FromDir, "from", "", "Directory holding the parent's artifacts.")
		flagSet.StringVar(&cfg.CampaignPath, "campaign", "", "Parent generation's campaign file.")
		flagSet.StringVar(&cfg.OutPath, "out", "", "Child campaign output path.")
		flagSet.Float64Var(&cfg.Spike, "spike", 0, "Seed retention for the child generation. 0 uses the default.")
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	cfg.ScoreDirs = scores
	cfg.Where = where

	logFormat := strings.ToLower(cfg.LogFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	cfg.LogFormat = logFormat

	logLevel := strings.ToLower(cfg.LogLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	cfg.LogLevel = logLevel

	if err := validate(&cfg); err != nil {
		return nil, false, err
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

// validate enforces the per-stage required flags.
func validate(cfg *app.Config) error {
	missing := func(flagName string) error {
		return &ExitError{Code: 2, Message: fmt.Sprintf("%s: -%s is required", cfg.Stage, flagName)}
	}
	switch cfg.Stage {
	case app.StagePlan, app.StageRun:
		if cfg.CampaignPath == "" {
			return missing("campaign")
		}
	case app.StageAggregate:
		if len(cfg.ScoreDirs) == 0 && cfg.PriorPath == "" {
			return missing("scores")
		}
	case app.StageSelect:
		if cfg.MetricsPath == "" {
			return missing("metrics")
		}
	case app.StagePromote:
		switch {
		case cfg.HitsPath == "":
			return missing("hits")
		case cfg.FromDir == "":
			return missing("from")
		case cfg.ToDir == "":
			return missing("to")
		}
	case app.StagePropagate:
		switch {
		case cfg.Parent == "":
			return missing("parent")
		case cfg.FromDir == "":
			return missing("from")
		case cfg.CampaignPath == "":
			return missing("campaign")
		case cfg.OutPath == "":
			return missing("out")
		}
	}
	return nil
}
