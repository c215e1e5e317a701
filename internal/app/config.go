package app

import "errors"

// Pipeline stages selectable on the command line.
const (
	StagePlan      = "plan"
	StageRun       = "run"
	StageAggregate = "aggregate"
	StageSelect    = "select"
	StagePromote   = "promote"
	StagePropagate = "propagate"
)

// Config holds everything an App run needs. There is no ambient global
// state: each stage receives its storage roots and collaborator paths from
// here.
type Config struct {
	Stage string

	LogFormat string
	LogLevel  string

	// CampaignPath names the HCL intent file (plan, run, propagate; optional
	// for aggregate and select, where it contributes derived columns and
	// selection defaults).
	CampaignPath string

	// OutPath is the stage's primary output file. Empty means stdout where
	// the stage supports it.
	OutPath string

	// StartIndex offsets the first design index (plan, run).
	StartIndex int

	// Workers and StatusPort configure the local runner (run).
	Workers    int
	StatusPort int

	// ScoreDirs and PriorPath feed the aggregator.
	ScoreDirs []string
	PriorPath string

	// MetricsPath is the aggregated table consumed by select.
	MetricsPath string

	// Where overrides the campaign's selection predicates; MinHits overrides
	// its relaxation floor; AuditPath persists the selection audit record.
	Where     []string
	MinHits   int
	AuditPath string

	// HitsPath, FromDir and ToDir drive promotion.
	HitsPath string
	FromDir  string
	ToDir    string

	// Parent and Spike drive propagation.
	Parent string
	Spike  float64
}

// NewConfig validates the stage-independent fields.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Stage {
	case StagePlan, StageRun, StageAggregate, StageSelect, StagePromote, StagePropagate:
	default:
		return nil, errors.New("a pipeline stage is required")
	}
	return &cfg, nil
}
