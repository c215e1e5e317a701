package integrationtests

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/store"
	"github.com/outpace-bio/hallcamp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loopContigs = "25-35,A63-82,15-25,A119-140,0-15"

// loopFixture fabricates a finished generation-1: campaign file, generation
// directory with three designs, and two independent scorer output
// directories keyed by design name.
func loopFixture(t *testing.T) (dir string, genDir string) {
	t.Helper()
	dir = t.TempDir()
	genDir = filepath.Join(dir, "runs", "gen1")

	s := store.New(genDir)
	testutil.FakeDesign(t, s, "rsv2_g1_0", loopContigs, "30,A63-82,21,A119-140,3")
	testutil.FakeDesign(t, s, "rsv2_g1_1", loopContigs, "28,A63-82,19,A119-140,7")
	testutil.FakeDesign(t, s, "rsv2_g1_2", loopContigs, "33,A63-82,25,A119-140,1")

	testutil.WriteFiles(t, dir, map[string]string{
		"scores/af2/predictions.csv": "name,af2_lddt,cm_rmsd\n" +
			"rsv2_g1_0,69,1.41\n" +
			"rsv2_g1_1,66,1.45\n" +
			"rsv2_g1_2,48,3.9\n",
		"scores/geometry/shape.tsv": "name\trog\tlen\n" +
			"rsv2_g1_0\t13.8\t96\n" +
			"rsv2_g1_1\t13.1\t96\n",
		"scores/rosetta/energy.jsonl": `{"name":"rsv2_g1_0","rosetta_energy":-192}` + "\n" +
			`{"name":"rsv2_g1_1","rosetta_energy":-176.5}` + "\n",
		"campaign.hcl": `
campaign "rsv_site2_g1" {
  reference  = "` + filepath.Join(dir, "inputs/5tpn.pdb") + `"
  contigs    = "` + loopContigs + `"
  force_aa   = "A63,A82"
  exclude_aa = "C"

  generator {
    executable = "/opt/rfdesign/hallucinate.sh"
  }
  output {
    prefix = "rsv2_g1"
    dir    = "` + genDir + `"
  }
  batch {
    total = 3
    size  = 3
  }

  derived "energy_per_res" {
    expr = "rosetta_energy / len"
  }

  selection {
    where = ["af2_lddt > 60", "cm_rmsd < 1.5", "rog < 16"]
  }
}
`,
		"inputs/5tpn.pdb": testutil.ReferencePDB(map[byte][2]int{'A': {63, 140}}),
	})
	return dir, genDir
}

func TestCampaignLoop(t *testing.T) {
	t.Parallel()

	dir, genDir := loopFixture(t)
	campaignPath := filepath.Join(dir, "campaign.hcl")
	metricsPath := filepath.Join(dir, "metrics.csv")
	hitsPath := filepath.Join(dir, "hits.csv")
	auditPath := filepath.Join(dir, "selection.json")
	curatedDir := filepath.Join(dir, "curated")
	childPath := filepath.Join(dir, "campaign_gen2.hcl")

	// Aggregate the three scorer outputs.
	_, err := runStage(t, "aggregate",
		"-scores", filepath.Join(dir, "scores"),
		"-campaign", campaignPath,
		"-out", metricsPath,
	)
	require.NoError(t, err)

	raw, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4, "header plus one row per design")
	assert.True(t, strings.HasPrefix(lines[0], "name,"))
	assert.Contains(t, lines[0], "energy_per_res", "derived column joined in")
	// rsv2_g1_2 was only scored by af2: its row survives with null cells.
	assert.Contains(t, string(raw), "rsv2_g1_2")

	// Select hits with the campaign's thresholds.
	_, err = runStage(t, "select",
		"-metrics", metricsPath,
		"-campaign", campaignPath,
		"-out", hitsPath,
		"-audit", auditPath,
	)
	require.NoError(t, err)

	hitsRaw, err := os.ReadFile(hitsPath)
	require.NoError(t, err)
	assert.Contains(t, string(hitsRaw), "rsv2_g1_0")
	assert.Contains(t, string(hitsRaw), "rsv2_g1_1")
	assert.NotContains(t, string(hitsRaw), "rsv2_g1_2", "low-lddt design must not survive")

	var audit struct {
		ID   string   `json:"id"`
		Hits []string `json:"hits"`
	}
	auditRaw, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(auditRaw, &audit))
	assert.NotEmpty(t, audit.ID)
	assert.Equal(t, []string{"rsv2_g1_0", "rsv2_g1_1"}, audit.Hits)

	// Promote the hits into the curated directory.
	_, err = runStage(t, "promote",
		"-hits", hitsPath,
		"-from", genDir,
		"-to", curatedDir,
	)
	require.NoError(t, err)
	for _, f := range []string{"rsv2_g1_0.pdb", "rsv2_g1_0.trb.json", "rsv2_g1_0.fas", "rsv2_g1_1.pdb", "hits.csv"} {
		assert.FileExists(t, filepath.Join(curatedDir, f))
	}
	assert.NoFileExists(t, filepath.Join(curatedDir, "rsv2_g1_2.pdb"))

	// Propagate the best hit into the generation-2 campaign.
	_, err = runStage(t, "propagate",
		"-parent", "rsv2_g1_0",
		"-from", curatedDir,
		"-campaign", campaignPath,
		"-out", childPath,
	)
	require.NoError(t, err)

	child, err := campaign.Load(childPath)
	require.NoError(t, err)
	assert.Equal(t, "30,A63-82,21,A119-140,3", child.Contigs,
		"child layout pins the parent's resolved lengths")
	assert.Equal(t, "rsv2_g1_0", child.Parent)
	assert.Equal(t, 2, child.Generation)
	assert.Equal(t, "rsv2_g2", child.Output.Prefix)
	require.NotNil(t, child.Seed)
	assert.Equal(t, store.New(curatedDir).SequencePath("rsv2_g1_0"), child.Seed.Sequence)
	assert.Equal(t, "A63,A82", child.ForceAA, "generation-1 knobs carry into the child")
}

func TestSelectStage_EmptySelection(t *testing.T) {
	t.Parallel()

	dir, _ := loopFixture(t)
	metricsPath := filepath.Join(dir, "metrics.csv")

	_, err := runStage(t, "aggregate",
		"-scores", filepath.Join(dir, "scores"),
		"-out", metricsPath,
	)
	require.NoError(t, err)

	_, err = runStage(t, "select",
		"-metrics", metricsPath,
		"-where", "af2_lddt > 80",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no designs passed selection")
}

func TestPromoteStage_MissingArtifactSkipsDesign(t *testing.T) {
	t.Parallel()

	dir, genDir := loopFixture(t)
	require.NoError(t, os.Remove(store.New(genDir).SequencePath("rsv2_g1_1")))

	testutil.WriteFiles(t, dir, map[string]string{
		"hits.csv": "name,af2_lddt\nrsv2_g1_0,69\nrsv2_g1_1,66\n",
	})
	curatedDir := filepath.Join(dir, "curated")

	logs, err := runStage(t, "promote",
		"-hits", filepath.Join(dir, "hits.csv"),
		"-from", genDir,
		"-to", curatedDir,
	)
	require.Error(t, err, "a shortfall must be visible in the exit status")
	assert.Contains(t, logs, "rsv2_g1_1", "the skipped design is reported by name")

	// The intact sibling was still promoted.
	assert.FileExists(t, filepath.Join(curatedDir, "rsv2_g1_0.pdb"))
}
