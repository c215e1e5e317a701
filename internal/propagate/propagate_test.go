package propagate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseIntent = `
campaign "rsv_site2_g1" {
  reference  = "inputs/5tpn.pdb"
  contigs    = "25-35,A63-82,15-25,A119-140,0-15"
  force_aa   = "A63,A82"
  exclude_aa = "C"

  receptor {
    structure = "inputs/receptor.pdb"
  }
  generator {
    executable = "/opt/gen.sh"
  }
  output {
    prefix = "rsv2_g1"
    dir    = "runs/gen1"
  }
  batch {
    total = 20
    size  = 5
  }
  selection {
    where = ["af2_lddt > 60"]
  }
}
`

func parentStore(t *testing.T, name, sampledMask string) store.Store {
	t.Helper()
	s := store.New(t.TempDir())
	meta := `{"name":"` + name + `","contigs":"25-35,A63-82,15-25,A119-140,0-15","sampled_mask":"` + sampledMask + `"}`
	require.NoError(t, os.WriteFile(s.MetadataPath(name), []byte(meta), 0o644))
	require.NoError(t, os.WriteFile(s.SequencePath(name), []byte(">"+name+"\nMKV\n"), 0o644))
	return s
}

func loadBase(t *testing.T) *campaign.Intent {
	t.Helper()
	in, err := campaign.Parse([]byte(baseIntent), "base.hcl")
	require.NoError(t, err)
	return in
}

func TestDerive(t *testing.T) {
	t.Parallel()

	s := parentStore(t, "rsv2_g1_12", "30,A63-82,21,A119-140,3")
	child, err := Derive("rsv2_g1_12", s, loadBase(t), Options{})
	require.NoError(t, err)

	assert.Equal(t, "30,A63-82,21,A119-140,3", child.Contigs,
		"free segments pinned to the lengths the parent resolved")
	assert.Equal(t, "rsv2_g1_12", child.Parent)
	assert.Equal(t, 2, child.Generation)
	assert.Equal(t, "rsv_site2_g2", child.Name)
	assert.Equal(t, "rsv2_g2", child.Output.Prefix)
	assert.Equal(t, filepath.Join("runs", "gen2"), child.Output.Dir)

	require.NotNil(t, child.Seed)
	assert.Equal(t, s.SequencePath("rsv2_g1_12"), child.Seed.Sequence)
	assert.InDelta(t, DefaultRetention, *child.Seed.Retention, 1e-9)

	// Generation-1 knobs carry over.
	assert.Equal(t, "A63,A82", child.ForceAA)
	assert.Equal(t, "C", child.ExcludeAA)
	require.NotNil(t, child.Receptor)
	assert.Equal(t, "inputs/receptor.pdb", child.Receptor.Structure)
	require.NotNil(t, child.Selection)
	assert.Equal(t, []string{"af2_lddt > 60"}, child.Selection.Where)
}

func TestDerive_Idempotent(t *testing.T) {
	t.Parallel()

	s := parentStore(t, "rsv2_g1_12", "30,A63-82,21,A119-140,3")
	base := loadBase(t)

	first, err := Derive("rsv2_g1_12", s, base, Options{})
	require.NoError(t, err)
	second, err := Derive("rsv2_g1_12", s, base, Options{})
	require.NoError(t, err)

	assert.Equal(t, campaign.Marshal(first), campaign.Marshal(second),
		"same parent metadata must produce byte-identical child intents")
}

func TestDerive_DoesNotMutateBase(t *testing.T) {
	t.Parallel()

	s := parentStore(t, "rsv2_g1_12", "30,A63-82,21,A119-140,3")
	base := loadBase(t)
	before := campaign.Marshal(base)

	_, err := Derive("rsv2_g1_12", s, base, Options{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(string(before), string(campaign.Marshal(base))))
}

func TestDerive_RetentionOverride(t *testing.T) {
	t.Parallel()

	s := parentStore(t, "rsv2_g1_12", "30,A63-82,21,A119-140,3")
	child, err := Derive("rsv2_g1_12", s, loadBase(t), Options{Retention: 0.75})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, *child.Seed.Retention, 1e-9)

	_, err = Derive("rsv2_g1_12", s, loadBase(t), Options{Retention: 1.5})
	var confErr *camperr.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestDerive_MalformedMetadata(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		sampledMask string
	}{
		{"unresolved free segment", "15-25,A63-82,21,A119-140,3"},
		{"fixed segments disagree with intent", "30,A63-99,21,A119-140,3"},
		{"missing fixed segment", "30,A63-82,21,3"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := parentStore(t, "rsv2_g1_12", tc.sampledMask)
			_, err := Derive("rsv2_g1_12", s, loadBase(t), Options{})
			var metaErr *camperr.MalformedMetadataError
			require.ErrorAs(t, err, &metaErr)
			assert.Equal(t, "rsv2_g1_12", metaErr.Design)
		})
	}
}

func TestDerive_AbsentRealizedLayout(t *testing.T) {
	t.Parallel()

	s := store.New(t.TempDir())
	require.NoError(t, os.WriteFile(s.MetadataPath("d_0"), []byte(`{"name":"d_0"}`), 0o644))

	_, err := Derive("d_0", s, loadBase(t), Options{})
	var metaErr *camperr.MalformedMetadataError
	require.ErrorAs(t, err, &metaErr)
}

func TestDerive_MissingMetadata(t *testing.T) {
	t.Parallel()

	s := store.New(t.TempDir())
	_, err := Derive("ghost_0", s, loadBase(t), Options{})
	var missErr *camperr.MissingArtifactError
	require.ErrorAs(t, err, &missErr)
	assert.Equal(t, "ghost_0", missErr.Design)
}
