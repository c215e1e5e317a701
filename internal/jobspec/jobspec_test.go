package jobspec

import (
	"strconv"
	"strings"
	"testing"

	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/pdbref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIntent(t *testing.T, total, size int) *campaign.Intent {
	t.Helper()
	src := `
campaign "test" {
  reference = "inputs/5tpn.pdb"
  contigs   = "25-35,A63-82,15-25,A119-140,0-15"

  generator {
    executable = "/opt/gen.sh"
  }
  output {
    prefix = "test_g1"
    dir    = "runs/gen1"
  }
  batch {
    total = ` + strconv.Itoa(total) + `
    size  = ` + strconv.Itoa(size) + `
  }
}
`
	in, err := campaign.Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	return in
}

func TestBuild_PartitionsIndexRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		total, size int
		wantStarts  []int
		wantCounts  []int
	}{
		{"even split", 20, 5, []int{0, 5, 10, 15}, []int{5, 5, 5, 5}},
		{"short tail", 17, 5, []int{0, 5, 10, 15}, []int{5, 5, 5, 2}},
		{"single batch", 3, 10, []int{0}, []int{3}},
		{"one per batch", 3, 1, []int{0, 1, 2}, []int{1, 1, 1}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			specs, err := Build(testIntent(t, tc.total, tc.size), nil, 0)
			require.NoError(t, err)
			require.Len(t, specs, len(tc.wantStarts))

			covered := make(map[int]bool)
			for i, spec := range specs {
				assert.Equal(t, tc.wantStarts[i], spec.StartIndex)
				assert.Equal(t, tc.wantCounts[i], spec.Count)
				for idx := spec.StartIndex; idx < spec.StartIndex+spec.Count; idx++ {
					assert.False(t, covered[idx], "index %d covered twice", idx)
					covered[idx] = true
				}
			}
			assert.Len(t, covered, tc.total, "union must cover [0, total)")
			for idx := 0; idx < tc.total; idx++ {
				assert.True(t, covered[idx], "index %d not covered", idx)
			}
		})
	}
}

func TestBuild_StartOffset(t *testing.T) {
	t.Parallel()

	specs, err := Build(testIntent(t, 10, 4), nil, 100)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, 100, specs[0].StartIndex)
	assert.Equal(t, 104, specs[1].StartIndex)
	assert.Equal(t, 108, specs[2].StartIndex)
	assert.Equal(t, 2, specs[2].Count)
}

func TestBuild_CarriesIntentFields(t *testing.T) {
	t.Parallel()

	src := `
campaign "full" {
  reference  = "inputs/5tpn.pdb"
  contigs    = "25-35,A63-82,0-15"
  force_aa   = "A63,A82"
  exclude_aa = "C"

  receptor {
    structure = "inputs/receptor.pdb"
  }
  seed {
    sequence  = "gen0/parent_12.fas"
    retention = 0.8
  }
  generator {
    executable = "/opt/gen.sh"
    iterations = 300
    mode       = "mcmc"
  }
  output {
    prefix = "full_g1"
    dir    = "runs/gen1"
  }
  batch {
    total = 2
    size  = 2
  }
}
`
	in, err := campaign.Parse([]byte(src), "full.hcl")
	require.NoError(t, err)

	specs, err := Build(in, nil, 0)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	spec := specs[0]
	assert.Equal(t, "/opt/gen.sh", spec.Executable)
	assert.Equal(t, "inputs/5tpn.pdb", spec.Reference)
	assert.Equal(t, "25-35,A63-82,0-15", spec.Layout.String())
	assert.Equal(t, "inputs/receptor.pdb", spec.Receptor)
	assert.Equal(t, "second", spec.ReceptorPlacement)
	assert.Equal(t, "A63,A82", spec.ForceAA)
	assert.Equal(t, "C", spec.ExcludeAA)
	assert.Equal(t, "gen0/parent_12.fas", spec.SeedSequence)
	assert.InDelta(t, 0.8, spec.SeedRetention, 1e-9)
	assert.Equal(t, 300, spec.Iterations)
	assert.Equal(t, "mcmc", spec.Mode)
	assert.Equal(t, "full_g1", spec.Prefix)
	assert.Equal(t, "runs/gen1", spec.OutDir)
}

func TestBuild_RejectsFixedSegmentOutsideReference(t *testing.T) {
	t.Parallel()

	// Reference with chain A residues 63-82 only.
	var b strings.Builder
	for num := 63; num <= 82; num++ {
		writeAtom(&b, 'A', num)
	}
	ref, err := pdbref.Read(strings.NewReader(b.String()))
	require.NoError(t, err)

	in := testIntent(t, 4, 2) // contigs reference A119-140 too
	_, err = Build(in, ref, 0)
	require.Error(t, err)
	var confErr *camperr.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Error(), "A119")
}

func TestBuild_NegativeStart(t *testing.T) {
	t.Parallel()

	_, err := Build(testIntent(t, 4, 2), nil, -1)
	var confErr *camperr.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func writeAtom(b *strings.Builder, chain byte, num int) {
	// Minimal fixed-column ATOM record: chain at byte 21, residue at 22-25.
	line := []byte("ATOM      1  CA  GLY ?????                                        ")
	line[21] = chain
	digits := []byte{' ', ' ', ' ', ' '}
	for i := 3; num > 0 && i >= 0; i-- {
		digits[i] = byte('0' + num%10)
		num /= 10
	}
	copy(line[22:26], digits)
	b.Write(line)
	b.WriteByte('\n')
}
