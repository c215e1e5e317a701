package contig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		in     string
		want   Layout
		render string
	}{
		{
			name: "range layout with fixed and free segments",
			in:   "25-35,A63-82,15-25,A119-140,0-15",
			want: Layout{
				{Min: 25, Max: 35},
				{Chain: 'A', Min: 63, Max: 82},
				{Min: 15, Max: 25},
				{Chain: 'A', Min: 119, Max: 140},
				{Min: 0, Max: 15},
			},
			render: "25-35,A63-82,15-25,A119-140,0-15",
		},
		{
			name: "realized layout with exact lengths",
			in:   "30,A63-82,21,A119-140,3",
			want: Layout{
				{Min: 30, Max: 30},
				{Chain: 'A', Min: 63, Max: 82},
				{Min: 21, Max: 21},
				{Chain: 'A', Min: 119, Max: 140},
				{Min: 3, Max: 3},
			},
			render: "30,A63-82,21,A119-140,3",
		},
		{
			name:   "single residue fixed segment normalizes to a range",
			in:     "5,B12,5",
			want:   Layout{{Min: 5, Max: 5}, {Chain: 'B', Min: 12, Max: 12}, {Min: 5, Max: 5}},
			render: "5,B12-12,5",
		},
		{
			name:   "whitespace around segments is tolerated",
			in:     " 10-20 , A1-4 ",
			want:   Layout{{Min: 10, Max: 20}, {Chain: 'A', Min: 1, Max: 4}},
			render: "10-20,A1-4",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.render, got.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		in          string
		errContains string
	}{
		{name: "empty string", in: "", errContains: "empty layout"},
		{name: "empty segment", in: "10-20,,A1-4", errContains: "empty segment"},
		{name: "inverted free range", in: "25-15", errContains: "inverted range"},
		{name: "inverted fixed range", in: "A82-63", errContains: "inverted range"},
		{name: "negative free length", in: "-5-10", errContains: "bad"},
		{name: "chain without range", in: "A", errContains: "without residue range"},
		{name: "garbage token", in: "10-x", errContains: "bad range end"},
		{name: "fixed residue zero", in: "A0-4", errContains: "residue numbers start at 1"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tc.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLayout_Realized(t *testing.T) {
	t.Parallel()

	ranged, err := Parse("25-35,A63-82,0-15")
	require.NoError(t, err)
	assert.False(t, ranged.Realized())

	exact, err := Parse("30,A63-82,3")
	require.NoError(t, err)
	assert.True(t, exact.Realized())

	// Fixed-only layouts are trivially realized.
	fixedOnly, err := Parse("A63-82")
	require.NoError(t, err)
	assert.True(t, fixedOnly.Realized())
}

func TestLayout_Span(t *testing.T) {
	t.Parallel()

	l, err := Parse("25-35,A63-82,15-25,A119-140,0-15")
	require.NoError(t, err)
	lo, hi := l.Span()
	// Fixed spans contribute 20 + 22 residues; free ranges 25..35, 15..25, 0..15.
	assert.Equal(t, 20+22+25+15+0, lo)
	assert.Equal(t, 20+22+35+25+15, hi)

	realized, err := Parse("30,A63-82,21,A119-140,3")
	require.NoError(t, err)
	lo, hi = realized.Span()
	assert.Equal(t, lo, hi)
	assert.Equal(t, 30+20+21+22+3, lo)
}

func TestLayout_SameFixed(t *testing.T) {
	t.Parallel()

	intent, err := Parse("25-35,A63-82,15-25,A119-140,0-15")
	require.NoError(t, err)
	realized, err := Parse("30,A63-82,21,A119-140,3")
	require.NoError(t, err)

	assert.True(t, realized.SameFixed(intent))
	assert.True(t, intent.SameFixed(realized))

	shifted, err := Parse("30,A63-82,21,A119-141,3")
	require.NoError(t, err)
	assert.False(t, shifted.SameFixed(intent))

	dropped, err := Parse("30,A63-82,24")
	require.NoError(t, err)
	assert.False(t, dropped.SameFixed(intent))
}
