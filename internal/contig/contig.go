// Package contig models the constraint layout of a hallucinated design: an
// ordered partition of the output sequence into fixed segments (copied from a
// reference structure) and free segments (lengths chosen by the generator).
//
// The wire format is the comma-joined segment list used on generator command
// lines and inside run metadata, e.g. "25-35,A63-82,15-25,A119-140,0-15".
// A realized layout is the same list with every free range resolved to an
// exact length: "30,A63-82,21,A119-140,3".
package contig

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one span of the layout. A fixed segment carries the reference
// chain identifier and an inclusive residue range; a free segment carries an
// inclusive length range (exact when Min == Max) and no chain.
type Segment struct {
	Chain byte // 0 for free segments
	Min   int  // fixed: first residue; free: minimum length
	Max   int  // fixed: last residue; free: maximum length
}

// Fixed reports whether the segment is copied from the reference structure.
func (s Segment) Fixed() bool { return s.Chain != 0 }

// Exact reports whether a free segment has been resolved to a single length.
// Fixed segments are always exact.
func (s Segment) Exact() bool { return s.Fixed() || s.Min == s.Max }

// String renders the segment in wire format.
func (s Segment) String() string {
	if s.Fixed() {
		return fmt.Sprintf("%c%d-%d", s.Chain, s.Min, s.Max)
	}
	if s.Min == s.Max {
		return strconv.Itoa(s.Min)
	}
	return fmt.Sprintf("%d-%d", s.Min, s.Max)
}

// Layout is the ordered sequence of segments partitioning a design.
type Layout []Segment

// Parse decodes a wire-format layout string. It accepts both range form
// ("15-25") and exact form ("30") for free segments, and "A63-82" or a
// single-residue "A63" for fixed segments.
func Parse(s string) (Layout, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty layout")
	}
	parts := strings.Split(s, ",")
	layout := make(Layout, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", part, err)
		}
		layout = append(layout, seg)
	}
	return layout, nil
}

func parseSegment(tok string) (Segment, error) {
	if tok == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}
	var seg Segment
	body := tok
	if c := tok[0]; (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		seg.Chain = c
		body = tok[1:]
		if body == "" {
			return Segment{}, fmt.Errorf("chain %q without residue range", string(c))
		}
	}
	lo, hi, err := parseRange(body)
	if err != nil {
		return Segment{}, err
	}
	seg.Min, seg.Max = lo, hi
	if seg.Min > seg.Max {
		return Segment{}, fmt.Errorf("inverted range %d-%d", seg.Min, seg.Max)
	}
	if !seg.Fixed() && seg.Min < 0 {
		return Segment{}, fmt.Errorf("negative length %d", seg.Min)
	}
	if seg.Fixed() && seg.Min < 1 {
		return Segment{}, fmt.Errorf("residue numbers start at 1, got %d", seg.Min)
	}
	return seg, nil
}

func parseRange(body string) (int, int, error) {
	if lo, hi, ok := strings.Cut(body, "-"); ok {
		a, err := strconv.Atoi(lo)
		if err != nil {
			return 0, 0, fmt.Errorf("bad range start %q", lo)
		}
		b, err := strconv.Atoi(hi)
		if err != nil {
			return 0, 0, fmt.Errorf("bad range end %q", hi)
		}
		return a, b, nil
	}
	n, err := strconv.Atoi(body)
	if err != nil {
		return 0, 0, fmt.Errorf("bad value %q", body)
	}
	return n, n, nil
}

// String renders the layout in wire format. Parse(l.String()) round-trips.
func (l Layout) String() string {
	parts := make([]string, len(l))
	for i, seg := range l {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ",")
}

// Fixed returns the ordered subsequence of fixed segments.
func (l Layout) Fixed() Layout {
	var fixed Layout
	for _, seg := range l {
		if seg.Fixed() {
			fixed = append(fixed, seg)
		}
	}
	return fixed
}

// Realized reports whether every free segment has an exact length.
func (l Layout) Realized() bool {
	for _, seg := range l {
		if !seg.Exact() {
			return false
		}
	}
	return true
}

// Span returns the inclusive range of total sequence lengths the layout can
// produce. For a realized layout min == max.
func (l Layout) Span() (min, max int) {
	for _, seg := range l {
		if seg.Fixed() {
			n := seg.Max - seg.Min + 1
			min += n
			max += n
			continue
		}
		min += seg.Min
		max += seg.Max
	}
	return min, max
}

// SameFixed reports whether two layouts carry the same fixed segments in the
// same order. Reference ranges are invariant across generations, so this is
// the consistency check between a realized layout and its originating intent.
func (l Layout) SameFixed(other Layout) bool {
	a, b := l.Fixed(), other.Fixed()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
