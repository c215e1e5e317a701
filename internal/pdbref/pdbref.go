// Package pdbref indexes the residue numbering of a reference PDB structure.
//
// The campaign controller never interprets geometry; it only needs to know
// which (chain, residue) positions exist so that fixed segments of a
// constraint layout can be validated before any job is dispatched.
package pdbref

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/outpace-bio/hallcamp/internal/contig"
)

// Index records, per chain, the set of residue sequence numbers present in a
// reference structure.
type Index struct {
	chains map[byte]map[int]struct{}
}

// Load reads ATOM records from a PDB file and builds the residue index.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference structure: %w", err)
	}
	defer f.Close()
	idx, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read reference structure %s: %w", path, err)
	}
	return idx, nil
}

// Read parses PDB-format ATOM records from r. Non-ATOM lines are ignored;
// insertion codes are not modeled.
func Read(r io.Reader) (*Index, error) {
	idx := &Index{chains: make(map[byte]map[int]struct{})}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		rec := sc.Text()
		if !strings.HasPrefix(rec, "ATOM") {
			continue
		}
		// PDB fixed columns: chain ID at byte 21, residue number at 22-25.
		if len(rec) < 26 {
			return nil, fmt.Errorf("line %d: truncated ATOM record", line)
		}
		chain := rec[21]
		num, err := strconv.Atoi(strings.TrimSpace(rec[22:26]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad residue number %q", line, rec[22:26])
		}
		set, ok := idx.chains[chain]
		if !ok {
			set = make(map[int]struct{})
			idx.chains[chain] = set
		}
		set[num] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(idx.chains) == 0 {
		return nil, fmt.Errorf("no ATOM records found")
	}
	return idx, nil
}

// Has reports whether the given chain contains the residue number.
func (idx *Index) Has(chain byte, num int) bool {
	set, ok := idx.chains[chain]
	if !ok {
		return false
	}
	_, ok = set[num]
	return ok
}

// Covers verifies that every residue of every fixed segment in the layout
// exists in the reference numbering. It returns the first offending segment
// description, or "" when the layout is fully covered.
func (idx *Index) Covers(layout contig.Layout) string {
	for _, seg := range layout.Fixed() {
		for num := seg.Min; num <= seg.Max; num++ {
			if !idx.Has(seg.Chain, num) {
				return fmt.Sprintf("%s (residue %c%d not in reference)", seg.String(), seg.Chain, num)
			}
		}
	}
	return ""
}
