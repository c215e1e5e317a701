package campaign

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Generations form a forest: every intent records its generation index and,
// past generation 1, the parent design it was bred from. The helpers below
// advance the naming conventions when the Propagator writes a child intent.

var (
	prefixGenRegex = regexp.MustCompile(`_g(\d+)$`)
	dirGenRegex    = regexp.MustCompile(`^gen(\d+)$`)
)

// NextPrefix advances an output prefix to a child generation: a trailing
// `_g<N>` marker is replaced, otherwise one is appended.
//
//	NextPrefix("rsv2_g1", 2) == "rsv2_g2"
//	NextPrefix("pdl1", 2)    == "pdl1_g2"
func NextPrefix(prefix string, generation int) string {
	if prefixGenRegex.MatchString(prefix) {
		return prefixGenRegex.ReplaceAllString(prefix, fmt.Sprintf("_g%d", generation))
	}
	return fmt.Sprintf("%s_g%d", prefix, generation)
}

// NextDir advances a generation directory: a final `gen<N>` path element is
// replaced, otherwise a sibling `<dir>_gen<N>` is used.
//
//	NextDir("runs/gen1", 2)   == "runs/gen2"
//	NextDir("runs/batchA", 2) == "runs/batchA_gen2"
func NextDir(dir string, generation int) string {
	base := filepath.Base(dir)
	if dirGenRegex.MatchString(base) {
		return filepath.Join(filepath.Dir(dir), fmt.Sprintf("gen%d", generation))
	}
	return fmt.Sprintf("%s_gen%d", dir, generation)
}
