// Package testutil holds shared fixtures for the pipeline tests: a
// thread-safe log buffer, temp-dir campaign files and fabricated generation
// artifacts standing in for a real generator run.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/outpace-bio/hallcamp/internal/store"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes the given relative-path -> content map under dir,
// creating subdirectories as needed, and returns dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// ReferencePDB renders a minimal fixed-column PDB with the given residues
// per chain, enough for the reference index to accept fixed segments.
func ReferencePDB(residues map[byte][2]int) string {
	var b strings.Builder
	serial := 1
	for _, chain := range sortedChains(residues) {
		span := residues[chain]
		for num := span[0]; num <= span[1]; num++ {
			fmt.Fprintf(&b, "ATOM  %5d  CA  GLY %c%4d      11.104  13.207   2.100  1.00  0.00           C\n",
				serial, chain, num)
			serial++
		}
	}
	b.WriteString("END\n")
	return b.String()
}

func sortedChains(residues map[byte][2]int) []byte {
	chains := make([]byte, 0, len(residues))
	for chain := range residues {
		chains = append(chains, chain)
	}
	for i := range chains {
		for j := i + 1; j < len(chains); j++ {
			if chains[j] < chains[i] {
				chains[i], chains[j] = chains[j], chains[i]
			}
		}
	}
	return chains
}

// FakeDesign fabricates one design's artifact set in the generation store,
// as the external generator would have left it.
func FakeDesign(t *testing.T, s store.Store, name, contigs, sampledMask string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(s.Root, 0o755))
	meta := map[string]any{
		"name":         name,
		"contigs":      contigs,
		"sampled_mask": sampledMask,
		"settings":     map[string]any{"steps": 600, "mode": "gradient"},
	}
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.MetadataPath(name), raw, 0o644))
	require.NoError(t, os.WriteFile(s.StructurePath(name), []byte("ATOM\nEND\n"), 0o644))
	require.NoError(t, os.WriteFile(s.SequencePath(name), []byte(">"+name+"\nMKVLAAGITG\n"), 0o644))
}
