// Package promote copies selected designs' artifact sets into a curated
// directory for manual inspection and as propagation input. Copies are
// non-destructive and idempotent; the originals stay where the generation
// wrote them.
package promote

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/metrics"
	"github.com/outpace-bio/hallcamp/internal/store"
)

// FrozenTableName is the filename of the filtered metrics table written next
// to the promoted artifacts.
const FrozenTableName = "hits.csv"

// Result reports which designs were promoted and which failed, per name. A
// missing artifact skips only the design that owns it; siblings proceed.
type Result struct {
	Promoted []string
	Failed   map[string]error
}

// Err collapses the per-design failures into one error, or nil when every
// hit was promoted.
func (r *Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d designs failed promotion", len(r.Failed), len(r.Failed)+len(r.Promoted))
}

// Promote copies every hit's artifact set from the generation store into
// toDir, preserving name-based addressing, and freezes the filtered metrics
// table alongside. The structure, metadata and sequence artifacts are
// required; the execution log is copied when present.
func Promote(hitTable *metrics.Table, from store.Store, toDir string) (*Result, error) {
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return nil, fmt.Errorf("create curated directory: %w", err)
	}
	res := &Result{Failed: make(map[string]error)}
	for _, row := range hitTable.Rows() {
		if err := promoteOne(row.Name, from, toDir); err != nil {
			res.Failed[row.Name] = err
			continue
		}
		res.Promoted = append(res.Promoted, row.Name)
	}
	frozen := hitTable.Filter(func(row *metrics.Row) bool {
		_, failed := res.Failed[row.Name]
		return !failed
	})
	if err := metrics.WriteCSVFile(filepath.Join(toDir, FrozenTableName), frozen); err != nil {
		return nil, err
	}
	return res, nil
}

func promoteOne(name string, from store.Store, toDir string) error {
	required := []string{
		from.StructurePath(name),
		from.MetadataPath(name),
		from.SequencePath(name),
	}
	// Verify the full artifact set before copying anything, so a half-present
	// design never leaves a partial copy behind.
	for _, src := range required {
		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				return &camperr.MissingArtifactError{Design: name, Path: src}
			}
			return fmt.Errorf("stat %s: %w", src, err)
		}
	}
	for _, src := range required {
		if err := copyFile(src, filepath.Join(toDir, filepath.Base(src))); err != nil {
			return err
		}
	}
	if log := from.LogPath(name); exists(log) {
		if err := copyFile(log, filepath.Join(toDir, filepath.Base(log))); err != nil {
			return err
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return out.Close()
}
