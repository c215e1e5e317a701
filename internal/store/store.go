// Package store defines the on-disk addressing convention for a generation's
// design artifacts. Every design owns four files under its generation
// directory, all derived from the design name: the structure (.pdb), the run
// metadata (.trb.json), the designed sequence (.fas) and an optional
// execution log (.log). Records are write-once; the controller only ever
// reads them.
package store

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// Artifact file suffixes, appended to the design name.
const (
	StructureExt = ".pdb"
	MetadataExt  = ".trb.json"
	SequenceExt  = ".fas"
	LogExt       = ".log"
)

// Store addresses one generation directory by design name.
type Store struct {
	Root string
}

// New returns a Store rooted at the given generation directory.
func New(root string) Store { return Store{Root: root} }

func (s Store) path(name, ext string) string { return filepath.Join(s.Root, name+ext) }

// StructurePath returns the path of the design's structure artifact.
func (s Store) StructurePath(name string) string { return s.path(name, StructureExt) }

// MetadataPath returns the path of the design's run-metadata artifact.
func (s Store) MetadataPath(name string) string { return s.path(name, MetadataExt) }

// SequencePath returns the path of the design's sequence artifact.
func (s Store) SequencePath(name string) string { return s.path(name, SequenceExt) }

// LogPath returns the path of the design's execution log.
func (s Store) LogPath(name string) string { return s.path(name, LogExt) }

// nameRegex matches `<prefix>_<index>`; the prefix itself may contain
// underscores, so the index is the final all-digit component.
var nameRegex = regexp.MustCompile(`^(.+)_(\d+)$`)

// Name composes a design name from an output prefix and job index.
func Name(prefix string, index int) string {
	return fmt.Sprintf("%s_%d", prefix, index)
}

// ParseName splits a design name into its output prefix and numeric index.
func ParseName(name string) (prefix string, index int, err error) {
	m := nameRegex.FindStringSubmatch(name)
	if m == nil {
		return "", 0, fmt.Errorf("invalid design name %q: want <prefix>_<index>", name)
	}
	index, err = strconv.Atoi(m[2])
	if err != nil {
		// Unreachable due to regex \d+.
		return "", 0, fmt.Errorf("invalid design index in %q: %w", name, err)
	}
	return m[1], index, nil
}
