package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/contig"
)

// RunMeta is the generator's per-design run-metadata record. It is a
// self-describing JSON document; fields beyond the ones modeled here are
// ignored on read and preserved on disk untouched.
type RunMeta struct {
	Name string `json:"name"`

	// Contigs is the range layout the job was asked to satisfy.
	Contigs string `json:"contigs"`

	// SampledMask is the realized layout: the same segment sequence with
	// every free range resolved to the exact length the generator chose.
	SampledMask string `json:"sampled_mask"`

	// Settings echoes the generator invocation (arbitrary nesting).
	Settings map[string]any `json:"settings,omitempty"`

	// Trajectory carries search bookkeeping such as per-step losses.
	Trajectory map[string]any `json:"trajectory,omitempty"`
}

// ReadMeta loads and decodes a design's run-metadata artifact.
func ReadMeta(s Store, name string) (*RunMeta, error) {
	path := s.MetadataPath(name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &camperr.MissingArtifactError{Design: name, Path: path}
		}
		return nil, fmt.Errorf("read run metadata: %w", err)
	}
	var meta RunMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, &camperr.MalformedMetadataError{Design: name, Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if meta.Name == "" {
		meta.Name = name
	}
	return &meta, nil
}

// Realized parses the record's realized constraint layout. The layout must
// be present and fully resolved, otherwise the record is malformed.
func (m *RunMeta) Realized() (contig.Layout, error) {
	if m.SampledMask == "" {
		return nil, &camperr.MalformedMetadataError{Design: m.Name, Reason: "realized layout (sampled_mask) is absent"}
	}
	layout, err := contig.Parse(m.SampledMask)
	if err != nil {
		return nil, &camperr.MalformedMetadataError{Design: m.Name, Reason: fmt.Sprintf("realized layout unparsable: %v", err)}
	}
	if !layout.Realized() {
		return nil, &camperr.MalformedMetadataError{Design: m.Name, Reason: fmt.Sprintf("layout %q still contains unresolved ranges", m.SampledMask)}
	}
	return layout, nil
}
