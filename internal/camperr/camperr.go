// Package camperr defines the error taxonomy shared by every pipeline stage.
//
// Campaign-level errors (ConfigurationError, AggregationError) abort a stage:
// continuing past them would corrupt downstream generations. Per-design errors
// (MissingArtifactError, MalformedMetadataError) are isolated and reported by
// name so one corrupt design cannot block its siblings.
package camperr

import "fmt"

// ConfigurationError reports an invalid campaign intent, caught before any
// job is dispatched.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid campaign configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid campaign configuration: %s: %s", e.Field, e.Reason)
}

// SerializationError reports a job specification that cannot be expressed as
// a command line. It is fatal for that spec only; sibling specs proceed.
type SerializationError struct {
	Spec   string
	Reason string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize job spec %q: %s", e.Spec, e.Reason)
}

// AggregationError reports a column-type conflict between scorer outputs.
// The aggregated table cannot be trusted partially, so this aborts the stage.
type AggregationError struct {
	Design string
	Column string
	Have   string
	Want   string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("metric type conflict for design %q column %q: %s vs %s",
		e.Design, e.Column, e.Have, e.Want)
}

// EmptySelectionError reports that zero rows survived selection even after
// the relaxation budget was exhausted. It makes the shortfall explicit so an
// operator can loosen thresholds or enlarge the generation.
type EmptySelectionError struct {
	Predicates []string
	Rounds     int
}

func (e *EmptySelectionError) Error() string {
	if e.Rounds > 0 {
		return fmt.Sprintf("no designs passed selection after %d relaxation rounds (final predicates: %v)",
			e.Rounds, e.Predicates)
	}
	return fmt.Sprintf("no designs passed selection (predicates: %v)", e.Predicates)
}

// MissingArtifactError names the specific file absent from a design's
// artifact set. The affected design is skipped; siblings proceed.
type MissingArtifactError struct {
	Design string
	Path   string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("design %q is missing artifact %s", e.Design, e.Path)
}

// MalformedMetadataError reports a run-metadata record whose realized layout
// is absent or inconsistent with the fixed segments of the original intent.
type MalformedMetadataError struct {
	Design string
	Reason string
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("malformed run metadata for design %q: %s", e.Design, e.Reason)
}
