// Package dispatch materializes job specifications as invocable command
// descriptors. It never executes anything: the descriptor list is either
// written as a line-oriented job list for an external scheduler or handed to
// the local runner.
package dispatch

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/jobspec"
)

// Command is one self-describing generator invocation. Deriving it twice
// from an unchanged spec yields identical descriptors.
type Command struct {
	Path    string
	Args    []string
	LogPath string
}

// String renders the command shell-quoted, one invocation per line of a job
// list.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Path))
	for _, arg := range c.Args {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

// Describe turns one job specification into its command descriptor. Flag
// order is fixed so descriptors are reproducible byte for byte.
func Describe(s jobspec.Spec) (Command, error) {
	name := fmt.Sprintf("%s_%d", s.Prefix, s.StartIndex)
	if s.Executable == "" {
		return Command{}, &camperr.SerializationError{Spec: name, Reason: "no generator executable"}
	}
	if len(s.Layout) == 0 {
		return Command{}, &camperr.SerializationError{Spec: name, Reason: "empty constraint layout"}
	}
	if s.Prefix == "" || s.OutDir == "" {
		return Command{}, &camperr.SerializationError{Spec: name, Reason: "no output prefix or directory"}
	}
	if s.Count <= 0 {
		return Command{}, &camperr.SerializationError{Spec: name, Reason: fmt.Sprintf("non-positive design count %d", s.Count)}
	}

	args := []string{
		"--pdb", s.Reference,
		"--mask", s.Layout.String(),
	}
	if s.Receptor != "" {
		args = append(args, "--receptor", s.Receptor, "--rec_placement", s.ReceptorPlacement)
	}
	if s.ForceAA != "" {
		args = append(args, "--force_aa", s.ForceAA)
	}
	if s.ExcludeAA != "" {
		args = append(args, "--exclude_aa", s.ExcludeAA)
	}
	if s.SeedSequence != "" {
		args = append(args,
			"--spike_fas", s.SeedSequence,
			"--spike", strconv.FormatFloat(s.SeedRetention, 'g', -1, 64),
		)
	}
	args = append(args,
		"--steps", strconv.Itoa(s.Iterations),
		"--mode", s.Mode,
		"--out", filepath.Join(s.OutDir, s.Prefix),
		"--start_num", strconv.Itoa(s.StartIndex),
		"--num", strconv.Itoa(s.Count),
	)

	return Command{
		Path:    s.Executable,
		Args:    args,
		LogPath: filepath.Join(s.OutDir, name+".job.log"),
	}, nil
}

// DescribeAll derives one descriptor per spec, order-preserving. A spec that
// cannot be serialized yields a SerializationError in the returned slice and
// its siblings proceed; commands and errors together account for every spec.
func DescribeAll(specs []jobspec.Spec) ([]Command, []error) {
	cmds := make([]Command, 0, len(specs))
	var errs []error
	for _, spec := range specs {
		cmd, err := Describe(spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, errs
}

// WriteJobList emits the scheduler-facing job list, one shell-quoted command
// per line.
func WriteJobList(w io.Writer, cmds []Command) error {
	for _, cmd := range cmds {
		if _, err := fmt.Fprintln(w, cmd.String()); err != nil {
			return fmt.Errorf("write job list: %w", err)
		}
	}
	return nil
}

// plainArg matches arguments safe to emit unquoted.
func plain(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./=:,+@%", r):
		default:
			return false
		}
	}
	return true
}

func quote(s string) string {
	if plain(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
