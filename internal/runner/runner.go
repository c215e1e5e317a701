// Package runner executes a generation's command descriptors locally with a
// worker pool. It is the in-process stand-in for the external scheduler:
// useful for small campaigns and workstations, identical descriptors.
//
// Jobs never communicate: each writes only to its own uniquely-indexed
// output names, so any worker count is race-free without locking. One failed
// job is recorded and its siblings keep running.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/outpace-bio/hallcamp/internal/ctxlog"
	"github.com/outpace-bio/hallcamp/internal/dispatch"
)

// Run executes the commands with the given number of workers, writing each
// job's combined output to its declared log target. Context cancellation
// stops dispatching new jobs and kills running ones. The returned error
// names every failed job; a nil error means the whole generation succeeded.
func Run(ctx context.Context, cmds []dispatch.Command, workers int, tracker *Tracker) error {
	logger := ctxlog.FromContext(ctx)
	if workers < 1 {
		workers = 1
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	tracker.start(len(cmds))

	jobs := make(chan dispatch.Command)
	var mu sync.Mutex
	failed := make(map[string]error)

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("workerID", workerID)
			workerLogger.Debug("Worker started.")
			for cmd := range jobs {
				if ctx.Err() != nil {
					mu.Lock()
					failed[cmd.LogPath] = ctx.Err()
					mu.Unlock()
					tracker.fail()
					continue
				}
				workerLogger.Debug("Worker picked up job.", "log", cmd.LogPath)
				if err := runOne(ctx, cmd); err != nil {
					workerLogger.Error("Job failed.", "log", cmd.LogPath, "error", err)
					mu.Lock()
					failed[cmd.LogPath] = err
					mu.Unlock()
					tracker.fail()
					continue
				}
				workerLogger.Debug("Job finished.")
				tracker.done()
			}
			workerLogger.Debug("Worker finished.")
		}(id)
	}

	for _, cmd := range cmds {
		jobs <- cmd
	}
	close(jobs)
	wg.Wait()
	tracker.finish()

	if len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for name := range failed {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("%d of %d jobs failed: %v", len(failed), len(cmds), names)
	}
	return nil
}

// runOne executes a single descriptor, streaming stdout and stderr into the
// job's log file.
func runOne(ctx context.Context, cmd dispatch.Command) error {
	if err := os.MkdirAll(filepath.Dir(cmd.LogPath), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.Create(cmd.LogPath)
	if err != nil {
		return fmt.Errorf("create job log: %w", err)
	}
	defer logFile.Close()

	proc := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	proc.Stdout = logFile
	proc.Stderr = logFile
	if err := proc.Run(); err != nil {
		return fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	return nil
}
