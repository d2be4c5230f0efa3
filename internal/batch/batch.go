// Package batch runs one independent job per input file on a bounded
// worker pool. A failing file never stops its siblings; every file ends
// up with exactly one Result.
package batch

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/grindlemire/go-unrpyc/internal/debug"
	"github.com/grindlemire/go-unrpyc/internal/log"
)

// DefaultMinParallel is the smallest batch worth spinning up a pool for.
const DefaultMinParallel = 5

// Status is the outcome of one file.
type Status int

const (
	Success Status = iota
	Failed
	// Skipped files were not attempted, e.g. because the output exists.
	Skipped
	// Malformed files are not archives the decoder understands.
	Malformed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// File is one input.
type File struct {
	Path string
	Size int64
}

// Result is the outcome of a job.
type Result struct {
	File   File
	Status Status
	Err    error
}

// Config bounds the pool.
type Config struct {
	// Processes is the number of concurrent workers. Values below 2 run
	// the batch sequentially.
	Processes int
	// MinParallel is the file count below which the batch runs
	// sequentially. Zero means DefaultMinParallel.
	MinParallel int
}

// Summary counts the results of a batch.
type Summary struct {
	Success   int
	Failed    int
	Skipped   int
	Malformed int
	// Results are in processing order.
	Results []Result
}

// Total is the number of files in the batch.
func (s Summary) Total() int {
	return s.Success + s.Failed + s.Skipped + s.Malformed
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Decompilation of %d script %s successful", s.Success, plural(s.Success, "file"))
	if s.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", s.Failed)
	}
	if s.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", s.Skipped)
	}
	if s.Malformed > 0 {
		fmt.Fprintf(&b, ", %d malformed", s.Malformed)
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Run calls work once per file and collects the results. Parallel runs
// start the largest files first; sequential runs go in path order, the
// order the engine loads scripts in. Files not started before ctx is
// done are reported as Skipped.
func Run(ctx context.Context, files []File, cfg Config, work func(File) Result) Summary {
	workers := Workers(cfg, len(files))

	ordered := slices.Clone(files)
	if workers > 1 {
		slices.SortStableFunc(ordered, func(a, b File) int {
			return cmp.Compare(b.Size, a.Size)
		})
	} else {
		slices.SortStableFunc(ordered, func(a, b File) int {
			return strings.Compare(a.Path, b.Path)
		})
	}

	debug.Log("batch: %d files, %d workers", len(ordered), workers)

	results := make([]Result, len(ordered))
	if workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, f := range ordered {
			g.Go(func() error {
				results[i] = runOne(gctx, f, work)
				return nil
			})
		}
		// workers never return errors
		_ = g.Wait()
	} else {
		for i, f := range ordered {
			results[i] = runOne(ctx, f, work)
		}
	}

	s := Summary{Results: results}
	for _, r := range results {
		switch r.Status {
		case Success:
			s.Success++
		case Skipped:
			s.Skipped++
		case Malformed:
			s.Malformed++
		default:
			s.Failed++
		}
	}
	return s
}

func runOne(ctx context.Context, f File, work func(File) Result) (r Result) {
	if err := ctx.Err(); err != nil {
		return Result{File: f, Status: Skipped, Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			log.Batch("%s: panic: %v", f.Path, p)
			r = Result{File: f, Status: Failed, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	r = work(f)
	r.File = f
	return r
}

// Workers is the pool size Run uses for n files.
func Workers(cfg Config, n int) int {
	minParallel := cfg.MinParallel
	if minParallel == 0 {
		minParallel = DefaultMinParallel
	}
	if cfg.Processes < 2 || n < minParallel {
		return 1
	}

	workers := min(cfg.Processes, n)
	if limit := maxWorkers(); limit > 0 && workers > limit {
		workers = limit
	}
	return max(workers, 1)
}
