// Package batch runs many image comparisons concurrently.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/go/sklog"
	"go.skia.org/webshot/go/timer"
	"go.skia.org/webshot/visualdiff/go/comparison"
)

// Job is a single comparison of a baseline image against an actual image.
type Job struct {
	// Name identifies the job in reports and errors.
	Name         string
	BaselinePath string
	ActualPath   string
	Options      comparison.Options
}

// Outcome is what happened to a Job. Exactly one of Result and Err is
// meaningful.
type Outcome struct {
	Job    Job
	Result comparison.Result
	Err    error
}

// Summary collects the outcomes of a Run, in the same order as the jobs.
type Summary struct {
	Outcomes []Outcome

	Similar   int
	Different int
	Failed    int

	// Err combines the errors of all failed jobs, or is nil if none failed.
	Err error
}

// AllSimilar returns true if every job ran and found its images similar.
func (s Summary) AllSimilar() bool {
	return s.Failed == 0 && s.Different == 0
}

// compareFn is the comparison each job runs. Replaced in tests.
type compareFn func(baselinePath, actualPath string, opts comparison.Options) (comparison.Result, error)

// Run executes jobs with at most parallelism comparisons in flight. A
// parallelism below 1 means runtime.GOMAXPROCS(0).
//
// A failing job does not stop the others. Once ctx is done, jobs that have
// not started yet fail with the context's error. Run itself only returns an
// error if the jobs cannot be run at all, e.g. if two of them would write
// the same diff image.
//
// Decoded images are cached while the batch runs, so that an image used by
// several jobs is only read once.
func Run(ctx context.Context, jobs []Job, parallelism int) (Summary, error) {
	parallelism = effectiveParallelism(parallelism)
	cache, err := newImageCache(imageCacheSizePerWorker * parallelism)
	if err != nil {
		return Summary{}, skerr.Wrap(err)
	}
	return run(ctx, jobs, parallelism, cache.compareFiles)
}

// imageCacheSizePerWorker is how many decoded images are kept per concurrent
// comparison. Each comparison needs two.
const imageCacheSizePerWorker = 4

func effectiveParallelism(parallelism int) int {
	if parallelism < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return parallelism
}

func run(ctx context.Context, jobs []Job, parallelism int, compare compareFn) (Summary, error) {
	if err := checkDiffPaths(jobs); err != nil {
		return Summary{}, skerr.Wrap(err)
	}
	parallelism = effectiveParallelism(parallelism)
	sklog.Infof("Running %d comparisons, %d at a time", len(jobs), parallelism)
	defer timer.New(fmt.Sprintf("Batch of %d comparisons", len(jobs))).Stop()

	outcomes := make([]Outcome, len(jobs))
	var done int32
	var egroup errgroup.Group
	egroup.SetLimit(parallelism)
	for i, job := range jobs {
		i, job := i, job
		egroup.Go(func() error {
			outcomes[i] = runOne(ctx, job, compare)
			sklog.Debugf("Finished %q (%d/%d)", job.Name, atomic.AddInt32(&done, 1), len(jobs))
			return nil
		})
	}
	// The goroutines never return errors, failures are kept per job.
	_ = egroup.Wait()

	s := Summary{Outcomes: outcomes}
	var errs *multierror.Error
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
			errs = multierror.Append(errs, o.Err)
		case o.Result.Similar:
			s.Similar++
		default:
			s.Different++
		}
	}
	s.Err = errs.ErrorOrNil()
	sklog.Infof("Batch finished: %d similar, %d different, %d failed", s.Similar, s.Different, s.Failed)
	return s, nil
}

func runOne(ctx context.Context, job Job, compare compareFn) Outcome {
	ret := Outcome{Job: job}
	if err := ctx.Err(); err != nil {
		ret.Err = skerr.Wrapf(err, "comparison %q not started", job.Name)
		return ret
	}
	res, err := compare(job.BaselinePath, job.ActualPath, job.Options)
	if err != nil {
		sklog.Warningf("Comparison %q failed: %s", job.Name, err)
		ret.Err = skerr.Wrapf(err, "comparison %q", job.Name)
		return ret
	}
	ret.Result = res
	return ret
}

// checkDiffPaths returns an error if two jobs would write the same diff image,
// since comparisons do not coordinate their writes.
func checkDiffPaths(jobs []Job) error {
	seen := map[string]string{}
	for _, job := range jobs {
		if !job.Options.GenerateDiffImage {
			continue
		}
		p := filepath.Clean(job.Options.DiffOutputPath)
		if other, ok := seen[p]; ok {
			return skerr.Fmt("comparisons %q and %q both write the diff image %s", other, job.Name, p)
		}
		seen[p] = job.Name
	}
	return nil
}
