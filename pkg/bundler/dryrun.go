package bundler

import (
	"context"
	"sync"

	"github.com/arthur-debert/jiek/pkg/logging"
)

// DryRun records jobs without building anything. It is safe for
// concurrent use.
type DryRun struct {
	mu   sync.Mutex
	jobs []Job
}

// NewDryRun creates an empty DryRun bundler
func NewDryRun() *DryRun {
	return &DryRun{}
}

// Bundle implements Bundler
func (d *DryRun) Bundle(ctx context.Context, job Job) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.jobs = append(d.jobs, job)
	d.mu.Unlock()

	result := &Result{Package: job.Package}
	for _, t := range job.Targets {
		result.Files = append(result.Files, t.Outfile)
	}
	logger := logging.GetLogger("bundler.dryrun")
	logger.Debug().
		Str("package", job.Package).
		Int("targets", len(job.Targets)).
		Msg("Skipping bundle in dry run")
	return result, nil
}

// Jobs returns the recorded jobs in arrival order
func (d *DryRun) Jobs() []Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Job(nil), d.jobs...)
}
