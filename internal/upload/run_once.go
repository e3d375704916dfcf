package upload

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"pagesmith/internal/logging"
	"pagesmith/internal/records"
)

// Summary aggregates one RunOnce pass.
type Summary struct {
	Total    int
	Uploaded int
	Reused   int
	Failed   int
	// Unrecorded counts files uploaded whose record could not be saved.
	Unrecorded int
	Outcomes   []Outcome
	Failures   []error
}

// Err joins every failure, or returns nil when all files succeeded.
func (s Summary) Err() error {
	return errors.Join(s.Failures...)
}

// RunOnce processes every matching inbox file with at most Workers uploads
// in flight and returns once all of them finished. A failing file never
// stops the others.
func (p *Pipeline) RunOnce(ctx context.Context) (Summary, error) {
	paths, err := p.Pending()
	if err != nil {
		return Summary{}, err
	}

	type result struct {
		outcome Outcome
		err     error
	}
	results := make([]result, len(paths))

	var group errgroup.Group
	group.SetLimit(p.opts.Workers)
	for i, path := range paths {
		group.Go(func() error {
			outcome, err := p.Process(ctx, path)
			results[i] = result{outcome: outcome, err: err}
			return nil
		})
	}
	_ = group.Wait()

	summary := Summary{Total: len(paths)}
	for _, res := range results {
		if res.outcome.Skipped {
			continue
		}
		summary.Outcomes = append(summary.Outcomes, res.outcome)
		var failure *Failure
		switch {
		case errors.As(res.err, &failure):
			summary.Failed++
			summary.Failures = append(summary.Failures, res.err)
			continue
		case errors.Is(res.err, records.ErrRecordWrite):
			summary.Unrecorded++
			summary.Failures = append(summary.Failures, res.err)
		}
		if res.outcome.Reused {
			summary.Reused++
		} else {
			summary.Uploaded++
		}
	}

	p.logger.Info("inbox processed",
		logging.String(logging.FieldEventType, "upload_batch_complete"),
		logging.Int("total", summary.Total),
		logging.Int("uploaded", summary.Uploaded),
		logging.Int("reused", summary.Reused),
		logging.Int("failed", summary.Failed))
	return summary, summary.Err()
}
