// SPDX-License-Identifier: Apache-2.0

package anonymiser

import (
	"context"

	"golang.org/x/sync/errgroup"

	loglib "github.com/xataio/anonymiser/pkg/log"
)

// MaskAll masks the requests on input using the given number of workers. The
// result keeps the order of the input. It returns the context error if the
// context is cancelled before all the requests are masked.
func (p *Policy) MaskAll(ctx context.Context, reqs []*Request, workers int) (_ []*Request, err error) {
	if workers <= 0 {
		workers = 1
	}

	ctx, done := p.batchMetrics.startBatch(ctx, len(reqs), workers)
	defer func() { done(err) }()

	masked := make([]*Request, len(reqs))
	indexChan := make(chan int)

	errGroup, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		errGroup.Go(func() error {
			for idx := range indexChan {
				masked[idx] = p.MaskRequest(ctx, reqs[idx])
			}
			return nil
		})
	}

	errGroup.Go(func() error {
		defer close(indexChan)
		for i := range reqs {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case indexChan <- i:
			}
		}
		return nil
	})

	if err := errGroup.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("masked batch of requests", loglib.Fields{loglib.RecordsField: len(reqs), loglib.WorkersField: workers})
	return masked, nil
}
