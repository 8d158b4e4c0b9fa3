package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/avendel/chunkscribe/internal/apierr"
	"github.com/avendel/chunkscribe/internal/media"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

// dispatch transcribes every chunk with at most Config.MaxParallel requests
// in flight. Each chunk's outcome lands in its own pre-sized slot, so the
// workers share no mutable state beyond the progress counter. A failing
// chunk does not abort the others; only context cancellation does.
func (p *Pipeline) dispatch(ctx context.Context, chunks []media.ChunkSpec, opts transcribe.Options) ([]ChunkOutcome, error) {
	outcomes := make([]ChunkOutcome, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.cfg.MaxParallel)

	var mu sync.Mutex
	completed := 0

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			outcomes[i] = p.transcribeChunk(ctx, chunk, opts)
			if err := outcomes[i].Err; err != nil && ctx.Err() != nil {
				// Cancellation is fatal for the whole job; chunk-level
				// API failures are not.
				return ctx.Err()
			}

			// The callback runs under the mutex so ProgressFunc
			// implementations never see concurrent calls.
			mu.Lock()
			completed++
			p.reportProgress(StateDispatching, completed, len(chunks))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// transcribeChunk runs the retry loop for a single chunk and converts the
// final result into a ChunkOutcome.
func (p *Pipeline) transcribeChunk(ctx context.Context, chunk media.ChunkSpec, opts transcribe.Options) ChunkOutcome {
	attempts := 0
	res, err := apierr.RetryWithBackoff(ctx, p.cfg.retryConfig(), func() (transcribe.Result, error) {
		attempts++
		return p.transcriber.Transcribe(ctx, chunk.Path, opts)
	}, apierr.Retryable)
	if err != nil {
		return failureOutcome(chunk.Index, attempts, err)
	}
	return successOutcome(chunk.Index, attempts, res)
}
