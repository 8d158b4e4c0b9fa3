// Package pipeline orchestrates a transcription job end to end: it routes
// small inputs to a single direct call, and splits large ones into chunks
// that are transcribed concurrently, retried on transient failures, and
// merged back onto the source time axis. Chunk files are always released
// before a job returns, on success and on every failure path.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/avendel/chunkscribe/internal/format"
	"github.com/avendel/chunkscribe/internal/media"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

// Prober supplies the size and duration of an input file.
// *media.Prober is the production implementation.
type Prober interface {
	Stat(path string) (int64, error)
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// Splitter cuts an input file into chunk files.
// *media.Splitter is the production implementation.
type Splitter interface {
	Split(ctx context.Context, path string, total, chunkDuration time.Duration, outDir string) ([]media.ChunkSpec, error)
}

var (
	_ Prober   = (*media.Prober)(nil)
	_ Splitter = (*media.Splitter)(nil)
)

// Pipeline runs transcription jobs. Safe for concurrent use once built.
type Pipeline struct {
	prober      Prober
	splitter    Splitter
	transcriber transcribe.Transcriber
	cfg         Config

	warn     media.WarnFunc
	progress ProgressFunc
	chunkDir string
	cleanup  func(chunks []media.ChunkSpec, warn media.WarnFunc)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWarnFunc sets the callback for non-fatal warnings (dropped chunks,
// cleanup failures). Defaults to stderr.
func WithWarnFunc(fn media.WarnFunc) Option {
	return func(p *Pipeline) { p.warn = fn }
}

// WithProgress sets a callback invoked on state transitions and per-chunk
// completion during dispatch.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithChunkDir writes chunk files into dir instead of a fresh temp
// directory. The directory itself is preserved on cleanup; only the chunk
// files inside it are removed.
func WithChunkDir(dir string) Option {
	return func(p *Pipeline) { p.chunkDir = dir }
}

// New creates a Pipeline. cfg fields left zero take their defaults.
func New(prober Prober, splitter Splitter, transcriber transcribe.Transcriber, cfg Config, opts ...Option) *Pipeline {
	cfg.normalize()

	p := &Pipeline{
		prober:      prober,
		splitter:    splitter,
		transcriber: transcriber,
		cfg:         cfg,
		cleanup:     media.CleanupChunks,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) reportProgress(state State, completed, total int) {
	if p.progress != nil {
		p.progress(state, completed, total)
	}
}

func (p *Pipeline) warnf(format string, args ...any) {
	if p.warn != nil {
		p.warn(fmt.Sprintf(format, args...))
	}
}

// Run transcribes the file at audioPath and returns the merged result.
// Files at or under Config.SizeThreshold are sent as one direct call;
// larger files go through the split/dispatch/merge path.
func (p *Pipeline) Run(ctx context.Context, audioPath string, opts transcribe.Options) (*Result, error) {
	p.reportProgress(StatePlanned, 0, 0)

	size, err := p.prober.Stat(audioPath)
	if err != nil {
		p.reportProgress(StateFailed, 0, 0)
		return nil, err
	}

	if size <= p.cfg.SizeThreshold {
		return p.runSingle(ctx, audioPath, opts)
	}
	return p.runChunked(ctx, audioPath, opts)
}

// runSingle transcribes the whole file in one retried call. A failure here
// is the job's failure; there is no partial result to salvage.
func (p *Pipeline) runSingle(ctx context.Context, audioPath string, opts transcribe.Options) (*Result, error) {
	p.reportProgress(StateDispatching, 0, 1)

	out := p.transcribeChunk(ctx, media.ChunkSpec{Index: 0, Path: audioPath}, opts)
	if !out.Succeeded() {
		p.reportProgress(StateFailed, 0, 0)
		return nil, out.Err
	}
	p.reportProgress(StateDispatching, 1, 1)

	res := &Result{
		SourceFile: audioPath,
		Transcript: out.Text,
		Segments:   out.Segments,
		Duration:   out.Duration,
		WordCount:  out.WordCount,
		Stats: Stats{
			TotalChunks:      1,
			SuccessfulChunks: 1,
			Method:           MethodSingle,
			ChunkMinutes:     p.cfg.ChunkDuration.Minutes(),
		},
	}
	// Older API responses omit the duration field; the last segment's end is
	// the next best estimate.
	if res.Duration == 0 {
		if n := len(out.Segments); n > 0 {
			res.Duration = out.Segments[n-1].End
		}
	}

	p.reportProgress(StateDone, 0, 0)
	return res, nil
}

// runChunked is the split/dispatch/merge path for large files.
func (p *Pipeline) runChunked(ctx context.Context, audioPath string, opts transcribe.Options) (*Result, error) {
	p.reportProgress(StateSplitting, 0, 0)

	total, err := p.prober.Probe(ctx, audioPath)
	if err != nil {
		p.reportProgress(StateFailed, 0, 0)
		return nil, err
	}

	chunks, err := p.splitter.Split(ctx, audioPath, total, p.cfg.ChunkDuration, p.chunkDir)
	if err != nil {
		p.reportProgress(StateFailed, 0, 0)
		return nil, err
	}

	// Chunk files are released on every exit path from here on.
	cleaned := false
	doCleanup := func() {
		if cleaned {
			return
		}
		cleaned = true
		p.reportProgress(StateCleanup, 0, 0)
		p.cleanup(chunks, p.warn)
	}
	defer doCleanup()

	missing, err := media.ValidateCoverage(chunks, total, p.cfg.ChunkDuration)
	if err != nil {
		doCleanup()
		p.reportProgress(StateFailed, 0, 0)
		return nil, err
	}
	for _, idx := range missing {
		start := time.Duration(idx) * p.cfg.ChunkDuration
		p.warnf("Warning: chunk %d missing from split; ~%s of audio starting at %s will be absent",
			idx, format.DurationHuman(p.cfg.ChunkDuration), format.Duration(start))
	}

	p.reportProgress(StateDispatching, 0, len(chunks))
	outcomes, err := p.dispatch(ctx, chunks, opts)
	if err != nil {
		doCleanup()
		p.reportProgress(StateFailed, 0, 0)
		return nil, err
	}

	succeeded := 0
	for _, out := range outcomes {
		if out.Succeeded() {
			succeeded++
		}
	}
	if succeeded == 0 {
		doCleanup()
		p.reportProgress(StateFailed, 0, 0)
		return nil, fmt.Errorf("%w: %d chunks attempted", ErrAllChunksFailed, len(chunks))
	}

	p.reportProgress(StateMerging, 0, 0)
	transcript, segments, wordCount, failures := merge(chunks, outcomes)

	res := &Result{
		SourceFile: audioPath,
		Transcript: transcript,
		Segments:   segments,
		Duration:   total.Seconds(),
		WordCount:  wordCount,
		Failures:   failures,
		Stats: Stats{
			TotalChunks:      len(chunks) + len(missing),
			SuccessfulChunks: succeeded,
			FailedChunks:     len(chunks) - succeeded + len(missing),
			Method:           MethodParallel,
			ChunkMinutes:     p.cfg.ChunkDuration.Minutes(),
		},
	}

	doCleanup()
	p.reportProgress(StateDone, 0, 0)
	return res, nil
}
