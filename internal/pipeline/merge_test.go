package pipeline_test

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/avendel/chunkscribe/internal/media"
	"github.com/avendel/chunkscribe/internal/pipeline"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	chunks := []media.ChunkSpec{
		{Index: 0, StartOffset: 0, Duration: 10 * time.Minute},
		{Index: 1, StartOffset: 10 * time.Minute, Duration: 10 * time.Minute},
		{Index: 2, StartOffset: 20 * time.Minute, Duration: 5 * time.Minute},
	}

	t.Run("shifts segments and renumbers IDs", func(t *testing.T) {
		t.Parallel()

		outcomes := []pipeline.ChunkOutcome{
			{Index: 0, Text: "first part", WordCount: 2, Segments: []transcribe.Segment{
				{ID: 0, Start: 0, End: 4, Text: "first part"},
			}},
			{Index: 1, Text: "second part", WordCount: 2, Segments: []transcribe.Segment{
				{ID: 0, Start: 1.5, End: 6, Text: "second part"},
			}},
			{Index: 2, Text: "the end", WordCount: 2, Segments: []transcribe.Segment{
				{ID: 0, Start: 0, End: 2, Text: "the"},
				{ID: 1, Start: 2, End: 3, Text: "end"},
			}},
		}

		transcript, segments, wordCount, failures := pipeline.Merge(chunks, outcomes)

		if want := "first part second part the end"; transcript != want {
			t.Errorf("transcript = %q, want %q", transcript, want)
		}
		if wordCount != 6 {
			t.Errorf("wordCount = %d, want 6", wordCount)
		}
		if len(failures) != 0 {
			t.Errorf("failures = %v, want none", failures)
		}
		if len(segments) != 4 {
			t.Fatalf("len(segments) = %d, want 4", len(segments))
		}
		for i, seg := range segments {
			if seg.ID != i {
				t.Errorf("segments[%d].ID = %d, want %d", i, seg.ID, i)
			}
		}
		if got, want := segments[1].Start, 600+1.5; got != want {
			t.Errorf("segments[1].Start = %v, want %v", got, want)
		}
		if got, want := segments[3].End, 1200+3.0; got != want {
			t.Errorf("segments[3].End = %v, want %v", got, want)
		}
	})

	t.Run("skips failed chunks and reports them", func(t *testing.T) {
		t.Parallel()

		failErr := errors.New("timed out")
		outcomes := []pipeline.ChunkOutcome{
			{Index: 0, Text: "alpha", WordCount: 1},
			{Index: 1, Attempts: 3, Err: failErr},
			{Index: 2, Text: "omega", WordCount: 1},
		}

		transcript, segments, wordCount, failures := pipeline.Merge(chunks, outcomes)

		if want := "alpha omega"; transcript != want {
			t.Errorf("transcript = %q, want %q", transcript, want)
		}
		if wordCount != 2 {
			t.Errorf("wordCount = %d, want 2", wordCount)
		}
		if len(segments) != 0 {
			t.Errorf("segments = %v, want none", segments)
		}
		if len(failures) != 1 {
			t.Fatalf("failures = %v, want one entry", failures)
		}
		if !strings.Contains(failures[0], "chunk 1") || !strings.Contains(failures[0], "timed out") {
			t.Errorf("failures[0] = %q, want chunk index and cause", failures[0])
		}
	})

	t.Run("empty chunk text does not pad the transcript", func(t *testing.T) {
		t.Parallel()

		outcomes := []pipeline.ChunkOutcome{
			{Index: 0, Text: "speech"},
			{Index: 1, Text: ""}, // silence
			{Index: 2, Text: "more speech"},
		}

		transcript, _, _, _ := pipeline.Merge(chunks, outcomes)
		if want := "speech more speech"; transcript != want {
			t.Errorf("transcript = %q, want %q", transcript, want)
		}
	})
}

// TestMerge_StartsNonDecreasing checks the ordering property on randomized
// chunk sets: however segments fall inside their chunks, and whichever
// chunks fail, merged segment starts never go backwards and IDs stay
// sequential. Seeded for reproducibility.
func TestMerge_StartsNonDecreasing(t *testing.T) {
	t.Parallel()

	const chunkDur = 10 * time.Minute
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		numChunks := 1 + rng.Intn(12)
		chunks := make([]media.ChunkSpec, numChunks)
		outcomes := make([]pipeline.ChunkOutcome, numChunks)

		for i := 0; i < numChunks; i++ {
			chunks[i] = media.ChunkSpec{
				Index:       i,
				StartOffset: time.Duration(i) * chunkDur,
				Duration:    chunkDur,
			}

			if rng.Float64() < 0.2 {
				outcomes[i] = pipeline.ChunkOutcome{Index: i, Err: errors.New("flaky upstream")}
				continue
			}

			// Random chunk-local segments, non-decreasing within the chunk.
			numSegs := rng.Intn(6)
			segs := make([]transcribe.Segment, 0, numSegs)
			cursor := 0.0
			for s := 0; s < numSegs; s++ {
				start := cursor + rng.Float64()*30
				end := start + rng.Float64()*30
				segs = append(segs, transcribe.Segment{ID: s, Start: start, End: end, Text: "x"})
				cursor = start
			}
			outcomes[i] = pipeline.ChunkOutcome{Index: i, Text: "x", WordCount: 1, Segments: segs}
		}

		_, segments, _, _ := pipeline.Merge(chunks, outcomes)

		prev := -1.0
		for j, seg := range segments {
			if seg.ID != j {
				t.Fatalf("trial %d: segments[%d].ID = %d, want %d", trial, j, seg.ID, j)
			}
			if seg.Start < prev {
				t.Fatalf("trial %d: segments[%d].Start = %v goes backwards (prev %v)",
					trial, j, seg.Start, prev)
			}
			prev = seg.Start
		}
	}
}

func TestConfigNormalize(t *testing.T) {
	t.Parallel()

	t.Run("zero value takes defaults", func(t *testing.T) {
		t.Parallel()

		var cfg pipeline.Config
		cfg.Normalize()

		if cfg.SizeThreshold != pipeline.DefaultSizeThreshold {
			t.Errorf("SizeThreshold = %d, want %d", cfg.SizeThreshold, pipeline.DefaultSizeThreshold)
		}
		if cfg.ChunkDuration != pipeline.DefaultChunkDuration {
			t.Errorf("ChunkDuration = %v, want %v", cfg.ChunkDuration, pipeline.DefaultChunkDuration)
		}
		if cfg.MaxParallel != pipeline.DefaultMaxParallel {
			t.Errorf("MaxParallel = %d, want %d", cfg.MaxParallel, pipeline.DefaultMaxParallel)
		}
		if cfg.MaxAttempts != pipeline.DefaultMaxAttempts {
			t.Errorf("MaxAttempts = %d, want %d", cfg.MaxAttempts, pipeline.DefaultMaxAttempts)
		}
		if cfg.BackoffBase != pipeline.DefaultBackoffBase {
			t.Errorf("BackoffBase = %v, want %v", cfg.BackoffBase, pipeline.DefaultBackoffBase)
		}
		if cfg.BackoffCap != pipeline.DefaultBackoffCap {
			t.Errorf("BackoffCap = %v, want %v", cfg.BackoffCap, pipeline.DefaultBackoffCap)
		}
	})

	t.Run("threshold clamped to upload limit", func(t *testing.T) {
		t.Parallel()

		cfg := pipeline.Config{SizeThreshold: 100 * 1024 * 1024}
		cfg.Normalize()
		if cfg.SizeThreshold != transcribe.MaxUploadBytes {
			t.Errorf("SizeThreshold = %d, want %d", cfg.SizeThreshold, transcribe.MaxUploadBytes)
		}
	})
}
