package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/avendel/chunkscribe/internal/ffmpeg"
	"github.com/avendel/chunkscribe/internal/format"
)

// tempDirPattern names the temp directories that hold chunk files.
// CleanupChunks refuses to RemoveAll a directory without this marker.
const tempDirPattern = "chunkscribe-*"

// maxChunkBytes is the transcription API's upload limit. A chunk over it
// will be rejected upstream, so the splitter warns as soon as it appears.
const maxChunkBytes = 25 * 1024 * 1024

// WarnFunc is a callback for warning messages during splitting and cleanup.
// Set to nil to suppress warnings, or provide a custom handler.
type WarnFunc func(msg string)

// defaultWarnFunc writes warnings to stderr.
func defaultWarnFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// Splitter cuts a recording into fixed-duration chunks re-encoded for
// speech transcription (mono, 16kHz, 64kbps audio).
//
// Splitting is best-effort: a chunk whose extraction fails is warned about
// and dropped, and its siblings are still produced. Only an empty result is
// an error.
type Splitter struct {
	ffmpegPath string
	warn       WarnFunc

	cmd     commandRunner
	tempDir tempDirCreator
	statter fileStatter
	files   fileRemover
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithSplitterCommandRunner sets the command runner for the Splitter.
func WithSplitterCommandRunner(r commandRunner) SplitterOption {
	return func(s *Splitter) { s.cmd = r }
}

// WithSplitterTempDir sets the temp directory creator for the Splitter.
func WithSplitterTempDir(t tempDirCreator) SplitterOption {
	return func(s *Splitter) { s.tempDir = t }
}

// WithSplitterStatter sets the file statter for the Splitter.
func WithSplitterStatter(st fileStatter) SplitterOption {
	return func(s *Splitter) { s.statter = st }
}

// WithSplitterFileRemover sets the file remover for the Splitter.
func WithSplitterFileRemover(f fileRemover) SplitterOption {
	return func(s *Splitter) { s.files = f }
}

// WithSplitterWarnFunc sets a callback for warning messages.
func WithSplitterWarnFunc(fn WarnFunc) SplitterOption {
	return func(s *Splitter) { s.warn = fn }
}

// NewSplitter creates a Splitter bound to the given ffmpeg binary.
func NewSplitter(ffmpegPath string, opts ...SplitterOption) (*Splitter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	s := &Splitter{
		ffmpegPath: ffmpegPath,
		warn:       defaultWarnFunc,
		cmd:        executorRunner{exec: ffmpeg.NewExecutor()},
		tempDir:    osTempDirCreator{},
		statter:    osFileStatter{},
		files:      osFileRemover{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NumChunks returns ceil(total / chunkDuration).
func NumChunks(total, chunkDuration time.Duration) int {
	if total <= 0 || chunkDuration <= 0 {
		return 0
	}
	return int((total + chunkDuration - 1) / chunkDuration)
}

// Split cuts the recording at path into NumChunks(total, chunkDuration)
// chunks of chunkDuration each (the last one covers the remainder), written
// to outDir. If outDir is empty a fresh temp directory is created; either
// way the chunk files belong to the caller, who must release them with
// CleanupChunks when the job is done.
//
// Chunk i covers [i*chunkDuration, min((i+1)*chunkDuration, total)). Files
// are named chunk_000.mp3, chunk_001.mp3, ... so a partial split is easy to
// inspect on disk.
func (s *Splitter) Split(ctx context.Context, path string, total, chunkDuration time.Duration, outDir string) ([]ChunkSpec, error) {
	numChunks := NumChunks(total, chunkDuration)
	if numChunks == 0 {
		return nil, fmt.Errorf("%w: non-positive duration (total %v, chunk %v)", ErrSplitFailed, total, chunkDuration)
	}

	if outDir == "" {
		dir, err := s.tempDir.MkdirTemp("", tempDirPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		outDir = dir
	}

	chunks := make([]ChunkSpec, 0, numChunks)
	for i := 0; i < numChunks; i++ {
		// Return early on cancellation instead of burning ffmpeg runs.
		if err := ctx.Err(); err != nil {
			s.cleanupPartial(chunks, outDir)
			return nil, err
		}

		start := time.Duration(i) * chunkDuration
		planned := min(chunkDuration, total-start)
		chunkPath := filepath.Join(outDir, fmt.Sprintf("chunk_%03d.mp3", i))

		if err := s.extractChunk(ctx, path, chunkPath, start, chunkDuration); err != nil {
			if s.warn != nil {
				s.warn(fmt.Sprintf("Warning: failed to extract chunk %d: %v", i, err))
			}
			continue
		}

		var size int64
		if info, err := s.statter.Stat(chunkPath); err == nil {
			size = info.Size()
		}

		spec := ChunkSpec{
			Index:       i,
			Path:        chunkPath,
			StartOffset: start,
			Duration:    planned,
			Size:        size,
		}
		if size > maxChunkBytes && s.warn != nil {
			s.warn(fmt.Sprintf("Warning: %s exceeds the upload limit; transcription may reject it", spec))
		}
		chunks = append(chunks, spec)
	}

	if len(chunks) == 0 {
		s.cleanupPartial(chunks, outDir)
		return nil, fmt.Errorf("%w: no chunks created successfully", ErrSplitFailed)
	}

	return chunks, nil
}

// cleanupPartial removes whatever a failed split left behind.
func (s *Splitter) cleanupPartial(chunks []ChunkSpec, outDir string) {
	for _, c := range chunks {
		_ = s.files.Remove(c.Path)
	}
	if isManagedTempDir(outDir) {
		_ = s.files.RemoveAll(outDir)
	}
}

// extractChunk extracts one chunk via ffmpeg, re-encoded for transcription.
// Mono 16kHz matches what the transcription service resamples to internally,
// and 64kbps keeps chunk files well under the upload limit.
func (s *Splitter) extractChunk(ctx context.Context, srcPath, chunkPath string, start, dur time.Duration) error {
	args := []string{
		"-y",
		"-i", srcPath,
		"-ss", formatSeconds(start),
		"-t", formatSeconds(dur),
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "64k",
		"-loglevel", "error",
		chunkPath,
	}

	output, err := s.cmd.CombinedOutput(ctx, s.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("ffmpeg: %v\nOutput: %s", err, string(output))
	}
	return nil
}

// formatSeconds formats a duration as fractional seconds for ffmpeg -ss/-t.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// ValidateCoverage checks that the chunk list covers [0, total) contiguously:
// indices 0..N-1 with no gaps, each chunk starting where the previous one
// ended. The splitter upholds this by construction unless chunks were
// dropped; a dropped chunk shows up here as a gap, which the caller treats
// as a degraded-but-usable split, while any other violation is a bug.
//
// Returns the indices of missing chunks (gaps) and an error wrapping
// ErrSplitFailed for structural violations (out-of-order or overlapping
// chunks, coverage past the end).
func ValidateCoverage(chunks []ChunkSpec, total, chunkDuration time.Duration) (missing []int, err error) {
	want := NumChunks(total, chunkDuration)
	seen := make(map[int]bool, len(chunks))

	prev := -1
	for _, c := range chunks {
		if c.Index <= prev {
			return nil, fmt.Errorf("%w: chunk indices out of order (%d after %d)", ErrSplitFailed, c.Index, prev)
		}
		if c.Index >= want {
			return nil, fmt.Errorf("%w: chunk %d beyond expected range 0..%d", ErrSplitFailed, c.Index, want-1)
		}
		if wantStart := time.Duration(c.Index) * chunkDuration; c.StartOffset != wantStart {
			return nil, fmt.Errorf("%w: chunk %d starts at %s, want %s",
				ErrSplitFailed, c.Index, format.Duration(c.StartOffset), format.Duration(wantStart))
		}
		if end := c.StartOffset + c.Duration; end > total {
			return nil, fmt.Errorf("%w: chunk %d ends at %s, past total %s",
				ErrSplitFailed, c.Index, format.Duration(end), format.Duration(total))
		}
		seen[c.Index] = true
		prev = c.Index
	}

	for i := 0; i < want; i++ {
		if !seen[i] {
			missing = append(missing, i)
		}
	}
	return missing, nil
}
