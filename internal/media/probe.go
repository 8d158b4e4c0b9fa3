package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/avendel/chunkscribe/internal/ffmpeg"
)

// Prober determines the total duration of a media file using ffprobe.
type Prober struct {
	ffprobePath string

	cmd     commandRunner
	statter fileStatter
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberCommandRunner sets the command runner for the Prober.
func WithProberCommandRunner(r commandRunner) ProberOption {
	return func(p *Prober) { p.cmd = r }
}

// WithProberStatter sets the file statter for the Prober.
func WithProberStatter(s fileStatter) ProberOption {
	return func(p *Prober) { p.statter = s }
}

// NewProber creates a Prober bound to the given ffprobe binary.
func NewProber(ffprobePath string, opts ...ProberOption) (*Prober, error) {
	if ffprobePath == "" {
		return nil, fmt.Errorf("ffprobePath cannot be empty: %w", ffmpeg.ErrProbeNotFound)
	}

	p := &Prober{
		ffprobePath: ffprobePath,
		cmd:         executorRunner{exec: ffmpeg.NewExecutor()},
		statter:     osFileStatter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ffprobeFormat mirrors the format section of ffprobe's JSON output.
type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the total duration of the file at path.
// Failures wrap ErrProbeFailed and abort the job; a recording whose duration
// cannot be read is not worth retrying.
func (p *Prober) Probe(ctx context.Context, path string) (time.Duration, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	}

	output, err := p.cmd.CombinedOutput(ctx, p.ffprobePath, args)
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v\nOutput: %s", ErrProbeFailed, err, string(output))
	}

	var parsed ffprobeFormat
	if err := json.Unmarshal(output, &parsed); err != nil {
		return 0, fmt.Errorf("%w: cannot parse ffprobe output: %v", ErrProbeFailed, err)
	}
	if parsed.Format.Duration == "" {
		return 0, fmt.Errorf("%w: no duration in ffprobe output", ErrProbeFailed)
	}

	seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad duration %q: %v", ErrProbeFailed, parsed.Format.Duration, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %v", ErrProbeFailed, seconds)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// Inspect stats the file and probes its duration, returning an immutable
// MediaFile description.
func (p *Prober) Inspect(ctx context.Context, path string) (MediaFile, error) {
	info, err := p.statter.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return MediaFile{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return MediaFile{}, fmt.Errorf("cannot access input file: %w", err)
	}

	duration, err := p.Probe(ctx, path)
	if err != nil {
		return MediaFile{}, err
	}

	return MediaFile{Path: path, Size: info.Size(), Duration: duration}, nil
}

// Stat returns only the byte size of the file at path. The dispatcher uses
// this for its routing decision without paying for a probe.
func (p *Prober) Stat(path string) (int64, error) {
	info, err := p.statter.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return 0, fmt.Errorf("cannot access input file: %w", err)
	}
	return info.Size(), nil
}
