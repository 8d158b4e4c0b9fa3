package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avendel/chunkscribe/internal/config"
	"github.com/avendel/chunkscribe/internal/ffmpeg"
	"github.com/avendel/chunkscribe/internal/format"
	"github.com/avendel/chunkscribe/internal/pipeline"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

// supportedFormats lists media formats accepted by the transcription API.
// Source: https://platform.openai.com/docs/guides/speech-to-text
var supportedFormats = map[string]bool{
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".ogg":  true,
	".wav":  true,
	".webm": true,
}

// supportedFormatsList returns a sorted, comma-separated list for error
// messages. Sorted for deterministic output.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// clampParallel constrains the request concurrency to [1, MaxRecommendedParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > pipeline.MaxRecommendedParallel {
		return pipeline.MaxRecommendedParallel
	}
	return n
}

// deriveOutputPath converts a media file path to a result path.
// Example: "talk.mp3" -> "talk.json" (or "talk.txt" with --text).
func deriveOutputPath(inputPath string, asText bool) string {
	ext := filepath.Ext(inputPath)
	if asText {
		return strings.TrimSuffix(inputPath, ext) + ".txt"
	}
	return strings.TrimSuffix(inputPath, ext) + ".json"
}

// transcribeFlags holds the flag values of the transcribe command.
type transcribeFlags struct {
	output      string
	asText      bool
	chunkDur    time.Duration
	parallel    int
	retries     int
	thresholdMB int
	backoff     time.Duration
	prompt      string
	language    string
}

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env) *cobra.Command {
	var flags transcribeFlags

	cmd := &cobra.Command{
		Use:   "transcribe <media-file>",
		Short: "Transcribe an audio or video file",
		Long: `Transcribe an audio or video file using OpenAI's Whisper API.

Files over the size threshold are split into fixed-duration chunks,
transcribed concurrently, and merged back into one transcript with
timestamps on the original time axis. Smaller files are sent directly.

The result is written as JSON (transcript, segments, statistics), or as
plain text with --text.

Supported formats: flac, m4a, mp3, mp4, mpeg, mpga, ogg, wav, webm`,
		Example: `  chunkscribe transcribe lecture.mp4
  chunkscribe transcribe podcast.mp3 -o podcast-transcript.json
  chunkscribe transcribe interview.wav --text -l fr
  chunkscribe transcribe webinar.m4a --chunk-duration 5m --parallel 4
  chunkscribe transcribe standup.ogg --prompt "Names: Priya, Joaquim, DevOps terms"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: <input>.json)")
	cmd.Flags().BoolVar(&flags.asText, "text", false, "Write the plain transcript instead of JSON")
	cmd.Flags().DurationVar(&flags.chunkDur, "chunk-duration", pipeline.DefaultChunkDuration, "Duration of each chunk")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", pipeline.DefaultMaxParallel, "Max concurrent API requests (1-10)")
	cmd.Flags().IntVar(&flags.retries, "retries", pipeline.DefaultMaxAttempts, "Attempts per chunk before giving up")
	cmd.Flags().IntVar(&flags.thresholdMB, "threshold-mb", pipeline.DefaultSizeThreshold/(1024*1024), "Size in MB above which the file is chunked")
	cmd.Flags().DurationVar(&flags.backoff, "backoff", pipeline.DefaultBackoffBase, "Initial retry delay (doubles per retry)")
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "Context prompt for domain vocabulary")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Audio language (ISO 639-1 code, e.g. en, fr)")

	return cmd
}

// runTranscribe executes the transcription pipeline.
// Validation order: file exists -> format -> config -> output -> bounds -> API key
func runTranscribe(cmd *cobra.Command, env *Env, inputPath string, flags transcribeFlags) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. File exists
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	// 3. Load config for output-dir and default language
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	// 4. Output path (resolve with output-dir, derive default from input)
	defaultOutput := deriveOutputPath(filepath.Base(inputPath), flags.asText)
	output := config.ResolveOutputPath(flags.output, cfg.OutputDir, defaultOutput)

	// 5. Bounds
	if flags.chunkDur <= 0 {
		return fmt.Errorf("%w: --chunk-duration must be positive", ErrInvalidDuration)
	}
	if flags.backoff < 0 {
		return fmt.Errorf("%w: --backoff cannot be negative", ErrInvalidDuration)
	}
	flags.parallel = clampParallel(flags.parallel)
	if flags.retries < 1 {
		flags.retries = 1
	}
	if flags.thresholdMB < 1 {
		flags.thresholdMB = 1
	}

	// 6. Language: flag wins, then configured default
	language := flags.language
	if language == "" {
		language = cfg.Language
	}

	// 7. API key present
	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	// === SETUP ===

	tools, err := env.ToolResolver.Resolve()
	if err != nil {
		return err
	}
	if major, ok := env.ToolResolver.CheckVersion(ctx, tools.FFmpeg); !ok {
		fmt.Fprintln(env.Stderr, "Warning: could not determine ffmpeg version")
	} else if ffmpeg.BelowMinVersion(major) {
		fmt.Fprintf(env.Stderr, "Warning: ffmpeg version %d is older than supported; splitting may fail\n", major)
	}

	pipeCfg := pipeline.Config{
		SizeThreshold: int64(flags.thresholdMB) * 1024 * 1024,
		ChunkDuration: flags.chunkDur,
		MaxParallel:   flags.parallel,
		MaxAttempts:   flags.retries,
		BackoffBase:   flags.backoff,
	}
	warn := func(msg string) { fmt.Fprintln(env.Stderr, msg) }

	p, err := env.PipelineFactory.NewPipeline(tools, apiKey, pipeCfg, warn,
		pipeline.WithProgress(progressPrinter(env.Stderr)))
	if err != nil {
		return err
	}

	// === TRANSCRIPTION ===

	res, err := p.Run(ctx, inputPath, transcribe.Options{
		Prompt:   flags.prompt,
		Language: language,
	})
	if err != nil {
		return err
	}

	// === WRITE OUTPUT ===

	content, err := renderResult(res, flags.asText)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(output, content); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Done: %s (%d/%d chunks, %s, %d words)\n",
		output, res.Stats.SuccessfulChunks, res.Stats.TotalChunks,
		format.Duration(time.Duration(res.Duration*float64(time.Second))),
		res.WordCount)
	return nil
}
