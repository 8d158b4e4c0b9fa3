package cli

import (
	"context"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avendel/chunkscribe/internal/config"
	"github.com/avendel/chunkscribe/internal/ffmpeg"
	"github.com/avendel/chunkscribe/internal/media"
	"github.com/avendel/chunkscribe/internal/pipeline"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

// EnvOpenAIAPIKey is the environment variable holding the API key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing commands in isolation.
//
// All fields have production defaults via DefaultEnv(). Tests override
// specific fields with the With* options.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ToolResolver    ToolResolver
	ConfigLoader    ConfigLoader
	PipelineFactory PipelineFactory
}

// ToolResolver locates the ffmpeg and ffprobe binaries and checks the
// ffmpeg version.
type ToolResolver interface {
	Resolve() (ffmpeg.Tools, error)
	CheckVersion(ctx context.Context, ffmpegPath string) (major int, ok bool)
}

// ConfigLoader loads user configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// PipelineFactory assembles a transcription pipeline from resolved tools
// and an API key.
type PipelineFactory interface {
	NewPipeline(tools ffmpeg.Tools, apiKey string, cfg pipeline.Config, warn media.WarnFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithToolResolver sets the ffmpeg/ffprobe resolver.
func WithToolResolver(r ToolResolver) EnvOption {
	return func(e *Env) { e.ToolResolver = r }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithPipelineFactory sets the pipeline factory.
func WithPipelineFactory(f PipelineFactory) EnvOption {
	return func(e *Env) { e.PipelineFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		ToolResolver:    &defaultToolResolver{},
		ConfigLoader:    &defaultConfigLoader{},
		PipelineFactory: &defaultPipelineFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultToolResolver struct{}

func (defaultToolResolver) Resolve() (ffmpeg.Tools, error) {
	return ffmpeg.NewResolver().Resolve()
}

func (defaultToolResolver) CheckVersion(ctx context.Context, ffmpegPath string) (int, bool) {
	return ffmpeg.CheckVersion(ctx, ffmpeg.NewExecutor(), ffmpegPath)
}

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

type defaultPipelineFactory struct{}

func (defaultPipelineFactory) NewPipeline(tools ffmpeg.Tools, apiKey string, cfg pipeline.Config, warn media.WarnFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	prober, err := media.NewProber(tools.FFprobe)
	if err != nil {
		return nil, err
	}
	splitter, err := media.NewSplitter(tools.FFmpeg, media.WithSplitterWarnFunc(warn))
	if err != nil {
		return nil, err
	}

	transcriber := transcribe.NewWhisperTranscriber(openai.NewClient(apiKey))

	opts = append([]pipeline.Option{pipeline.WithWarnFunc(warn)}, opts...)
	return pipeline.New(prober, splitter, transcriber, cfg, opts...), nil
}

// Compile-time interface verification.
var (
	_ ToolResolver    = (*defaultToolResolver)(nil)
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ PipelineFactory = (*defaultPipelineFactory)(nil)
)
