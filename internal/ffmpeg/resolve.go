// Package ffmpeg locates and runs the ffmpeg and ffprobe system tools.
// The pipeline treats both as external collaborators: they are resolved
// once at startup and invoked through an Executor.
package ffmpeg

import (
	"context"
	"fmt"
	"strings"
)

// Environment variables for custom tool paths.
const (
	envFFmpegPath  = "FFMPEG_PATH"
	envFFprobePath = "FFPROBE_PATH"
)

// minFFmpegMajorVersion is the minimum supported ffmpeg version.
// Older builds may lack the codec flags the splitter relies on.
const minFFmpegMajorVersion = 4

// Tools holds the resolved paths to the media binaries.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// Resolver finds the ffmpeg and ffprobe binaries.
type Resolver struct {
	env envProvider
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{env: osEnvProvider{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds both binaries using the following precedence:
//  1. FFMPEG_PATH / FFPROBE_PATH environment variables (error if set but invalid)
//  2. System PATH
func (r *Resolver) Resolve() (Tools, error) {
	ffmpegPath, err := r.resolveBinary("ffmpeg", envFFmpegPath, ErrNotFound)
	if err != nil {
		return Tools{}, err
	}
	ffprobePath, err := r.resolveBinary("ffprobe", envFFprobePath, ErrProbeNotFound)
	if err != nil {
		return Tools{}, err
	}
	return Tools{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

// resolveBinary finds a single binary by env override then PATH lookup.
func (r *Resolver) resolveBinary(name, envKey string, notFound error) (string, error) {
	if envPath := r.env.Getenv(envKey); envPath != "" {
		if _, err := r.env.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found", notFound, envKey, envPath)
		}
		return envPath, nil
	}

	path, err := r.env.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: install it (e.g. apt install ffmpeg) or set %s", notFound, envKey)
	}
	return path, nil
}

// CheckVersion parses `ffmpeg -version` output and reports whether the
// version could be determined. Versions below the minimum are tolerated;
// the caller decides whether to warn.
func CheckVersion(ctx context.Context, e *Executor, ffmpegPath string) (major int, ok bool) {
	output, err := e.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return 0, false
	}

	lines := strings.SplitN(output, "\n", 2)
	if len(lines) == 0 || lines[0] == "" {
		return 0, false
	}

	if _, err := fmt.Sscanf(lines[0], "ffmpeg version %d", &major); err != nil {
		// Some builds prefix the version with "n", e.g. "ffmpeg version n6.1.1".
		if _, err := fmt.Sscanf(lines[0], "ffmpeg version n%d", &major); err != nil {
			return 0, false
		}
	}
	return major, true
}

// BelowMinVersion reports whether a parsed major version is below the
// supported minimum.
func BelowMinVersion(major int) bool {
	return major < minFFmpegMajorVersion
}
