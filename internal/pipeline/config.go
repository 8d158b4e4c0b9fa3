package pipeline

import (
	"time"

	"github.com/avendel/chunkscribe/internal/apierr"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

// Default pipeline parameters.
const (
	// DefaultSizeThreshold routes inputs at or below this byte size to a
	// single direct call. 24MB leaves a safety margin under the API's 25MB
	// upload limit.
	DefaultSizeThreshold = 24 * 1024 * 1024

	// DefaultChunkDuration is the planned duration of each chunk.
	// 10 minutes of 64kbps mono mp3 stays well under the upload limit.
	DefaultChunkDuration = 10 * time.Minute

	// DefaultMaxParallel is the admission cap on concurrently in-flight
	// transcription requests.
	DefaultMaxParallel = 8

	// MaxRecommendedParallel is the recommended upper limit for concurrent
	// API requests. Higher values tend to trigger rate limiting.
	MaxRecommendedParallel = 10

	// DefaultMaxAttempts is the total number of attempts per chunk,
	// including the first.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the delay before the first retry; it doubles
	// after each subsequent failure.
	DefaultBackoffBase = 2 * time.Second

	// DefaultBackoffCap bounds the retry delay growth.
	DefaultBackoffCap = 60 * time.Second
)

// Config holds the tunable parameters of a transcription job.
// The zero value is usable: normalize substitutes defaults.
type Config struct {
	// SizeThreshold is the byte size at or below which the input is sent as
	// a single direct transcription call, skipping chunking entirely.
	SizeThreshold int64

	// ChunkDuration is the planned duration of each chunk when splitting.
	ChunkDuration time.Duration

	// MaxParallel caps the number of concurrently in-flight requests.
	MaxParallel int

	// MaxAttempts is the per-chunk attempt budget (first try + retries).
	MaxAttempts int

	// BackoffBase is the delay before the first retry; doubles per retry.
	BackoffBase time.Duration

	// BackoffCap bounds the backoff delay.
	BackoffCap time.Duration
}

// normalize substitutes defaults for unset fields and clamps out-of-range
// values.
func (c *Config) normalize() {
	if c.SizeThreshold <= 0 {
		c.SizeThreshold = DefaultSizeThreshold
	}
	// The API rejects uploads over its hard limit regardless of the
	// configured threshold.
	if c.SizeThreshold > transcribe.MaxUploadBytes {
		c.SizeThreshold = transcribe.MaxUploadBytes
	}
	if c.ChunkDuration <= 0 {
		c.ChunkDuration = DefaultChunkDuration
	}
	if c.MaxParallel < 1 {
		c.MaxParallel = DefaultMaxParallel
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = DefaultBackoffCap
	}
}

// retryConfig translates the attempt budget into apierr retry parameters.
func (c Config) retryConfig() apierr.RetryConfig {
	return apierr.RetryConfig{
		MaxRetries: c.MaxAttempts - 1,
		BaseDelay:  c.BackoffBase,
		MaxDelay:   c.BackoffCap,
	}
}
