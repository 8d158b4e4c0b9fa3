// Package transcribe converts audio files to text through OpenAI's
// transcription API. Results carry time-stamped segments so callers can
// re-anchor chunk-relative times onto the full recording.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avendel/chunkscribe/internal/apierr"
)

// ModelWhisper is the transcription model used for all requests.
const ModelWhisper = openai.Whisper1

// MaxUploadBytes is the hard input-size limit of the transcription API.
// Inputs above it must be chunked before dispatch.
const MaxUploadBytes = 25 * 1024 * 1024

// Segment is one time-stamped span of transcribed speech. Start and End are
// seconds relative to the transcribed file; for a chunk they are
// chunk-relative until the merger shifts them by the chunk's start offset.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is a single transcription response.
type Result struct {
	Text     string    // Full transcript of the file.
	Duration float64   // Audio duration in seconds, as reported by the API.
	Segments []Segment // Time-stamped segments, in playback order.
}

// WordCount returns the whitespace-separated word count of the transcript.
func (r Result) WordCount() int {
	return len(strings.Fields(r.Text))
}

// Options configures transcription behavior.
type Options struct {
	// Prompt provides context to improve transcription accuracy.
	// Useful for domain-specific vocabulary, acronyms, or expected content.
	Prompt string

	// Language is the audio language as an ISO 639-1 code.
	// Empty means auto-detect.
	Language string
}

// Transcriber transcribes audio files to text.
type Transcriber interface {
	// Transcribe converts an audio file to text with time-stamped segments.
	// audioPath must be a file in a format the API supports
	// (mp3, mp4, mpeg, mpga, m4a, wav, webm, ogg, flac).
	Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error)
}

// audioTranscriber is an internal interface for OpenAI audio transcription.
// *openai.Client implements this implicitly; tests inject mocks.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*WhisperTranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// WhisperTranscriber transcribes audio using OpenAI's Whisper API with
// verbose JSON output for segment timestamps. It performs exactly one
// request per call; retry policy belongs to the caller, which knows the
// per-chunk attempt budget.
type WhisperTranscriber struct {
	client audioTranscriber
}

// NewWhisperTranscriber creates a WhisperTranscriber.
// The client is injected to enable testing with mocks.
func NewWhisperTranscriber(client *openai.Client) *WhisperTranscriber {
	return &WhisperTranscriber{client: client}
}

// Transcribe requests a verbose-JSON transcription with segment-level
// timestamps. API errors are classified into apierr sentinels so callers
// can decide retryability with errors.Is.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error) {
	req := openai.AudioRequest{
		Model:    ModelWhisper,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Prompt:   opts.Prompt,
		Language: opts.Language,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return Result{}, classifyError(err)
	}

	result := Result{
		Text:     resp.Text,
		Duration: resp.Duration,
		Segments: make([]Segment, 0, len(resp.Segments)),
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, Segment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return result, nil
}

// classifyError maps OpenAI API errors to apierr sentinels.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Distinguish between temporary rate limit and quota exceeded
			// (billing issue). Quota exhaustion requires user action, so it
			// must not be retried.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case http.StatusBadRequest, http.StatusNotFound,
			http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrInvalidInput)
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrServer)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}
