package transcribe_test

// Notes:
// - Black-box testing via package transcribe_test; export_test.go injects a
//   mock audioTranscriber.
// - Canned API responses are built by unmarshalling verbose_json payloads,
//   since go-openai's segment type is an anonymous struct.
// - Network I/O with the real OpenAI client is out of scope here.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avendel/chunkscribe/internal/apierr"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

// mockAudioTranscriber implements audioTranscriber for testing.
type mockAudioTranscriber struct {
	mu       sync.Mutex
	calls    []openai.AudioRequest
	response openai.AudioResponse
	err      error
}

func (m *mockAudioTranscriber) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return openai.AudioResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockAudioTranscriber) LastRequest() openai.AudioRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return openai.AudioRequest{}
	}
	return m.calls[len(m.calls)-1]
}

// verboseResponse unmarshals a verbose_json payload into an AudioResponse.
func verboseResponse(t *testing.T, payload string) openai.AudioResponse {
	t.Helper()
	var resp openai.AudioResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return resp
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	t.Run("maps verbose_json response to Result", func(t *testing.T) {
		t.Parallel()

		mock := &mockAudioTranscriber{
			response: verboseResponse(t, `{
				"text": "hello world from the recording",
				"duration": 12.5,
				"segments": [
					{"id": 0, "start": 0.0, "end": 6.0, "text": "hello world"},
					{"id": 1, "start": 6.0, "end": 12.5, "text": "from the recording"}
				]
			}`),
		}
		tr := transcribe.NewTestTranscriber(mock)

		result, err := tr.Transcribe(context.Background(), "chunk_000.mp3", transcribe.Options{})
		if err != nil {
			t.Fatalf("Transcribe() unexpected error: %v", err)
		}
		if result.Text != "hello world from the recording" {
			t.Errorf("Text = %q", result.Text)
		}
		if result.Duration != 12.5 {
			t.Errorf("Duration = %v, want 12.5", result.Duration)
		}
		if len(result.Segments) != 2 {
			t.Fatalf("len(Segments) = %d, want 2", len(result.Segments))
		}
		if s := result.Segments[1]; s.ID != 1 || s.Start != 6.0 || s.End != 12.5 || s.Text != "from the recording" {
			t.Errorf("Segments[1] = %+v", s)
		}
		if result.WordCount() != 5 {
			t.Errorf("WordCount() = %d, want 5", result.WordCount())
		}
	})

	t.Run("request carries model, format, and options", func(t *testing.T) {
		t.Parallel()

		mock := &mockAudioTranscriber{response: verboseResponse(t, `{"text":"ok"}`)}
		tr := transcribe.NewTestTranscriber(mock)

		_, err := tr.Transcribe(context.Background(), "chunk_002.mp3", transcribe.Options{
			Prompt:   "Kubernetes discussion",
			Language: "en",
		})
		if err != nil {
			t.Fatalf("Transcribe() unexpected error: %v", err)
		}

		req := mock.LastRequest()
		if req.Model != transcribe.ModelWhisper {
			t.Errorf("Model = %q, want %q", req.Model, transcribe.ModelWhisper)
		}
		if req.FilePath != "chunk_002.mp3" {
			t.Errorf("FilePath = %q", req.FilePath)
		}
		if req.Format != openai.AudioResponseFormatVerboseJSON {
			t.Errorf("Format = %q, want verbose_json", req.Format)
		}
		if req.Prompt != "Kubernetes discussion" || req.Language != "en" {
			t.Errorf("Prompt/Language = %q/%q", req.Prompt, req.Language)
		}
		if len(req.TimestampGranularities) != 1 ||
			req.TimestampGranularities[0] != openai.TranscriptionTimestampGranularitySegment {
			t.Errorf("TimestampGranularities = %v, want [segment]", req.TimestampGranularities)
		}
	})

	t.Run("API errors are classified", func(t *testing.T) {
		t.Parallel()

		mock := &mockAudioTranscriber{
			err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"},
		}
		tr := transcribe.NewTestTranscriber(mock)

		_, err := tr.Transcribe(context.Background(), "chunk_000.mp3", transcribe.Options{})
		if !errors.Is(err, apierr.ErrRateLimit) {
			t.Errorf("error = %v, want ErrRateLimit", err)
		}
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	api := func(status int, msg string) error {
		return &openai.APIError{HTTPStatusCode: status, Message: msg}
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"429 rate limit", api(http.StatusTooManyRequests, "slow down"), apierr.ErrRateLimit},
		{"429 quota", api(http.StatusTooManyRequests, "you exceeded your current quota"), apierr.ErrQuotaExceeded},
		{"429 billing", api(http.StatusTooManyRequests, "billing hard limit reached"), apierr.ErrQuotaExceeded},
		{"401 auth", api(http.StatusUnauthorized, "invalid api key"), apierr.ErrAuthFailed},
		{"403 auth", api(http.StatusForbidden, "forbidden"), apierr.ErrAuthFailed},
		{"408 timeout", api(http.StatusRequestTimeout, "timeout"), apierr.ErrTimeout},
		{"504 timeout", api(http.StatusGatewayTimeout, "gateway timeout"), apierr.ErrTimeout},
		{"400 invalid", api(http.StatusBadRequest, "unsupported file"), apierr.ErrInvalidInput},
		{"413 too large", api(http.StatusRequestEntityTooLarge, "file too large"), apierr.ErrInvalidInput},
		{"500 server", api(http.StatusInternalServerError, "oops"), apierr.ErrServer},
		{"503 server", api(http.StatusServiceUnavailable, "overloaded"), apierr.ErrServer},
		{"context deadline", context.DeadlineExceeded, apierr.ErrTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := transcribe.ClassifyError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	t.Run("unclassified errors pass through", func(t *testing.T) {
		t.Parallel()

		plain := fmt.Errorf("network down")
		if got := transcribe.ClassifyError(plain); got != plain {
			t.Errorf("ClassifyError(plain) = %v, want passthrough", got)
		}
	})
}
