package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avendel/chunkscribe/internal/cli"
	"github.com/avendel/chunkscribe/internal/pipeline"
)

func TestRenderResult(t *testing.T) {
	t.Parallel()

	res := &pipeline.Result{
		SourceFile: "talk.mp3",
		Transcript: "one two three",
		WordCount:  3,
		Stats:      pipeline.Stats{TotalChunks: 1, SuccessfulChunks: 1, Method: pipeline.MethodSingle},
	}

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out, err := cli.RenderResult(res, false)
		if err != nil {
			t.Fatalf("RenderResult() error = %v", err)
		}
		if !strings.HasSuffix(out, "\n") {
			t.Error("JSON output missing trailing newline")
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["full_transcript"] != "one two three" {
			t.Errorf("full_transcript = %v", decoded["full_transcript"])
		}
		if decoded["audio_file"] != "talk.mp3" {
			t.Errorf("audio_file = %v", decoded["audio_file"])
		}
		if _, ok := decoded["failures"]; ok {
			t.Error("failures should be omitted when empty")
		}
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		out, err := cli.RenderResult(res, true)
		if err != nil {
			t.Fatalf("RenderResult() error = %v", err)
		}
		if out != "one two three\n" {
			t.Errorf("text output = %q", out)
		}
	})
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes new file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.json")
		if err := cli.WriteFileAtomic(path, "content"); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "content" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("refuses existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.json")
		if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
		err := cli.WriteFileAtomic(path, "new")
		if !errors.Is(err, cli.ErrOutputExists) {
			t.Errorf("error = %v, want ErrOutputExists", err)
		}
	})
}

func TestProgressPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	progress := cli.ProgressPrinter(&buf)

	progress(pipeline.StatePlanned, 0, 0)
	progress(pipeline.StateSplitting, 0, 0)
	progress(pipeline.StateDispatching, 0, 3)
	progress(pipeline.StateDispatching, 1, 3)
	progress(pipeline.StateDispatching, 3, 3)
	progress(pipeline.StateMerging, 0, 0)
	progress(pipeline.StateCleanup, 0, 0)
	progress(pipeline.StateDone, 0, 0)

	out := buf.String()
	for _, want := range []string{
		"Splitting media into chunks...",
		"Transcribing 3 chunk(s)...",
		"Chunk 1/3 done",
		"Chunk 3/3 done",
		"Merging transcripts...",
		"Cleaning up chunk files...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}
}

func TestSupportedFormatsList(t *testing.T) {
	t.Parallel()

	got := cli.SupportedFormatsList()
	want := "flac, m4a, mp3, mp4, mpeg, mpga, ogg, wav, webm"
	if got != want {
		t.Errorf("SupportedFormatsList() = %q, want %q", got, want)
	}
}
