package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/avendel/chunkscribe/internal/pipeline"
)

// renderResult serializes a pipeline result: the plain transcript with
// --text, pretty-printed JSON otherwise.
func renderResult(res *pipeline.Result, asText bool) (string, error) {
	if asText {
		return res.Transcript + "\n", nil
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data) + "\n", nil
}

// progressPrinter returns a progress callback that writes status lines to w.
func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(state pipeline.State, completed, total int) {
		switch state {
		case pipeline.StateSplitting:
			fmt.Fprintln(w, "Splitting media into chunks...")
		case pipeline.StateDispatching:
			if completed == 0 {
				fmt.Fprintf(w, "Transcribing %d chunk(s)...\n", total)
			} else {
				fmt.Fprintf(w, "  Chunk %d/%d done\n", completed, total)
			}
		case pipeline.StateMerging:
			fmt.Fprintln(w, "Merging transcripts...")
		case pipeline.StateCleanup:
			fmt.Fprintln(w, "Cleaning up chunk files...")
		}
	}
}

// writeFileAtomic writes content to path, failing if the file already
// exists (O_EXCL) so a finished transcript is never overwritten. On write
// failure the partial file is removed.
func writeFileAtomic(path, content string) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}
