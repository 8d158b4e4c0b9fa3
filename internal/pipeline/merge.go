package pipeline

import (
	"fmt"
	"strings"

	"github.com/avendel/chunkscribe/internal/format"
	"github.com/avendel/chunkscribe/internal/media"
	"github.com/avendel/chunkscribe/internal/transcribe"
)

// merge stitches chunk outcomes back into one result. Chunks are walked in
// index order; each segment's timestamps are shifted by its chunk's start
// offset so the merged segments sit on the source time axis, and segment IDs
// are renumbered sequentially across the whole recording.
func merge(chunks []media.ChunkSpec, outcomes []ChunkOutcome) (transcript string, segments []transcribe.Segment, wordCount int, failures []string) {
	texts := make([]string, 0, len(outcomes))
	nextID := 0

	for i, out := range outcomes {
		if !out.Succeeded() {
			failures = append(failures, fmt.Sprintf("chunk %d (start %s): %v",
				out.Index, format.Duration(chunks[i].StartOffset), out.Err))
			continue
		}
		if out.Text != "" {
			texts = append(texts, out.Text)
		}
		wordCount += out.WordCount

		offset := chunks[i].StartOffset.Seconds()
		for _, seg := range out.Segments {
			segments = append(segments, transcribe.Segment{
				ID:    nextID,
				Start: seg.Start + offset,
				End:   seg.End + offset,
				Text:  seg.Text,
			})
			nextID++
		}
	}

	return strings.Join(texts, " "), segments, wordCount, failures
}
