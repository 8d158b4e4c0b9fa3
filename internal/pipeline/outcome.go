package pipeline

import "github.com/avendel/chunkscribe/internal/transcribe"

// ChunkOutcome records the terminal result of transcribing one chunk.
// Exactly one of the success fields or Err is meaningful.
type ChunkOutcome struct {
	// Index is the chunk's position on the source time axis.
	Index int

	// Attempts is how many calls were made for this chunk, including the
	// successful or final failing one.
	Attempts int

	// Text is the chunk's transcript on success.
	Text string

	// Segments are the chunk's timestamped segments, still in chunk-local
	// time. The merge step shifts them onto the source time axis.
	Segments []transcribe.Segment

	// Duration is the audio duration in seconds as reported by the API.
	Duration float64

	// WordCount is the whitespace-separated word count of Text.
	WordCount int

	// Err is the final classified error when all attempts failed.
	Err error
}

// Succeeded reports whether the chunk produced a transcript.
func (o ChunkOutcome) Succeeded() bool { return o.Err == nil }

func successOutcome(index, attempts int, res transcribe.Result) ChunkOutcome {
	return ChunkOutcome{
		Index:     index,
		Attempts:  attempts,
		Text:      res.Text,
		Segments:  res.Segments,
		Duration:  res.Duration,
		WordCount: res.WordCount(),
	}
}

func failureOutcome(index, attempts int, err error) ChunkOutcome {
	return ChunkOutcome{Index: index, Attempts: attempts, Err: err}
}
