package pipeline

import "github.com/avendel/chunkscribe/internal/transcribe"

// Transcription methods reported in Stats.
const (
	MethodSingle   = "single"
	MethodParallel = "parallel"
)

// Stats summarizes how the input was processed.
type Stats struct {
	TotalChunks      int     `json:"total_chunks"`
	SuccessfulChunks int     `json:"successful_chunks"`
	FailedChunks     int     `json:"failed_chunks"`
	Method           string  `json:"method"`
	ChunkMinutes     float64 `json:"chunk_duration_minutes"`
}

// Result is the merged output of a transcription job.
type Result struct {
	SourceFile string               `json:"audio_file"`
	Transcript string               `json:"full_transcript"`
	Segments   []transcribe.Segment `json:"segments"`
	Duration   float64              `json:"duration_seconds"`
	WordCount  int                  `json:"word_count"`
	Stats      Stats                `json:"chunking_stats"`
	Failures   []string             `json:"failures,omitempty"`
}
