package pipeline

import "errors"

// ErrAllChunksFailed indicates every chunk's transcription ended in failure.
// Raised only when zero chunks succeeded; any partial success produces a
// labeled-as-partial result instead.
var ErrAllChunksFailed = errors.New("all chunks failed transcription")
