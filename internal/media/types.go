// Package media probes recordings and splits them into time-bounded,
// independently transcribable chunks on local storage. Chunk files are
// temporary; callers release them through CleanupChunks when the job ends.
package media

import (
	"fmt"
	"time"

	"github.com/avendel/chunkscribe/internal/format"
)

// MediaFile describes a source recording. Immutable once probed.
type MediaFile struct {
	Path     string        // Path to the source file.
	Size     int64         // Byte size.
	Duration time.Duration // Total duration, populated by the Prober.
}

// ChunkSpec describes one extracted chunk of the source recording.
// Created by the Splitter and never mutated afterwards.
type ChunkSpec struct {
	Index       int           // Zero-based, contiguous across the chunk list.
	Path        string        // Absolute path to the chunk file.
	StartOffset time.Duration // Start position in the source recording.
	Duration    time.Duration // Planned duration; the last chunk gets the remainder.
	Size        int64         // Byte size of the extracted file.
}

// String returns a human-readable representation for logging.
func (c ChunkSpec) String() string {
	return fmt.Sprintf("chunk %d: %s+%s (%s)",
		c.Index,
		format.Duration(c.StartOffset),
		format.Duration(c.Duration),
		format.Size(c.Size))
}
