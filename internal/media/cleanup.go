package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// isManagedTempDir reports whether dir was created by the splitter.
// The prefix check keeps cleanup from ever deleting an arbitrary directory.
func isManagedTempDir(dir string) bool {
	base := filepath.Base(dir)
	return strings.HasPrefix(base, strings.TrimSuffix(tempDirPattern, "*"))
}

// CleanupChunks removes every chunk file best-effort, plus the owning temp
// directory when the splitter created it. Individual deletion failures are
// reported through warn and never escalated: cleanup runs on every exit path
// of a job, and a leftover file must not turn a finished job into a failed
// one.
func CleanupChunks(chunks []ChunkSpec, warn WarnFunc) {
	cleanupChunks(chunks, warn, osFileRemover{})
}

// cleanupChunks is the injectable implementation behind CleanupChunks.
func cleanupChunks(chunks []ChunkSpec, warn WarnFunc, files fileRemover) {
	if len(chunks) == 0 {
		return
	}

	for _, chunk := range chunks {
		if err := files.Remove(chunk.Path); err != nil {
			if warn != nil {
				warn(fmt.Sprintf("Warning: failed to delete %s: %v", chunk.Path, err))
			}
		}
	}

	// All chunks live in the same directory.
	dir := filepath.Dir(chunks[0].Path)
	if isManagedTempDir(dir) {
		if err := files.RemoveAll(dir); err != nil && warn != nil {
			warn(fmt.Sprintf("Warning: failed to delete %s: %v", dir, err))
		}
	}
}
