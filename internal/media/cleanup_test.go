package media_test

// Notes:
// - CleanupChunks is exercised against real files: a managed temp dir
//   (chunkscribe-* prefix) must disappear entirely, while a caller-owned
//   directory only loses the chunk files.
// - Failure tolerance uses an injected remover via export_test.go.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avendel/chunkscribe/internal/media"
)

func writeChunks(t *testing.T, dir string, n int) []media.ChunkSpec {
	t.Helper()
	chunks := make([]media.ChunkSpec, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, "chunk_00"+string(rune('0'+i))+".mp3")
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
		chunks[i] = media.ChunkSpec{Index: i, Path: path}
	}
	return chunks
}

func TestCleanupChunks(t *testing.T) {
	t.Parallel()

	t.Run("removes managed temp dir entirely", func(t *testing.T) {
		t.Parallel()

		dir, err := os.MkdirTemp(t.TempDir(), "chunkscribe-*")
		if err != nil {
			t.Fatal(err)
		}
		chunks := writeChunks(t, dir, 3)

		media.CleanupChunks(chunks, nil)

		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("temp dir %s still exists after cleanup", dir)
		}
	})

	t.Run("caller-owned dir keeps the directory, loses the files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		chunks := writeChunks(t, dir, 2)

		media.CleanupChunks(chunks, nil)

		if _, err := os.Stat(dir); err != nil {
			t.Errorf("caller-owned dir removed: %v", err)
		}
		for _, c := range chunks {
			if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
				t.Errorf("chunk file %s still exists after cleanup", c.Path)
			}
		}
	})

	t.Run("empty chunk list is a no-op", func(t *testing.T) {
		t.Parallel()

		media.CleanupChunks(nil, func(string) { t.Error("unexpected warning") })
	})

	t.Run("deletion failures are warned, never escalated", func(t *testing.T) {
		t.Parallel()

		var warns []string
		chunks := []media.ChunkSpec{
			{Index: 0, Path: "/tmp/chunkscribe-x/chunk_000.mp3"},
			{Index: 1, Path: "/tmp/chunkscribe-x/chunk_001.mp3"},
		}

		media.CleanupChunksWith(chunks, func(msg string) {
			warns = append(warns, msg)
		}, failingRemover{})

		// Two files plus the managed directory.
		if len(warns) != 3 {
			t.Errorf("got %d warnings, want 3: %q", len(warns), warns)
		}
		for _, w := range warns {
			if !strings.Contains(w, "Warning") {
				t.Errorf("warning %q lacks Warning prefix", w)
			}
		}
	})
}

// failingRemover implements media.FileRemover and always fails.
type failingRemover struct{}

func (failingRemover) Remove(string) error    { return errors.New("permission denied") }
func (failingRemover) RemoveAll(string) error { return errors.New("permission denied") }

func TestIsManagedTempDir(t *testing.T) {
	t.Parallel()

	if !media.IsManagedTempDir("/tmp/chunkscribe-12345") {
		t.Error("chunkscribe-prefixed dir should be managed")
	}
	if media.IsManagedTempDir("/home/user/recordings") {
		t.Error("arbitrary dir must never be treated as managed")
	}
}
