package media

// Exports for testing. These allow black-box tests to inject dependencies
// without widening the public API.

// CleanupChunksWith runs cleanup with an injected file remover.
var CleanupChunksWith = cleanupChunks

// IsManagedTempDir exposes the temp-dir safety check.
var IsManagedTempDir = isManagedTempDir

// FileRemover re-exports the internal interface for test fakes.
type FileRemover = fileRemover
