package media

import "errors"

// ErrProbeFailed indicates ffprobe could not determine the media duration.
// Probe failures are fatal: an unprobeable input is unusable, so no retry.
var ErrProbeFailed = errors.New("media probe failed")

// ErrSplitFailed indicates chunking produced no usable chunks, or the chunks
// it produced do not cover the recording contiguously.
var ErrSplitFailed = errors.New("media split failed")

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")
