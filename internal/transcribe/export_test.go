package transcribe

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// NewTestTranscriber creates a WhisperTranscriber with a mock audioTranscriber.
func NewTestTranscriber(client audioTranscriber) *WhisperTranscriber {
	return &WhisperTranscriber{client: client}
}

// ClassifyError exposes the error classifier for unit tests.
var ClassifyError = classifyError
