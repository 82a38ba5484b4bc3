package device

import "errors"

var (
	// ErrAdapterUnavailable indicates the radio adapter or its tool is not usable
	ErrAdapterUnavailable = errors.New("adapter unavailable")

	// ErrToolUnavailable indicates the pairing tool is not installed or not runnable
	ErrToolUnavailable = errors.New("pairing tool not found")

	// ErrProbeFailed indicates an external probe exited non-zero or could not start
	ErrProbeFailed = errors.New("probe failed")

	// ErrNotFound indicates a device was not found
	ErrNotFound = errors.New("device not found")

	// ErrInvalidIdentity indicates a malformed assigned identity
	ErrInvalidIdentity = errors.New("invalid assigned identity")

	// ErrSessionNotFound indicates an unknown commissioning session
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionActive indicates a session id is already running
	ErrSessionActive = errors.New("session already running")

	// ErrValidation indicates a request payload failed schema validation
	ErrValidation = errors.New("validation error")
)
