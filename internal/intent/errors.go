package intent

import "errors"

var (
	// ErrUnknownIntent is returned when no handler is registered for an intent name.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrClassificationUnavailable is returned when the classifier cannot reach
	// its language model and no keyword matched.
	ErrClassificationUnavailable = errors.New("classification unavailable")

	// ErrGenerationFailed is returned when a media generation backend fails.
	ErrGenerationFailed = errors.New("generation failed")
)
