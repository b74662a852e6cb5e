package analysis

import (
	"errors"

	"chatlens-backend/internal/llm"
)

var (
	// ErrValidation rejects malformed requests before any provider call.
	ErrValidation = errors.New("validation failed")
	// ErrDependencyUnsatisfied rejects step lists whose dependencies are not met.
	ErrDependencyUnsatisfied = errors.New("step dependency unsatisfied")
	// ErrNoMessages indicates a step had no input messages to work with.
	ErrNoMessages = errors.New("no messages to analyze")
	// ErrProviderNotReady indicates the provider failed initialization.
	ErrProviderNotReady = llm.ErrProviderUnavailable
)
