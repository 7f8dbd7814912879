package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for citeright's narrow error taxonomy.
var (
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrInvalidInput          = errors.New("invalid input")
	ErrCollaboratorInvariant = errors.New("collaborator violated its contract")
)

// CollaboratorError names the offending collaborator and input index
// when a segmenter, tokenizer, or embedder breaks its contract (out-of
// order spans, offsets outside the text, mismatched lengths).
type CollaboratorError struct {
	Collaborator string
	InputIndex   int
	Reason       string
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: input %d: %s", e.Collaborator, e.InputIndex, e.Reason)
}

func (e *CollaboratorError) Unwrap() error {
	return ErrCollaboratorInvariant
}

// ConfigError names the rejected option and why at call start.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Option, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
