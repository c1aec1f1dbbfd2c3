package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed workspace configuration
// fields. It is raised locally, before any network traffic.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid workspace config: %s", e.Reason)
	}
	return fmt.Sprintf("invalid workspace config: missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// PreconditionError reports an operation attempted on a workspace that is
// not in the required state, most commonly a slug-addressed operation on an
// entity that was never created remotely or was deleted.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

// errNoSlug builds the PreconditionError for slug-addressed operations
func errNoSlug(op string) *PreconditionError {
	return &PreconditionError{Reason: fmt.Sprintf("workspace slug is not set: cannot %s", op)}
}

// NotFoundError reports a lookup of a slug the manager does not hold
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workspace %q is not managed", e.Slug)
}

// ConfigFileError reports a configuration file that could not be read or
// parsed as JSON
type ConfigFileError struct {
	Path string
	Err  error
}

func (e *ConfigFileError) Error() string {
	return fmt.Sprintf("config file %s: %v", e.Path, e.Err)
}

func (e *ConfigFileError) Unwrap() error {
	return e.Err
}
