// internal/errors/errors.go
package appErrors

import "fmt"

// ConfigError means a required credential or setting is missing. The
// operation cannot proceed until the user fixes their environment, so the
// message carries setup instructions.
type ConfigError struct {
	Setting string
	Hint    string
}

func (e *ConfigError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s is not configured", e.Setting)
	}
	return fmt.Sprintf("%s is not configured: %s", e.Setting, e.Hint)
}

func NewConfigError(setting, hint string) error {
	return &ConfigError{Setting: setting, Hint: hint}
}

// UpstreamError wraps a failure from an external API (Groq or Gmail),
// including timeouts. It is reported per item and never aborts a batch.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func NewUpstreamError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// ValidationError means the request input was rejected before any
// processing began (malformed CSV, missing column, bad upload).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
