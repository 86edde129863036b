package core

import "errors"

var (
	ErrRemoteURLMissing = errors.New("remote logging enabled without a url")
	ErrClockNotStarted  = errors.New("session clock not started; call Init first")
)

// Configuration error codes
const (
	CodeRemoteURLMissing = "REMOTE_URL_MISSING"
	CodeClockNotStarted  = "CLOCK_NOT_STARTED"
)

// ConfigError is raised synchronously from the dispatch path when the
// reporter is misconfigured. It unwraps to one of the sentinel errors above.
type ConfigError struct {
	Code string
	Err  error
}

func (e *ConfigError) Error() string {
	return e.Code + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewRemoteURLMissingError builds the error for enable=true with no url
func NewRemoteURLMissingError() *ConfigError {
	return &ConfigError{Code: CodeRemoteURLMissing, Err: ErrRemoteURLMissing}
}

// NewClockNotStartedError builds the error for capture before Init
func NewClockNotStartedError() *ConfigError {
	return &ConfigError{Code: CodeClockNotStarted, Err: ErrClockNotStarted}
}
