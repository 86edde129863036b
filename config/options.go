package config

// RemoteLogging configures delivery of captured errors to a collector
type RemoteLogging struct {
	Enable          bool
	URL             string // Empty means not configured
	SuccessCallback func()
	ErrorCallback   func()
}

// Options is the capture configuration of one reporter instance
type Options struct {
	DetailedErrors bool
	RemoteLogging  RemoteLogging
}

// Overrides carries per-call configuration overrides.
// A nil field keeps the current value; a non-nil field replaces it wholesale.
type Overrides struct {
	DetailedErrors *bool
	RemoteLogging  *RemoteLogging
}

// DefaultOptions returns the configuration a reporter starts with:
// console reports on, remote delivery off.
func DefaultOptions() Options {
	return Options{
		DetailedErrors: true,
		RemoteLogging:  RemoteLogging{},
	}
}

// Merge applies overrides on top of base, one top-level key at a time.
//
// Nested keys are never merged: an override of RemoteLogging replaces the
// whole block, so a URL or callback set earlier is dropped unless the caller
// carries it over.
func Merge(base Options, o Overrides) Options {
	merged := base
	if o.DetailedErrors != nil {
		merged.DetailedErrors = *o.DetailedErrors
	}
	if o.RemoteLogging != nil {
		merged.RemoteLogging = *o.RemoteLogging
	}
	return merged
}

// Bool returns a pointer to v, for building Overrides literals
func Bool(v bool) *bool {
	return &v
}
