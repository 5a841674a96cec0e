package errors

import (
	"fmt"
	"time"
)

// Kind classifies a pipeline error
type Kind string

const (
	// KindNetwork represents fetch/download failures
	KindNetwork Kind = "network"
	// KindParsing represents HTML parsing/extraction failures
	KindParsing Kind = "parsing"
	// KindRateLimit represents rate limiting by the source
	KindRateLimit Kind = "rate_limit"
	// KindStore represents persistence failures
	KindStore Kind = "store"
	// KindNotify represents notification delivery failures
	KindNotify Kind = "notify"
	// KindValidation represents invalid scraped data
	KindValidation Kind = "validation"
	// KindConfiguration represents configuration errors
	KindConfiguration Kind = "configuration"
)

// PipelineError is an error raised by a pipeline stage. Stage names the
// owning stage ("search", "backfill", "notify"), Ref carries the unit being
// processed (listing id or page number) for diagnostics.
type PipelineError struct {
	Kind    Kind
	Stage   string
	Ref     string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s %s: %s - %v", e.Kind, e.Stage, e.Ref, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s %s: %s", e.Kind, e.Stage, e.Ref, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the failed unit is worth another attempt
// within the same run.
func (e *PipelineError) IsRetryable() bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindRateLimit:
		return false
	case KindParsing:
		return false
	default:
		return false
	}
}

// New creates a new PipelineError
func New(kind Kind, stage, ref, message string, err error) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Stage:   stage,
		Ref:     ref,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(stage, ref, message string, err error) *PipelineError {
	return New(KindNetwork, stage, ref, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(stage, ref, message string, err error) *PipelineError {
	return New(KindParsing, stage, ref, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(stage string, duration time.Duration) *PipelineError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(KindRateLimit, stage, "", message, nil)
}

// NewStore creates a new persistence error
func NewStore(stage, ref, message string, err error) *PipelineError {
	return New(KindStore, stage, ref, message, err)
}

// NewNotify creates a new notification error
func NewNotify(ref, message string, err error) *PipelineError {
	return New(KindNotify, "notify", ref, message, err)
}

// NewValidation creates a new validation error
func NewValidation(stage, ref, message string) *PipelineError {
	return New(KindValidation, stage, ref, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(KindConfiguration, "startup", "", message, err)
}
