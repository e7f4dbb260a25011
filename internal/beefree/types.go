package beefree

import "errors"

// ErrMissingToken is returned by NewClient when no API token is configured.
var ErrMissingToken = errors.New("beefree API token is required")

// ErrorType classifies a failed conversion.
type ErrorType string

const (
	TypeValidation     ErrorType = "validation_error"
	TypeAuthentication ErrorType = "authentication_error"
	TypeContent        ErrorType = "content_error"
	TypeRateLimit      ErrorType = "rate_limit"
	TypeServer         ErrorType = "server_error"
	TypeTimeout        ErrorType = "timeout"
	TypeUnknownStatus  ErrorType = "unknown_error"
	TypeUnknown        ErrorType = "unknown"
)

// Result is the outcome of one conversion call. Exactly one of Success and
// Failure is non-nil.
type Result struct {
	Success *Success `json:"success,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// OK reports whether the conversion succeeded.
func (r Result) OK() bool { return r.Success != nil }

// Success carries the converted Bee JSON and whatever else the API returned.
type Success struct {
	JSON           map[string]any `json:"json"`
	HTML           *string        `json:"html,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	ResponseTimeMs *float64       `json:"response_time_ms,omitempty"`
}

// Failure describes why a conversion did not produce Bee JSON.
type Failure struct {
	ErrorType         ErrorType `json:"error_type"`
	Message           string    `json:"message"`
	Details           []string  `json:"details,omitempty"`
	RetryAfterSeconds *int      `json:"retry_after_seconds,omitempty"`
}

func (f *Failure) Error() string { return f.Message }

func failed(t ErrorType, msg string, details []string) Result {
	return Result{Failure: &Failure{ErrorType: t, Message: msg, Details: details}}
}

// ConnectionStatus is the report produced by TestConnection.
type ConnectionStatus struct {
	Status         string    `json:"status"` // "connected" or "error"
	Message        string    `json:"message"`
	ResponseTimeMs *float64  `json:"response_time_ms,omitempty"`
	ErrorType      ErrorType `json:"error_type,omitempty"`
}
