package model

// ErrorKind is the closed set of failure categories the aggregation
// pipeline can surface. Raw transport and status errors are classified
// into one of these at a single point in the github service.
type ErrorKind string

const (
	ErrorKindNotFound     ErrorKind = "not_found"
	ErrorKindRateLimit    ErrorKind = "rate_limit"
	ErrorKindServerError  ErrorKind = "server_error"
	ErrorKindNetworkError ErrorKind = "network_error"
	ErrorKindUnknown      ErrorKind = "unknown"
)

// APIError is the error value returned instead of Analytics on any
// unrecoverable failure. Status mirrors HTTP semantics (400 for input
// validation, 404/403/5xx passthrough from GitHub, 500 for internal).
type APIError struct {
	Kind      ErrorKind `json:"type"`
	Message   string    `json:"message"`
	Status    int       `json:"status"`
	RetryHint string    `json:"retryHint,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(kind ErrorKind, status int, message string) *APIError {
	return &APIError{
		Kind:    kind,
		Message: message,
		Status:  status,
	}
}

// AsAPIError converts any error to an *APIError, wrapping unexpected
// errors as unknown so a raw error never reaches the controller.
func AsAPIError(err error) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	return NewAPIError(ErrorKindUnknown, 500, "an unexpected error occurred")
}
