package errors

const (
	HttpInternalError        = "internal_error"
	HttpInvalidJsonError     = "invalid_json"
	HttpBadRequestError      = "bad_request"
	HttpUnsupportedTypeError = "unsupported_type"
	HttpNotFoundError        = "not_found"
	HttpConflictError        = "conflict"
	HttpStorageError         = "storage_failure"
)

// ErrorResponse is the error response body of the saved objects API.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
