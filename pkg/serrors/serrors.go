package serrors

// Error is a coded API error suitable for JSON serialization.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) WithDetails(details map[string]string) *Error {
	out := *e
	out.Details = details
	return &out
}
