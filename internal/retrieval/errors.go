package retrieval

import "fmt"

// APIError is returned when the retrieval backend answers with a non-2xx
// status or a body that cannot be decoded.
type APIError struct {
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("retrieval %s failed (code %d): %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("retrieval %s failed: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
