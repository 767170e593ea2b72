package llm

import "fmt"

// ErrorType classifies an LLMError.
type ErrorType string

const (
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeAPI     ErrorType = "api"
	ErrorTypeTimeout ErrorType = "timeout"
	ErrorTypeParse   ErrorType = "parse"
)

// LLMError is returned by every Client call that fails. Code is the HTTP
// status for api errors and 0 otherwise.
type LLMError struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *LLMError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("LLM %s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("LLM %s error: %s", e.Type, e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *LLMError {
	return &LLMError{Type: ErrorTypeNetwork, Message: "could not reach the OpenAI API", Err: err}
}

// NewAPIError reports a non-200 response. message is the API's own error text.
func NewAPIError(code int, message string) *LLMError {
	return &LLMError{Type: ErrorTypeAPI, Code: code, Message: "OpenAI API error: " + message}
}

// NewTimeoutError reports a request that ran past its deadline.
func NewTimeoutError(err error) *LLMError {
	return &LLMError{Type: ErrorTypeTimeout, Message: "request to the OpenAI API timed out", Err: err}
}

// NewParseError reports a response body that could not be decoded.
func NewParseError(content string, err error) *LLMError {
	return &LLMError{Type: ErrorTypeParse, Message: "could not decode response: " + content, Err: err}
}
