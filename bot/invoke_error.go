package bot

import (
	"fmt"
	"net/http"

	"github.com/hupe1980/botmesh/schema"
)

// InvokeError is the structured error invoke hooks return to control the
// invoke response. It is caught at the dispatch boundary and converted into
// the response body and status; it never propagates past ActivityHandler.
type InvokeError struct {
	Status  int
	Code    string
	Message string
}

// NewInvokeError builds an InvokeError.
func NewInvokeError(status int, code, message string) *InvokeError {
	return &InvokeError{Status: status, Code: code, Message: message}
}

// Error implements error.
func (e *InvokeError) Error() string {
	return fmt.Sprintf("invoke error %d %s: %s", e.Status, e.Code, e.Message)
}

// Response converts the error into its wire-level invoke response.
func (e *InvokeError) Response() *schema.InvokeResponse {
	return &schema.InvokeResponse{
		Status: e.Status,
		Body: schema.ErrorResponse{
			Error: schema.Error{Code: e.Code, Message: e.Message},
		},
	}
}

func notImplementedError(name string) *InvokeError {
	return NewInvokeError(http.StatusNotImplemented, "NotImplemented", fmt.Sprintf("invoke %q is not implemented", name))
}

func badRequestError(message string) *InvokeError {
	return NewInvokeError(http.StatusBadRequest, "BadRequest", message)
}
