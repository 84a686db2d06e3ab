package constants

import (
	"fmt"
	"net/http"
)

// CodedError is an error that knows which HTTP status it should be answered with.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound = NewCodedError(http.StatusNotFound, "not found in db")
	ErrBadRequest = NewCodedError(http.StatusBadRequest, "bad request")
)

// ValidationError reports a malformed request parameter.
func ValidationError(field string, format string, args ...any) *CodedError {
	return NewCodedError(http.StatusBadRequest, fmt.Sprintf("%s: %s", field, fmt.Sprintf(format, args...)))
}
