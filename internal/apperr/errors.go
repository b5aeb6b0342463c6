package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidSelector Code = "INVALID_SELECTOR"
	CodeInvalidParam    Code = "INVALID_PARAMETER"
	CodeDataAccess      Code = "DATA_ACCESS_FAILURE"
	CodeUnknownTenant   Code = "UNKNOWN_TENANT"
	CodeInternal        Code = "INTERNAL"
)

// Error es lo único que llega al cliente: Code + Message. Err queda para logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidSelector(format string, args ...any) error {
	return &Error{Code: CodeInvalidSelector, Message: fmt.Sprintf(format, args...)}
}

func InvalidParam(name, value string) error {
	return &Error{Code: CodeInvalidParam, Message: fmt.Sprintf("invalid value %q for %s", value, name)}
}

func DataAccess(err error) error {
	return &Error{Code: CodeDataAccess, Message: "data source unavailable", Err: err}
}

func UnknownTenant(name string) error {
	return &Error{Code: CodeUnknownTenant, Message: fmt.Sprintf("unknown database %q", name)}
}

// As devuelve el *Error de la cadena, o uno INTERNAL que envuelve err.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func Status(err error) int {
	switch As(err).Code {
	case CodeInvalidSelector, CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnknownTenant:
		return http.StatusNotFound
	case CodeDataAccess:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
