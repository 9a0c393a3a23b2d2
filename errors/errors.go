package errors

import (
	"errors"
	"net/http"
)

var (
	BadRequest          = HttpError{http.StatusBadRequest, errors.New("bad request")}
	InternalServerError = HttpError{http.StatusInternalServerError, errors.New("internal server error")}
	ServiceUnavailable  = HttpError{http.StatusServiceUnavailable, errors.New("service unavailable")}
)

type HttpError struct {
	Code int
	Err  error
}

func (h HttpError) Unwrap() error {
	return h.Err
}

func (h HttpError) Error() string {
	return h.Err.Error()
}
