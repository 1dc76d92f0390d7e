package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyTask is returned by Add for blank input; nothing is sent.
var ErrEmptyTask = errors.New("empty task")

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
