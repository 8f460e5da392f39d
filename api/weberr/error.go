package weberr

import (
	"net/http"
	"strconv"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// FieldsResponse reports every invalid input field at once.
type FieldsResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{msg},
		status,
	))

	return Wrap(e, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(
		err,
		"not authorized to access resource",
		http.StatusUnauthorized,
		opts...,
	)
}

func Forbidden(err error, opts ...Opt) error {
	return NewError(
		err,
		"access denied",
		http.StatusForbidden,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		"bad request",
		http.StatusBadRequest,
		opts...,
	)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(
		err,
		"too many requests, slow down",
		http.StatusTooManyRequests,
		opts...,
	)
}

// Upstream reports a failed backend call; msg is shown to the user.
func Upstream(err error, msg string, opts ...Opt) error {
	return NewError(err, msg, http.StatusBadGateway, opts...)
}

func Unavailable(err error, msg string, retryAfter int, opts ...Opt) error {
	opts = append(opts, WithHeader("Retry-After", strconv.Itoa(retryAfter)))
	return NewError(err, msg, http.StatusServiceUnavailable, opts...)
}

func Invalid(err error, msg string, fields map[string]string, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&FieldsResponse{Error: msg, Fields: fields},
		http.StatusUnprocessableEntity,
	))

	return Wrap(e, opts...)
}
