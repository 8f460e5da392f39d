package weberr

import (
	"errors"
	"net/http"
)

type headerer interface {
	Header() (key, value string)
}

// Headers collects every header attached along the wrap chain.
func Headers(err error) http.Header {
	h := make(http.Header)
	for err != nil {
		if he, ok := err.(headerer); ok {
			k, v := he.Header()
			h.Set(k, v)
		}
		err = errors.Unwrap(err)
	}
	return h
}

type headerError struct {
	error
	key, value string
}

func (e *headerError) Header() (string, string) { return e.key, e.value }

func (e *headerError) Unwrap() error { return e.error }
