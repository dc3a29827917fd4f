package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// ErrSourceClosed is returned by a Source that will not produce more
// requests.
var ErrSourceClosed = errors.New("request source closed")

// Request is one accepted unit of work, independent of the transport that
// delivered it.
type Request struct {
	Method        string
	ContentType   string
	Path          string
	Query         string
	ContentLength int64 // -1 when unknown
	RemoteAddr    string
	Body          io.Reader
}

// Response is a fully rendered reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Exchange pairs a request with the means to answer it.
type Exchange interface {
	Request() *Request
	Respond(*Response) error
}

// Source hands out requests one at a time.
type Source interface {
	Next(ctx context.Context) (Exchange, error)
}

// TransportError is a request whose body could not be read or decoded.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
