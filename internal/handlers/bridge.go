package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Bridge turns incoming HTTP requests into a Source. Each request waits
// until a pipeline worker has answered it.
type Bridge struct {
	exchanges chan *httpExchange
	closed    chan struct{}
	once      sync.Once
}

type httpExchange struct {
	req  *Request
	done chan *Response
}

func (e *httpExchange) Request() *Request {
	return e.req
}

func (e *httpExchange) Respond(resp *Response) error {
	e.done <- resp
	return nil
}

func NewBridge() *Bridge {
	return &Bridge{
		exchanges: make(chan *httpExchange),
		closed:    make(chan struct{}),
	}
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ex := &httpExchange{
		req:  requestFromHTTP(r),
		done: make(chan *Response, 1),
	}

	select {
	case b.exchanges <- ex:
	case <-b.closed:
		writeResponse(w, errorResponse(http.StatusServiceUnavailable, time.Now(), "Server is shutting down"))
		return
	case <-r.Context().Done():
		return
	}

	// The worker owns r.Body until it responds, so wait even if the client
	// has gone away.
	writeResponse(w, <-ex.done)
}

func (b *Bridge) Next(ctx context.Context) (Exchange, error) {
	select {
	case ex := <-b.exchanges:
		return ex, nil
	case <-b.closed:
		return nil, ErrSourceClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops handing out requests. Requests already taken by a worker are
// still answered.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.closed) })
}

func requestFromHTTP(r *http.Request) *Request {
	return &Request{
		Method:        r.Method,
		ContentType:   r.Header.Get("Content-Type"),
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		ContentLength: r.ContentLength,
		RemoteAddr:    getClientIP(r),
		Body:          r.Body,
	}
}
