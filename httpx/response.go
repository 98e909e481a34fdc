package httpx

import (
	"bytes"
	"net/http"
	"strconv"
)

// ResponseBuffer is an http.ResponseWriter that keeps the whole response
// in memory until Flush. Pages are rendered into it, so a template error
// halfway through still turns into a clean 500.
type ResponseBuffer struct {
	bytes.Buffer
	status int
	header http.Header
}

func NewResponseBuffer() *ResponseBuffer {
	return &ResponseBuffer{header: http.Header{}}
}

func (b *ResponseBuffer) Header() http.Header {
	return b.header
}

// WriteHeader records the status; the first call wins, as on a real
// connection.
func (b *ResponseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

// Status is the recorded status, 200 if none was set.
func (b *ResponseBuffer) Status() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

// Flush copies headers, status and body to w. Content-Length is set from
// the buffered body.
func (b *ResponseBuffer) Flush(w http.ResponseWriter) error {
	header := w.Header()
	for key, values := range b.header {
		header[key] = values
	}
	header.Set("content-length", strconv.Itoa(b.Len()))

	w.WriteHeader(b.Status())
	_, err := w.Write(b.Bytes())
	return err
}
