package middleware

import (
	"net/http"
	"sync/atomic"
)

// ResponseWriter records the status code and body size written by a handler
type ResponseWriter struct {
	http.ResponseWriter
	statusCode  int32
	written     int32
	wroteHeader atomic.Bool
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader.Swap(true) {
		return
	}
	atomic.StoreInt32(&rw.statusCode, int32(code))
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(data []byte) (int, error) {
	rw.wroteHeader.Store(true)
	n, err := rw.ResponseWriter.Write(data)
	if n > 0 {
		atomic.AddInt32(&rw.written, int32(n))
	}
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *ResponseWriter) StatusCode() int {
	return int(atomic.LoadInt32(&rw.statusCode))
}

func (rw *ResponseWriter) BytesWritten() int {
	return int(atomic.LoadInt32(&rw.written))
}

func (rw *ResponseWriter) HasBody() bool {
	return atomic.LoadInt32(&rw.written) > 0
}

// HeaderWritten reports whether the status line has been sent
func (rw *ResponseWriter) HeaderWritten() bool {
	return rw.wroteHeader.Load()
}
