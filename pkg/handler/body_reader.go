package handler

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
)

// bodyReader wraps a PATCH request body so that the ragged ways a client
// connection can die (timeout, reset, abrupt close) all surface the same
// way to the append engine: as io.EOF, with the underlying cause stashed
// for the handler to inspect afterwards. This lets pkg/filestore's
// streaming copy stay unaware of HTTP-specific failure modes — it just
// sees a reader that ended.
type bodyReader struct {
	reader io.ReadCloser
	err    error
}

func newBodyReader(w http.ResponseWriter, r *http.Request, maxSize int64) *bodyReader {
	var reader io.ReadCloser = r.Body
	if maxSize > 0 {
		reader = http.MaxBytesReader(w, r.Body, maxSize)
	}
	return &bodyReader{reader: reader}
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.reader.Read(p)
	if err == nil || err == io.EOF {
		return n, err
	}

	switch {
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrClosedPipe):
		// The client disconnected mid-upload. Whatever was flushed to
		// disk before this point stands; the next PATCH must resync on
		// the new offset.
		b.err = err
		return n, io.EOF
	case strings.HasSuffix(err.Error(), "read: connection reset by peer"):
		b.err = ErrConnectionReset
		return n, io.EOF
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		b.err = ErrSizeExceeded
		return n, io.EOF
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		b.err = ErrReadTimeout
		return n, io.EOF
	}

	b.err = err
	return n, io.EOF
}

func (b *bodyReader) Close() error {
	return b.reader.Close()
}

// Err returns the underlying cause the body stopped before io.EOF was
// reached naturally, or nil if it read to completion.
func (b *bodyReader) Err() error {
	return b.err
}

var (
	ErrConnectionReset = NewError("ERR_CONNECTION_RESET", "TCP connection reset by peer", 500)
	ErrReadTimeout     = NewError("ERR_READ_TIMEOUT", "timeout while reading request body", 500)
	ErrSizeExceeded    = NewError("ERR_UPLOAD_SIZE_EXCEEDED", "upload's size exceeded", 413)
)
