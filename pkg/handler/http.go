package handler

import (
	"maps"
	"net/http"
	"strconv"
)

// HTTPHeader is a flat map of header names to values, used for the small,
// fixed header sets this package emits.
type HTTPHeader map[string]string

// HTTPResponse is the response a ProtocolHandler method wants sent to the
// client: a status code, an optional body, and additional headers.
type HTTPResponse struct {
	StatusCode int
	Body       string
	Header     HTTPHeader
}

// writeTo writes resp into w.
func (resp HTTPResponse) writeTo(w http.ResponseWriter) {
	headers := w.Header()
	for key, value := range resp.Header {
		headers.Set(key, value)
	}

	if len(resp.Body) > 0 {
		headers.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}

	w.WriteHeader(resp.StatusCode)

	if len(resp.Body) > 0 {
		w.Write([]byte(resp.Body))
	}
}

// MergeWith returns a copy of resp, where non-default values from other
// overwrite values from resp. Used by POST to combine its 201 Created
// headers with the response of a creation-with-upload append.
func (resp HTTPResponse) MergeWith(other HTTPResponse) HTTPResponse {
	merged := resp

	if other.StatusCode != 0 {
		merged.StatusCode = other.StatusCode
	}
	if len(other.Body) > 0 {
		merged.Body = other.Body
	}

	merged.Header = make(HTTPHeader, len(resp.Header)+len(other.Header))
	maps.Copy(merged.Header, resp.Header)
	maps.Copy(merged.Header, other.Header)

	return merged
}
