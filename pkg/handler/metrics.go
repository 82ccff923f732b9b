package handler

import "sync/atomic"

// Metrics holds atomic counters for a Handler's activity, consumed by
// pkg/prometheuscollector. The per-method/per-status maps are built once
// at construction for the small, fixed set of values this protocol uses,
// so no locking is needed to read or update them.
type Metrics struct {
	requestsTotal   map[string]*uint64
	errorsTotal     map[int]*uint64
	bytesReceived   *uint64
	uploadsCreated  *uint64
	uploadsComplete *uint64
}

func newMetrics() Metrics {
	m := Metrics{
		requestsTotal:   make(map[string]*uint64),
		errorsTotal:     make(map[int]*uint64),
		bytesReceived:   new(uint64),
		uploadsCreated:  new(uint64),
		uploadsComplete: new(uint64),
	}
	for _, method := range []string{"OPTIONS", "HEAD", "POST", "PATCH", "GET"} {
		m.requestsTotal[method] = new(uint64)
	}
	for _, status := range []int{400, 403, 404, 405, 409, 412, 413, 415, 500} {
		m.errorsTotal[status] = new(uint64)
	}
	return m
}

func (m Metrics) incRequestsTotal(method string) {
	if counter, ok := m.requestsTotal[method]; ok {
		atomic.AddUint64(counter, 1)
	}
}

func (m Metrics) incErrorsTotal(status int) {
	if counter, ok := m.errorsTotal[status]; ok {
		atomic.AddUint64(counter, 1)
	}
}

func (m Metrics) addBytesReceived(n int64) {
	atomic.AddUint64(m.bytesReceived, uint64(n))
}

func (m Metrics) incUploadsCreated() {
	atomic.AddUint64(m.uploadsCreated, 1)
}

func (m Metrics) incUploadsComplete() {
	atomic.AddUint64(m.uploadsComplete, 1)
}

// RequestsTotal returns a snapshot of requests served per method.
func (m Metrics) RequestsTotal() map[string]uint64 {
	out := make(map[string]uint64, len(m.requestsTotal))
	for method, counter := range m.requestsTotal {
		out[method] = atomic.LoadUint64(counter)
	}
	return out
}

// ErrorsTotal returns a snapshot of errors served per HTTP status code.
func (m Metrics) ErrorsTotal() map[int]uint64 {
	out := make(map[int]uint64, len(m.errorsTotal))
	for status, counter := range m.errorsTotal {
		out[status] = atomic.LoadUint64(counter)
	}
	return out
}

// BytesReceived returns the total number of upload bytes received.
func (m Metrics) BytesReceived() uint64 { return atomic.LoadUint64(m.bytesReceived) }

// UploadsCreated returns the total number of uploads created via POST.
func (m Metrics) UploadsCreated() uint64 { return atomic.LoadUint64(m.uploadsCreated) }

// UploadsComplete returns the total number of uploads that reached
// completion.
func (m Metrics) UploadsComplete() uint64 { return atomic.LoadUint64(m.uploadsComplete) }
