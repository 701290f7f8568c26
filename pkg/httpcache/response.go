package httpcache

import (
	"bytes"
	"net/http"
	"time"
)

// CachedResponse is the payload stored per route: enough to replay the
// response byte-for-byte later.
type CachedResponse struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	CachedAt time.Time   `json:"cached_at"`
}

// recorder captures a handler's response instead of writing it to the wire,
// so the body can be both cached and replayed to the actual caller.
type recorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

// snapshot converts the captured state into a CachedResponse. The body is
// copied so the cached entry never aliases the recorder's buffer.
func (r *recorder) snapshot(at time.Time) *CachedResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	body := make([]byte, r.body.Len())
	copy(body, r.body.Bytes())

	return &CachedResponse{
		Status:   status,
		Header:   r.header.Clone(),
		Body:     body,
		CachedAt: at,
	}
}
