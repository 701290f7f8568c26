package httpcache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/almonzeir/myscholar-cache/pkg/cache"
	"github.com/almonzeir/myscholar-cache/pkg/keys"
)

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.CleanupInterval = 0
	s := cache.New(cfg)
	t.Cleanup(s.Close)
	return s
}

// countingHandler serves a fixed payload and counts invocations.
type countingHandler struct {
	calls  int
	status int
	body   string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	if h.status != 0 {
		w.WriteHeader(h.status)
	}
	fmt.Fprint(w, h.body)
}

func doRequest(t *testing.T, h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for name, v := range headers {
		req.Header.Set(name, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPassThrough_UnconfiguredRoute(t *testing.T) {
	m := New(newTestStore(t))
	upstream := &countingHandler{body: `{"ok":true}`}
	h := m.Handler(upstream)

	resp := doRequest(t, h, http.MethodGet, "/api/unconfigured", nil)

	if resp.Code != http.StatusOK || resp.Body.String() != `{"ok":true}` {
		t.Errorf("pass-through altered the response: %d %q", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Cache") != "" {
		t.Error("pass-through added X-Cache header")
	}
	if resp.Header().Get("Content-Type") != "application/json" {
		t.Error("pass-through dropped upstream headers")
	}
}

func TestMissThenHit(t *testing.T) {
	m := New(newTestStore(t))
	m.Route(http.MethodGet, "/api/scholarships", RouteConfig{
		TTL:  time.Minute,
		Tags: []string{keys.TagScholarships},
	})
	upstream := &countingHandler{body: `[{"id":42}]`}
	h := m.Handler(upstream)

	first := doRequest(t, h, http.MethodGet, "/api/scholarships", nil)
	if first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first response X-Cache = %q, want MISS", first.Header().Get("X-Cache"))
	}
	if _, err := strconv.Atoi(first.Header().Get("X-Cache-Time")); err != nil {
		t.Errorf("X-Cache-Time %q is not an integer", first.Header().Get("X-Cache-Time"))
	}

	second := doRequest(t, h, http.MethodGet, "/api/scholarships", nil)
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second response X-Cache = %q, want HIT", second.Header().Get("X-Cache"))
	}
	if _, err := strconv.Atoi(second.Header().Get("X-Cache-Age")); err != nil {
		t.Errorf("X-Cache-Age %q is not an integer", second.Header().Get("X-Cache-Age"))
	}

	if upstream.calls != 1 {
		t.Errorf("upstream called %d times, want 1", upstream.calls)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
}

func TestReplayFidelity(t *testing.T) {
	m := New(newTestStore(t))
	m.Route(http.MethodGet, "/api/created", RouteConfig{TTL: time.Minute})
	upstream := &countingHandler{status: http.StatusCreated, body: "payload-bytes"}
	h := m.Handler(upstream)

	first := doRequest(t, h, http.MethodGet, "/api/created", nil)
	second := doRequest(t, h, http.MethodGet, "/api/created", nil)

	if second.Code != first.Code || second.Code != http.StatusCreated {
		t.Errorf("replayed status %d, original %d, want both 201", second.Code, first.Code)
	}
	if second.Body.String() != "payload-bytes" {
		t.Errorf("replayed body %q not byte-identical", second.Body.String())
	}
	if second.Header().Get("Content-Type") != "application/json" {
		t.Error("replay dropped cached response headers")
	}
}

func TestVaryBy_PartitionsEntries(t *testing.T) {
	m := New(newTestStore(t))
	m.Route(http.MethodGet, "/api/profile", RouteConfig{
		TTL:    time.Minute,
		VaryBy: []string{"X-User-ID"},
	})
	upstream := &countingHandler{body: "profile"}
	h := m.Handler(upstream)

	doRequest(t, h, http.MethodGet, "/api/profile", map[string]string{"X-User-ID": "u1"})
	resp := doRequest(t, h, http.MethodGet, "/api/profile", map[string]string{"X-User-ID": "u2"})
	if resp.Header().Get("X-Cache") != "MISS" {
		t.Error("request with a different vary header hit another user's entry")
	}

	resp = doRequest(t, h, http.MethodGet, "/api/profile", map[string]string{"X-User-ID": "u1"})
	if resp.Header().Get("X-Cache") != "HIT" {
		t.Error("request with the same vary header missed its own entry")
	}

	if upstream.calls != 2 {
		t.Errorf("upstream called %d times, want 2", upstream.calls)
	}
}

func TestErrorResponsesNotCachedByDefault(t *testing.T) {
	m := New(newTestStore(t))
	m.Route(http.MethodGet, "/api/broken", RouteConfig{TTL: time.Minute})
	upstream := &countingHandler{status: http.StatusInternalServerError, body: "boom"}
	h := m.Handler(upstream)

	doRequest(t, h, http.MethodGet, "/api/broken", nil)
	doRequest(t, h, http.MethodGet, "/api/broken", nil)

	if upstream.calls != 2 {
		t.Errorf("error response was cached: upstream called %d times, want 2", upstream.calls)
	}
}

func TestShouldCache_Custom(t *testing.T) {
	m := New(newTestStore(t))
	m.Route(http.MethodGet, "/api/never", RouteConfig{
		TTL:         time.Minute,
		ShouldCache: func(*http.Request, *CachedResponse) bool { return false },
	})
	upstream := &countingHandler{body: "fresh"}
	h := m.Handler(upstream)

	doRequest(t, h, http.MethodGet, "/api/never", nil)
	resp := doRequest(t, h, http.MethodGet, "/api/never", nil)

	if resp.Header().Get("X-Cache") != "MISS" || upstream.calls != 2 {
		t.Error("ShouldCache=false response was cached anyway")
	}
}

func TestKeyGenerator_Custom(t *testing.T) {
	store := newTestStore(t)
	m := New(store)
	m.Route(http.MethodGet, "/api/featured", RouteConfig{
		TTL:          time.Minute,
		KeyGenerator: func(*http.Request) string { return keys.FeaturedScholarships() },
	})
	h := m.Handler(&countingHandler{body: "featured"})

	doRequest(t, h, http.MethodGet, "/api/featured", nil)

	if !store.Has(keys.FeaturedScholarships()) {
		t.Error("response not stored under the generator's key")
	}
}

func TestKeyGeneratorFault_ServesUncached(t *testing.T) {
	m := New(newTestStore(t))
	m.Route(http.MethodGet, "/api/faulty", RouteConfig{
		TTL:          time.Minute,
		KeyGenerator: func(*http.Request) string { panic("generator bug") },
	})
	upstream := &countingHandler{body: "served anyway"}
	h := m.Handler(upstream)

	resp := doRequest(t, h, http.MethodGet, "/api/faulty", nil)

	if resp.Code != http.StatusOK || resp.Body.String() != "served anyway" {
		t.Errorf("cache fault leaked to the caller: %d %q", resp.Code, resp.Body.String())
	}
	if upstream.calls != 1 {
		t.Errorf("upstream called %d times, want 1", upstream.calls)
	}
}

func TestTagInvalidationForcesMiss(t *testing.T) {
	store := newTestStore(t)
	m := New(store)
	m.Route(http.MethodGet, "/api/scholarships", RouteConfig{
		TTL:  time.Minute,
		Tags: []string{keys.TagScholarships},
	})
	upstream := &countingHandler{body: "list"}
	h := m.Handler(upstream)

	doRequest(t, h, http.MethodGet, "/api/scholarships", nil)
	store.InvalidateByTags([]string{keys.TagScholarships})
	resp := doRequest(t, h, http.MethodGet, "/api/scholarships", nil)

	if resp.Header().Get("X-Cache") != "MISS" || upstream.calls != 2 {
		t.Error("invalidated route still served from cache")
	}
}

func TestQueryStringPartitionsDefaultKey(t *testing.T) {
	m := New(newTestStore(t))
	m.Route(http.MethodGet, "/api/search", RouteConfig{TTL: time.Minute})
	upstream := &countingHandler{body: "results"}
	h := m.Handler(upstream)

	doRequest(t, h, http.MethodGet, "/api/search?q=physics", nil)
	resp := doRequest(t, h, http.MethodGet, "/api/search?q=math", nil)

	if resp.Header().Get("X-Cache") != "MISS" {
		t.Error("different query strings shared one cache entry")
	}
}
