package httpcache

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/almonzeir/myscholar-cache/pkg/cache"
	"github.com/almonzeir/myscholar-cache/pkg/keys"
	"github.com/almonzeir/myscholar-cache/pkg/logging"
)

// RouteConfig describes caching for one route.
type RouteConfig struct {
	// TTL for stored responses; zero falls back to the key's prefix
	// default (api:* for generated keys).
	TTL time.Duration

	// Tags attached to stored responses for bulk invalidation.
	Tags []string

	// KeyGenerator overrides the default path+query key. The returned
	// string is used as the cache key base.
	KeyGenerator func(r *http.Request) string

	// ShouldCache decides whether a fresh response is stored. Unset means
	// "cache every response with status below 400".
	ShouldCache func(r *http.Request, resp *CachedResponse) bool

	// VaryBy lists request headers whose values partition the cache, in
	// order (e.g. a user-id header on user-scoped routes).
	VaryBy []string
}

// Middleware caches full responses for configured routes.
type Middleware struct {
	store  *cache.Store
	routes map[string]RouteConfig
	logger zerolog.Logger
}

// New creates a middleware over store with no routes configured.
func New(store *cache.Store) *Middleware {
	return &Middleware{
		store:  store,
		routes: make(map[string]RouteConfig),
		logger: logging.NewLogger("httpcache"),
	}
}

// Route registers caching for METHOD path. Routes are matched exactly.
func (m *Middleware) Route(method, path string, cfg RouteConfig) {
	m.routes[method+" "+path] = cfg
}

// Handler wraps next with response caching. Unconfigured routes pass through
// untouched.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg, ok := m.routes[r.Method+" "+r.URL.Path]
		if !ok {
			requestsTotal.WithLabelValues("bypass").Inc()
			next.ServeHTTP(w, r)
			return
		}

		key, ok := m.cacheKey(r, cfg)
		if !ok {
			// Key generation faulted; serve uncached.
			next.ServeHTTP(w, r)
			return
		}

		if cached, ok := m.lookup(key); ok {
			requestsTotal.WithLabelValues("hit").Inc()
			m.replay(w, cached)
			return
		}

		start := time.Now()
		rec := newRecorder()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		resp := rec.snapshot(time.Now())
		if m.shouldCache(r, resp, cfg) {
			m.storeResponse(key, resp, cfg)
		}

		requestsTotal.WithLabelValues("miss").Inc()
		copyHeader(w.Header(), resp.Header)
		w.Header().Set("X-Cache", "MISS")
		w.Header().Set("X-Cache-Time", strconv.FormatInt(elapsed.Milliseconds(), 10))
		w.WriteHeader(resp.Status)
		w.Write(resp.Body)
	})
}

// cacheKey computes the route's cache key: the configured generator or a
// base64 encoding of path+query, plus a vary suffix when VaryBy is set.
// Reports ok=false if a custom generator panicked.
func (m *Middleware) cacheKey(r *http.Request, cfg RouteConfig) (key string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			faultsTotal.Inc()
			m.logger.Warn().
				Str("path", r.URL.Path).
				Interface("panic", rec).
				Msg("key generator fault, serving uncached")
			ok = false
		}
	}()

	if cfg.KeyGenerator != nil {
		key = cfg.KeyGenerator(r)
	} else {
		raw := r.URL.Path
		if r.URL.RawQuery != "" {
			raw += "?" + r.URL.RawQuery
		}
		key = keys.PrefixAPI + base64.RawURLEncoding.EncodeToString([]byte(raw))
	}

	if len(cfg.VaryBy) > 0 {
		values := make([]string, len(cfg.VaryBy))
		for i, name := range cfg.VaryBy {
			values[i] = r.Header.Get(name)
		}
		suffix := base64.RawURLEncoding.EncodeToString([]byte(strings.Join(values, "|")))
		key += ":vary:" + suffix
	}

	return key, true
}

// lookup consults the store, containing any fault as a forced miss.
func (m *Middleware) lookup(key string) (resp *CachedResponse, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			faultsTotal.Inc()
			m.logger.Warn().
				Str("key", key).
				Interface("panic", rec).
				Msg("cache lookup fault, forced miss")
			resp, ok = nil, false
		}
	}()

	return cache.GetAs[*CachedResponse](m.store, key)
}

// storeResponse writes the captured response, containing any fault.
func (m *Middleware) storeResponse(key string, resp *CachedResponse, cfg RouteConfig) {
	defer func() {
		if rec := recover(); rec != nil {
			faultsTotal.Inc()
			m.logger.Warn().
				Str("key", key).
				Interface("panic", rec).
				Msg("cache write fault, response served uncached")
		}
	}()

	opts := []cache.SetOption{cache.WithTags(cfg.Tags...)}
	if cfg.TTL > 0 {
		opts = append(opts, cache.WithTTL(cfg.TTL))
	}
	m.store.Set(key, resp, opts...)
}

// shouldCache applies the route's predicate, defaulting to "status < 400".
func (m *Middleware) shouldCache(r *http.Request, resp *CachedResponse, cfg RouteConfig) bool {
	if cfg.ShouldCache != nil {
		return cfg.ShouldCache(r, resp)
	}
	return resp.Status < http.StatusBadRequest
}

// replay writes a cached response back to the caller.
func (m *Middleware) replay(w http.ResponseWriter, resp *CachedResponse) {
	copyHeader(w.Header(), resp.Header)
	age := time.Since(resp.CachedAt).Milliseconds()
	w.Header().Set("X-Cache", "HIT")
	w.Header().Set("X-Cache-Age", strconv.FormatInt(age, 10))
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

func copyHeader(dst, src http.Header) {
	for name, values := range src {
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
