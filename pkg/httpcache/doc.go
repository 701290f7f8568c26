// Package httpcache provides transparent response caching for net/http
// handlers backed by the in-process cache store.
//
// Routes opt in explicitly via RouteConfig; requests to unconfigured routes
// pass through untouched. Cached responses replay with X-Cache: HIT and
// X-Cache-Age headers, fresh responses carry X-Cache: MISS and X-Cache-Time.
//
// Caching is best-effort: any fault while consulting or writing the cache is
// contained and the request is served by the wrapped handler as a forced
// miss. A cache outage degrades to higher latency, never to request failure.
package httpcache
