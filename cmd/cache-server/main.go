// Command cache-server runs the cache engine as an operational HTTP service:
// demo API routes served through the caching middleware, the admin cache
// surface, Prometheus metrics, and the scheduled cache warmer.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/almonzeir/myscholar-cache/pkg/cache"
	"github.com/almonzeir/myscholar-cache/pkg/httpcache"
	"github.com/almonzeir/myscholar-cache/pkg/keys"
	"github.com/almonzeir/myscholar-cache/pkg/logging"
	"github.com/almonzeir/myscholar-cache/pkg/warming"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "false") == "true",
		Output: os.Stderr,
	})

	port := getEnv("PORT", "8080")

	storeCfg := cache.DefaultConfig()
	if v, err := strconv.Atoi(getEnv("CACHE_MAX_ENTRIES", "")); err == nil && v > 0 {
		storeCfg.MaxEntries = v
	}
	if v, err := strconv.ParseInt(getEnv("CACHE_MAX_MEMORY_BYTES", ""), 10, 64); err == nil && v > 0 {
		storeCfg.MaxMemory = v
	}

	store := cache.New(storeCfg)
	defer store.Close()

	warmer := warming.New(store, warming.DefaultConfig())
	warmer.Start()
	defer warmer.Stop()

	e := newServer(store, warmer)

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()
	logger.Info().
		Str("port", port).
		Int("max_entries", storeCfg.MaxEntries).
		Int64("max_memory", storeCfg.MaxMemory).
		Msg("cache server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
	logger.Info().Msg("cache server stopped")
}

// newServer wires routes, the caching middleware, and the admin surface.
func newServer(store *cache.Store, warmer *warming.Warmer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())

	mw := httpcache.New(store)
	// Response-cache keys are distinct from the warmer's data keys: the
	// handlers read warmed payloads, the middleware caches their rendered
	// responses.
	mw.Route(http.MethodGet, "/api/scholarships/featured", httpcache.RouteConfig{
		TTL:  time.Hour,
		Tags: []string{keys.TagScholarships, keys.TagPublicData},
		KeyGenerator: func(*http.Request) string {
			return keys.PrefixAPI + "featured:response"
		},
	})
	mw.Route(http.MethodGet, "/api/search", httpcache.RouteConfig{
		TTL:  10 * time.Minute,
		Tags: []string{keys.TagSearch},
	})
	mw.Route(http.MethodGet, "/api/stats", httpcache.RouteConfig{
		TTL:  5 * time.Minute,
		Tags: []string{keys.TagStats},
		KeyGenerator: func(*http.Request) string {
			return keys.PrefixAPI + "stats:response"
		},
	})
	e.Use(echo.WrapMiddleware(mw.Handler))

	e.GET("/health", healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/api/scholarships/featured", featuredHandler(store))
	e.GET("/api/search", searchHandler)
	e.GET("/api/stats", statsHandler(store))

	admin := &adminHandler{store: store, warmer: warmer}
	e.GET("/admin/cache", admin.stats)
	e.DELETE("/admin/cache", admin.mutate)
	e.POST("/admin/cache", admin.warm)

	return e
}

func healthHandler(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// featuredHandler serves the featured-scholarship list, preferring whatever
// the warmer already planted.
func featuredHandler(store *cache.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if v := lookupWarmed(store, keys.FeaturedScholarships()); v != nil {
			return c.JSON(http.StatusOK, v)
		}
		return c.JSON(http.StatusOK, []map[string]any{
			{"id": "daad-epos", "name": "DAAD EPOS", "country": "Germany"},
		})
	}
}

func searchHandler(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing q parameter"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"query":   query,
		"results": []map[string]any{{"id": "daad-epos", "score": 0.92}},
	})
}

func statsHandler(store *cache.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if v := lookupWarmed(store, keys.AggregateStats()); v != nil {
			return c.JSON(http.StatusOK, v)
		}
		return c.JSON(http.StatusOK, map[string]int{"scholarships": 0})
	}
}

// lookupWarmed reads a warmer-planted key without going through the caching
// middleware's own entry for the route.
func lookupWarmed(store *cache.Store, key string) any {
	v, ok := store.Get(key)
	if !ok {
		return nil
	}
	return v
}

// adminHandler exposes the administrative cache surface.
type adminHandler struct {
	store  *cache.Store
	warmer *warming.Warmer
}

// stats answers GET /admin/cache with a snapshot plus a timestamp.
func (h *adminHandler) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"stats":     h.store.Stats(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// mutate answers DELETE /admin/cache?action=....
func (h *adminHandler) mutate(c echo.Context) error {
	switch action := c.QueryParam("action"); action {
	case "clear":
		h.store.Clear()
		return c.JSON(http.StatusOK, map[string]any{"cleared": true})

	case "invalidate-tags":
		tags := splitParam(c.QueryParam("tags"))
		if len(tags) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing tags parameter"})
		}
		count := h.store.InvalidateByTags(tags)
		return c.JSON(http.StatusOK, map[string]any{"invalidated": count})

	case "delete-keys":
		cacheKeys := splitParam(c.QueryParam("keys"))
		if len(cacheKeys) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing keys parameter"})
		}
		for _, key := range cacheKeys {
			h.store.Delete(key)
		}
		return c.JSON(http.StatusOK, map[string]any{"deleted": len(cacheKeys)})

	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown action: " + action})
	}
}

// warm answers POST /admin/cache: queue and drain a small literal dataset.
func (h *adminHandler) warm(c echo.Context) error {
	h.warmer.AddTask(warming.Task{
		Key:      keys.FeaturedScholarships(),
		Data:     []map[string]any{{"id": "daad-epos", "name": "DAAD EPOS", "country": "Germany"}},
		TTL:      time.Hour,
		Tags:     []string{keys.TagScholarships, keys.TagPublicData},
		Priority: warming.PriorityHigh,
	})
	h.warmer.AddTask(warming.Task{
		Key:      keys.Countries(),
		Data:     []string{"Germany", "France", "Netherlands"},
		TTL:      24 * time.Hour,
		Tags:     []string{keys.TagPublicData},
		Priority: warming.PriorityMedium,
	})

	result := h.warmer.ProcessQueue(c.Request().Context())
	return c.JSON(http.StatusOK, result)
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
