package warming

import (
	"context"
	"net/http"
	"testing"

	"github.com/almonzeir/myscholar-cache/internal/testutil"
)

func TestHTTPLoader_FetchesJSON(t *testing.T) {
	upstream := testutil.NewMockUpstream()
	t.Cleanup(upstream.Close)
	upstream.HandleJSON("/v1/countries", `["Germany","France"]`)

	client := NewHTTPClient(upstream.URL())
	load := HTTPLoader(client, "/v1/countries")

	data, err := load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	list, ok := data.([]any)
	if !ok || len(list) != 2 || list[0] != "Germany" {
		t.Errorf("loaded %#v, want the decoded JSON array", data)
	}
}

func TestHTTPLoader_UpstreamError(t *testing.T) {
	upstream := testutil.NewMockUpstream()
	t.Cleanup(upstream.Close)
	upstream.HandleStatus("/v1/stats", http.StatusServiceUnavailable)

	client := NewHTTPClient(upstream.URL())
	load := HTTPLoader(client, "/v1/stats")

	if _, err := load(context.Background()); err == nil {
		t.Fatal("expected an error for a 503 upstream response")
	}
}

func TestHTTPLoader_RetriesTransientFailures(t *testing.T) {
	upstream := testutil.NewMockUpstream()
	t.Cleanup(upstream.Close)

	attempts := 0
	upstream.Handle("/v1/fields", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["physics"]`))
	})

	client := NewHTTPClient(upstream.URL())
	load := HTTPLoader(client, "/v1/fields")

	data, err := load(context.Background())
	if err != nil {
		t.Fatalf("load after retry: %v", err)
	}
	if attempts < 2 {
		t.Errorf("attempts = %d, want at least one retry", attempts)
	}
	if list, ok := data.([]any); !ok || len(list) != 1 {
		t.Errorf("loaded %#v, want the decoded JSON array", data)
	}
}
