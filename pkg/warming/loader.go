package warming

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Loader produces the value for one essential key. Loaders run outside the
// store lock; a failing loader fails only its own task.
type Loader func(ctx context.Context) (any, error)

// StaticLoader returns data as-is. Used for the built-in reference datasets.
func StaticLoader(data any) Loader {
	return func(context.Context) (any, error) {
		return data, nil
	}
}

// NewHTTPClient builds the resty client used by HTTP loaders: short timeout,
// transient failures retried with backoff.
func NewHTTPClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
}

// HTTPLoader fetches a JSON document from path on client's base URL.
func HTTPLoader(client *resty.Client, path string) Loader {
	return func(ctx context.Context) (any, error) {
		var payload any
		resp, err := client.R().
			SetContext(ctx).
			SetResult(&payload).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch %s: %s", path, resp.Status())
		}
		return payload, nil
	}
}
