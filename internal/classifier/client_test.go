package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]Result
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]Result)}
}

func (c *mapCache) Get(_ context.Context, key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[key]
	return result, ok
}

func (c *mapCache) Set(_ context.Context, key string, result Result, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
	c.sets++
}

func newTestClient(baseURL string, cache ResultCache) *Client {
	return NewClient(config.ClassifierConfig{BaseURL: baseURL, TimeoutSeconds: 1}, cache, zap.NewNop())
}

// TestClassify_DecodesAndNormalizes covers the happy path against a stub
// prediction endpoint.
func TestClassify_DecodesAndNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"category":"Water","priority_score":82,"priority_level":"High","confidence":0.91}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	result := client.Classify(context.Background(), "No water supply for three days")

	assert.Equal(t, domain.CategoryWater, result.Category)
	assert.Equal(t, domain.PriorityHigh, result.PriorityLevel)
	assert.Equal(t, 82, result.PriorityScore)
	assert.InDelta(t, 0.91, result.Confidence, 0.001)
}

// TestClassify_UnknownEnumValuesClamped maps out-of-vocabulary responses onto
// the safe fields.
func TestClassify_UnknownEnumValuesClamped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"category":"Potholes","priority_score":140,"priority_level":"Urgent","confidence":0.5}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	result := client.Classify(context.Background(), "pothole")

	assert.Equal(t, domain.CategoryOther, result.Category)
	assert.Equal(t, domain.PriorityMedium, result.PriorityLevel)
	assert.Equal(t, 100, result.PriorityScore)
}

// TestClassify_FailureModesReturnSafeDefault never surfaces an error to the
// caller, whatever the endpoint does.
func TestClassify_FailureModesReturnSafeDefault(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"category":`))
		},
		"slow response": func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(1500 * time.Millisecond)
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			client := newTestClient(server.URL, nil)
			result := client.Classify(context.Background(), "broken transformer sparking")
			assert.Equal(t, SafeDefault(), result)
		})
	}
}

// TestClassify_UnconfiguredBaseURL degrades without making any call.
func TestClassify_UnconfiguredBaseURL(t *testing.T) {
	client := newTestClient("", nil)
	result := client.Classify(context.Background(), "anything")
	assert.Equal(t, SafeDefault(), result)
}

// TestClassify_CacheShortCircuits serves repeat texts from the cache.
func TestClassify_CacheShortCircuits(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"category":"Road","priority_score":40,"priority_level":"Low","confidence":0.7}`))
	}))
	defer server.Close()

	cache := newMapCache()
	client := newTestClient(server.URL, cache)

	first := client.Classify(context.Background(), "cracked pavement on main road")
	second := client.Classify(context.Background(), "cracked pavement on main road")

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
}

// TestClassify_FailedCallsNotCached keeps safe defaults out of the cache so
// the next attempt retries upstream.
func TestClassify_FailedCallsNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cache := newMapCache()
	client := newTestClient(server.URL, cache)

	_ = client.Classify(context.Background(), "water main burst")
	assert.Zero(t, cache.sets)
}
