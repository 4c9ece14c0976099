package classifier

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
)

// Result is the normalized output of the external classifier.
type Result struct {
	Category      domain.Category
	PriorityLevel domain.PriorityLevel
	PriorityScore int
	Confidence    float64
}

// SafeDefault is returned whenever the classifier call fails. Classification
// failure must never block complaint intake.
func SafeDefault() Result {
	return Result{
		Category:      domain.CategoryOther,
		PriorityLevel: domain.PriorityMedium,
		PriorityScore: 50,
		Confidence:    0,
	}
}

// ResultCache caches classifier results keyed by text hash.
type ResultCache interface {
	Get(ctx context.Context, key string) (Result, bool)
	Set(ctx context.Context, key string, result Result, ttl time.Duration)
}

// Client calls the ML prediction service.
type Client struct {
	baseURL string
	http    *http.Client
	cache   ResultCache
	logger  *zap.Logger
}

// NewClient builds a classifier client. cache may be nil.
func NewClient(cfg config.ClassifierConfig, cache ResultCache, logger *zap.Logger) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
		logger:  logger,
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Category      string  `json:"category"`
	PriorityScore int     `json:"priority_score"`
	PriorityLevel string  `json:"priority_level"`
	Confidence    float64 `json:"confidence"`
}

// Classify sends text to the prediction service. It is single-shot, bounded
// by the configured timeout, and never returns an error: any failure is
// logged and substituted with SafeDefault.
func (c *Client) Classify(ctx context.Context, text string) Result {
	if c.baseURL == "" {
		c.logger.Warn("classifier base URL not configured; using safe default")
		return SafeDefault()
	}

	key := cacheKey(text)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			return cached
		}
	}

	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		c.logger.Error("classifier request encode failed", zap.Error(err))
		return SafeDefault()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("classifier request build failed", zap.Error(err))
		return SafeDefault()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("classifier call failed; using safe default", zap.Error(err))
		return SafeDefault()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("classifier returned non-2xx; using safe default", zap.Int("status", resp.StatusCode))
		return SafeDefault()
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logger.Warn("classifier response decode failed; using safe default", zap.Error(err))
		return SafeDefault()
	}

	result := normalize(decoded)
	if c.cache != nil {
		c.cache.Set(ctx, key, result, 10*time.Minute)
	}
	return result
}

// normalize clamps the classifier output onto the closed enums. Unknown
// values fall back to the corresponding safe-default field.
func normalize(resp predictResponse) Result {
	result := Result{
		Category:      domain.Category(resp.Category),
		PriorityLevel: domain.PriorityLevel(resp.PriorityLevel),
		PriorityScore: resp.PriorityScore,
		Confidence:    resp.Confidence,
	}
	if !domain.KnownCategory(result.Category) {
		result.Category = domain.CategoryOther
	}
	if !domain.KnownPriority(result.PriorityLevel) {
		result.PriorityLevel = domain.PriorityMedium
	}
	if result.PriorityScore < 0 {
		result.PriorityScore = 0
	}
	if result.PriorityScore > 100 {
		result.PriorityScore = 100
	}
	return result
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("classifier:%s", hex.EncodeToString(sum[:16]))
}
