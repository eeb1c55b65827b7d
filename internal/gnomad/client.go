package gnomad

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/enesozyaramiss/Genetic-app-en/internal/cache"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// Defaults for the gnomAD API client.
const (
	DefaultEndpoint = "https://gnomad.broadinstitute.org/api"
	DefaultTimeout  = 20 * time.Second
)

const variantQuery = `query ($variantId: String!, $dataset: DatasetId!) {
  variant(variantId: $variantId, dataset: $dataset) {
    exome {
      ac
      an
      faf95 { popmax popmax_population }
    }
  }
}`

// Stats holds exome allele counts and the popmax filtering allele frequency.
// Nil fields were absent from the response.
type Stats struct {
	AlleleCount      *int64
	AlleleNumber     *int64
	PopmaxAF         *float64
	PopmaxPopulation string
}

// Result is either Stats or an error message. It is a plain value so that
// failures can be cached and reported per row.
type Result struct {
	Stats *Stats
	Error string
}

// Failed reports whether the lookup failed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Source looks up frequency statistics for a variant.
type Source interface {
	Lookup(ctx context.Context, key vcf.Key) Result
}

// Config configures a Client.
type Config struct {
	Endpoint      string
	Dataset       string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Client queries the gnomAD GraphQL API.
type Client struct {
	endpoint      string
	dataset       string
	httpClient    *http.Client
	maxRetries    uint64
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewClient creates a gnomAD API client.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Dataset == "" {
		cfg.Dataset = Dataset(GRCh38)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}

	return &Client{
		endpoint:      cfg.Endpoint,
		dataset:       cfg.Dataset,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
		logger:        zap.NewNop(),
	}
}

// SetLogger sets the logger for lookup failures.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Lookup fetches frequency statistics for a variant. It never fails: network,
// HTTP and decoding problems are returned as an error-shaped Result.
func (c *Client) Lookup(ctx context.Context, key vcf.Key) Result {
	vid := key.String()

	body, err := c.post(ctx, vid)
	if err != nil {
		c.logger.Error("gnomAD request failed", zap.String("variant", vid), zap.Error(err))
		return Result{Error: fmt.Sprintf("HTTP error: %v", err)}
	}

	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		c.logger.Error("gnomAD response decode failed", zap.String("variant", vid), zap.Error(err))
		return Result{Error: fmt.Sprintf("JSON decode error: %v", err)}
	}

	stats, err := statsFrom(parsed)
	if err != nil {
		c.logger.Warn("no gnomAD data for variant", zap.String("variant", vid), zap.Error(err))
		return Result{Error: err.Error()}
	}

	return Result{Stats: stats}
}

func (c *Client) post(ctx context.Context, vid string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"query": variantQuery,
		"variables": map[string]string{
			"variantId": vid,
			"dataset":   c.dataset,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("gnomAD API error %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("gnomAD API error %d: %s", resp.StatusCode, msg))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// statsFrom extracts exome statistics from a parsed GraphQL response.
func statsFrom(parsed *gabs.Container) (*Stats, error) {
	variant := parsed.Path("data.variant")
	if variant.Data() == nil {
		if msgs := parsed.Path("errors.message"); msgs.Data() != nil {
			return nil, fmt.Errorf("no data returned: %v", msgs.Data())
		}
		return nil, errors.New("no data returned")
	}

	stats := &Stats{}
	exome := variant.Path("exome")
	if exome.Data() == nil {
		return stats, nil
	}

	stats.AlleleCount = intValue(exome.Path("ac").Data())
	stats.AlleleNumber = intValue(exome.Path("an").Data())
	stats.PopmaxAF = floatValue(exome.Path("faf95.popmax").Data())
	if pop, ok := exome.Path("faf95.popmax_population").Data().(string); ok {
		stats.PopmaxPopulation = pop
	}
	return stats, nil
}

func floatValue(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func intValue(v interface{}) *int64 {
	if f := floatValue(v); f != nil {
		i := int64(*f)
		return &i
	}
	return nil
}

// Cached memoizes a Source by variant key.
type Cached struct {
	src   Source
	cache *cache.TTL[Result]
}

// NewCached wraps src with a result cache valid for ttl.
func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{src: src, cache: cache.New[Result](ttl, time.Hour)}
}

// Lookup returns the cached result for key, querying src on a miss. Results
// of a cancelled request are returned but not cached.
func (c *Cached) Lookup(ctx context.Context, key vcf.Key) Result {
	load := func() (Result, bool) {
		r := c.src.Lookup(ctx, key)
		return r, ctx.Err() == nil
	}
	r, stored := c.cache.GetOrLoad(key.String(), load)
	if !stored && ctx.Err() == nil {
		// shared with a caller whose context ended; load again under ours
		r, _ = c.cache.GetOrLoad(key.String(), load)
	}
	return r
}
