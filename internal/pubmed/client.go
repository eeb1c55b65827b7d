// Package pubmed resolves ClinVar variation IDs to linked PubMed articles
// through the NCBI E-utilities elink service.
package pubmed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/enesozyaramiss/Genetic-app-en/internal/cache"
)

// Defaults for the E-utilities client.
const (
	DefaultEndpoint = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/elink.fcgi"
	DefaultTimeout  = 20 * time.Second

	linkName = "clinvar_pubmed"
)

// Result is either a list of PubMed IDs or an error message.
type Result struct {
	IDs   []string
	Error string
}

// Failed reports whether the lookup failed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Source looks up PubMed citations for a ClinVar variation.
type Source interface {
	CitationIDs(ctx context.Context, variationID string) Result
}

// Config configures a Client.
type Config struct {
	Endpoint      string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Client queries NCBI elink for clinvar -> pubmed links.
type Client struct {
	endpoint      string
	apiKey        string
	httpClient    *http.Client
	maxRetries    uint64
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewClient creates an E-utilities client.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}
	return &Client{
		endpoint:      cfg.Endpoint,
		apiKey:        cfg.APIKey,
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

// CitationIDs returns the PubMed IDs linked to a ClinVar variation ID.
// Failures are returned as an error-shaped Result.
func (c *Client) CitationIDs(ctx context.Context, variationID string) Result {
	variationID = strings.TrimSpace(variationID)
	if variationID == "" {
		return Result{Error: "empty variation ID"}
	}

	body, err := c.get(ctx, variationID)
	if err != nil {
		c.logger.Error("elink request failed", zap.String("variation_id", variationID), zap.Error(err))
		return Result{Error: fmt.Sprintf("HTTP error: %v", err)}
	}

	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		c.logger.Error("elink response decode failed", zap.String("variation_id", variationID), zap.Error(err))
		return Result{Error: fmt.Sprintf("JSON decode error: %v", err)}
	}

	return Result{IDs: linkedIDs(parsed)}
}

func (c *Client) get(ctx context.Context, variationID string) ([]byte, error) {
	q := url.Values{}
	q.Set("dbfrom", "clinvar")
	q.Set("db", "pubmed")
	q.Set("id", variationID)
	q.Set("linkname", linkName)
	q.Set("retmode", "json")
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	reqURL := c.endpoint + "?" + q.Encode()

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("elink error %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("elink error %d", resp.StatusCode))
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

// linkedIDs collects the clinvar_pubmed links from every linkset, keeping
// first-seen order and dropping duplicates.
func linkedIDs(parsed *gabs.Container) []string {
	ids := []string{}
	seen := make(map[string]bool)

	linksets, _ := parsed.Path("linksets").Children()
	for _, ls := range linksets {
		dbs, _ := ls.Path("linksetdbs").Children()
		for _, db := range dbs {
			if name, ok := db.Path("linkname").Data().(string); ok && name != linkName {
				continue
			}
			links, _ := db.Path("links").Children()
			for _, l := range links {
				id := fmt.Sprint(l.Data())
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Links builds PubMed article URLs for a list of IDs.
func Links(ids []string) []string {
	links := make([]string, 0, len(ids))
	for _, id := range ids {
		links = append(links, fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", id))
	}
	return links
}

// Cached memoizes a Source by variation ID.
type Cached struct {
	src   Source
	cache *cache.TTL[Result]
}

// NewCached wraps src with a result cache valid for ttl.
func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{src: src, cache: cache.New[Result](ttl, time.Hour)}
}

// CitationIDs returns the cached result for variationID, querying src on a
// miss. Results of a cancelled request are returned but not cached.
func (c *Cached) CitationIDs(ctx context.Context, variationID string) Result {
	key := strings.TrimSpace(variationID)
	load := func() (Result, bool) {
		r := c.src.CitationIDs(ctx, variationID)
		return r, ctx.Err() == nil
	}
	r, stored := c.cache.GetOrLoad(key, load)
	if !stored && ctx.Err() == nil {
		r, _ = c.cache.GetOrLoad(key, load)
	}
	return r
}
