// Package clearbit implements the company enrichment client: find a
// company by domain, and suggest a domain for a bare company name.
// Enrichment is best-effort — the client reports misses as absent
// results and never propagates upstream failures to the pipeline.
package clearbit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/proven-connections/connections-cli/internal/model"
)

// Options configures the enrichment client.
type Options struct {
	Key             string
	CompanyURL      string        // find-by-domain endpoint
	AutocompleteURL string        // suggest-by-name endpoint
	MaxRetries      int           // attempts while the API answers 202 (default 3)
	RetryDelay      time.Duration // fixed delay between 202 retries (default 2s)
	MinInterval     time.Duration // minimum spacing between outbound calls (default 100ms)
	Timeout         time.Duration // per-attempt request timeout (default 15s)
}

// Client calls the enrichment API with rate limiting and retry-on-pending.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// New creates an enrichment client.
func New(opts Options) *Client {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = 100 * time.Millisecond
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    rate.NewLimiter(rate.Every(opts.MinInterval), 1),
	}
}

// companyResponse mirrors the fields we keep from a find-by-domain hit.
type companyResponse struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Logo   string `json:"logo"`
	Geo    struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"geo"`
}

// suggestion is one autocomplete candidate, in API relevance order.
type suggestion struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Lookup fetches company info for a domain. A nil result means the
// company could not be enriched: non-200/202 status, transport failure,
// or retries exhausted while the API kept answering 202. The returned
// record's Domain is always the exact input domain, not the API's
// normalized echo, so cache keys stay stable.
func (c *Client) Lookup(ctx context.Context, domain string) *model.CompanyInfo {
	log := zap.L().With(zap.String("domain", domain))

	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil
		}

		resp, err := c.get(ctx, c.opts.CompanyURL, url.Values{"domain": {domain}})
		if err != nil {
			log.Warn("enrichment request failed", zap.Error(err))
			return nil
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var body companyResponse
			err := json.NewDecoder(resp.Body).Decode(&body)
			_ = resp.Body.Close()
			if err != nil {
				log.Warn("enrichment response malformed", zap.Error(err))
				return nil
			}
			return &model.CompanyInfo{
				Name:   body.Name,
				Domain: domain,
				Logo:   body.Logo,
				Lat:    body.Geo.Lat,
				Lng:    body.Geo.Lng,
			}

		case http.StatusAccepted:
			_ = resp.Body.Close()
			log.Info("enrichment pending, will retry",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.opts.MaxRetries),
			)
			if attempt < c.opts.MaxRetries-1 {
				if !sleepCtx(ctx, c.opts.RetryDelay) {
					return nil
				}
			}

		default:
			_ = resp.Body.Close()
			log.Warn("enrichment lookup failed", zap.Int("status", resp.StatusCode))
			return nil
		}
	}

	log.Warn("enrichment retries exhausted")
	return nil
}

// ResolveDomain suggests a domain for a company name via the
// autocomplete endpoint. Returns "" when no candidate qualifies or the
// API key is unset or rejected. Candidates are considered in the API's
// relevance order; a candidate whose first domain label shares a word
// (>2 chars) with the name wins, otherwise the first structurally valid
// candidate does.
func (c *Client) ResolveDomain(ctx context.Context, companyName string) string {
	log := zap.L().With(zap.String("company", companyName))

	if c.opts.Key == "" {
		log.Warn("enrichment key unset, skipping domain search")
		return ""
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return ""
	}

	resp, err := c.get(ctx, c.opts.AutocompleteURL, url.Values{"query": {companyName}})
	if err != nil {
		log.Warn("domain search failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn("enrichment key rejected, skipping domain search")
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn("domain search failed", zap.Int("status", resp.StatusCode))
		return ""
	}

	var candidates []suggestion
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		log.Warn("domain search response malformed", zap.Error(err))
		return ""
	}

	return pickDomain(companyName, candidates)
}

// pickDomain applies the candidate selection heuristics.
func pickDomain(companyName string, candidates []suggestion) string {
	firstValid := ""
	for _, cand := range candidates {
		domain := strings.TrimPrefix(cand.Domain, "www.")
		if domain == "" {
			continue
		}

		labels := strings.Split(strings.ToLower(domain), ".")
		if len(labels) < 2 {
			continue
		}

		if firstValid == "" {
			firstValid = domain
		}

		// A shared word between the name and the first domain label is
		// a strong signal this is the right company.
		for _, word := range strings.Fields(strings.ToLower(companyName)) {
			if len(word) > 2 && strings.Contains(labels[0], word) {
				return domain
			}
		}
	}
	return firstValid
}

func (c *Client) get(ctx context.Context, baseURL string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.opts.Key != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Key)
	}
	return c.httpClient.Do(req)
}

// sleepCtx waits for d unless the context ends first. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
