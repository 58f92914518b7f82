// Package enrich turns roster rows into enriched vendor-client
// relationships: a per-run domain cache fans out enrichment lookups,
// the builder resolves each row against it, and Finalize produces the
// deduplicated, deterministically ordered table.
package enrich

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/proven-connections/connections-cli/internal/model"
)

// Lookuper finds company info by domain. A nil result means the domain
// could not be enriched.
type Lookuper interface {
	Lookup(ctx context.Context, domain string) *model.CompanyInfo
}

// DomainResolver suggests a domain for a bare company name. Empty means
// no domain could be found.
type DomainResolver interface {
	ResolveDomain(ctx context.Context, companyName string) string
}

// Cache memoizes enrichment results per domain for the duration of one
// pipeline run. Misses are cached too: each distinct domain hits the
// upstream API at most once per run.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*model.CompanyInfo
	client  Lookuper
}

// NewCache creates an empty per-run cache backed by the given client.
func NewCache(client Lookuper) *Cache {
	return &Cache{
		entries: make(map[string]*model.CompanyInfo),
		client:  client,
	}
}

// GetOrFetch returns the cached result for domain, fetching it on first
// use. A nil result means enrichment failed and is remembered for the
// rest of the run.
func (c *Cache) GetOrFetch(ctx context.Context, domain string) *model.CompanyInfo {
	c.mu.Lock()
	if info, ok := c.entries[domain]; ok {
		c.mu.Unlock()
		return info
	}
	c.mu.Unlock()

	info := c.client.Lookup(ctx, domain)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Keep the first landed result if another fetch raced us.
	if existing, ok := c.entries[domain]; ok {
		return existing
	}
	c.entries[domain] = info
	return info
}

// Len returns the number of cached domains.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Prefetch warms the cache for all given domains with a bounded worker
// pool. Lookups are independent idempotent reads, so they run fully in
// parallel; each result lands in the cache before row processing reads
// it. Individual failures are cached as misses, never returned as
// errors — the only error out of here is context cancellation.
func (c *Cache) Prefetch(ctx context.Context, domains []string, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 5
	}

	seen := make(map[string]struct{}, len(domains))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, domain := range domains {
		if domain == "" {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.GetOrFetch(gctx, domain)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	zap.L().Info("domain prefetch complete",
		zap.Int("domains", len(seen)),
		zap.Int("concurrency", concurrency),
	)
	return nil
}
