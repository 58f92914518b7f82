package enrich

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proven-connections/connections-cli/internal/model"
)

// fakeLookuper counts lookups per domain and serves canned results.
type fakeLookuper struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string]*model.CompanyInfo
}

func newFakeLookuper(results map[string]*model.CompanyInfo) *fakeLookuper {
	return &fakeLookuper{
		calls:   make(map[string]int),
		results: results,
	}
}

func (f *fakeLookuper) Lookup(_ context.Context, domain string) *model.CompanyInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[domain]++
	return f.results[domain]
}

func (f *fakeLookuper) callCount(domain string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[domain]
}

func ptr(f float64) *float64 { return &f }

func TestCache_GetOrFetch_SingleLookupPerDomain(t *testing.T) {
	lookuper := newFakeLookuper(map[string]*model.CompanyInfo{
		"acme.com": {Name: "Acme", Domain: "acme.com"},
	})
	cache := NewCache(lookuper)

	for range 5 {
		info := cache.GetOrFetch(context.Background(), "acme.com")
		require.NotNil(t, info)
		assert.Equal(t, "Acme", info.Name)
	}
	assert.Equal(t, 1, lookuper.callCount("acme.com"))
}

func TestCache_GetOrFetch_NegativeResultCached(t *testing.T) {
	lookuper := newFakeLookuper(nil)
	cache := NewCache(lookuper)

	assert.Nil(t, cache.GetOrFetch(context.Background(), "unknown.example"))
	assert.Nil(t, cache.GetOrFetch(context.Background(), "unknown.example"))
	assert.Equal(t, 1, lookuper.callCount("unknown.example"))
}

func TestCache_Prefetch(t *testing.T) {
	lookuper := newFakeLookuper(map[string]*model.CompanyInfo{
		"acme.com":   {Name: "Acme"},
		"globex.com": {Name: "Globex"},
	})
	cache := NewCache(lookuper)

	domains := []string{"acme.com", "globex.com", "acme.com", "", "missing.example"}
	require.NoError(t, cache.Prefetch(context.Background(), domains, 3))

	assert.Equal(t, 3, cache.Len())
	assert.Equal(t, 1, lookuper.callCount("acme.com"))
	assert.Equal(t, 1, lookuper.callCount("globex.com"))
	assert.Equal(t, 1, lookuper.callCount("missing.example"))

	// Warm cache: no further upstream calls.
	cache.GetOrFetch(context.Background(), "acme.com")
	assert.Equal(t, 1, lookuper.callCount("acme.com"))
}

func TestCache_Prefetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cache := NewCache(newFakeLookuper(nil))
	err := cache.Prefetch(ctx, []string{"acme.com"}, 2)
	assert.Error(t, err)
}

func TestCache_Prefetch_DefaultConcurrency(t *testing.T) {
	cache := NewCache(newFakeLookuper(nil))
	require.NoError(t, cache.Prefetch(context.Background(), []string{"a.com", "b.com"}, 0))
	assert.Equal(t, 2, cache.Len())
}
