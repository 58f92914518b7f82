package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proven-connections/connections-cli/internal/model"
)

// fakeResolver maps company names to domains.
type fakeResolver struct {
	domains map[string]string
}

func (f *fakeResolver) ResolveDomain(_ context.Context, name string) string {
	return f.domains[name]
}

func newTestBuilder(results map[string]*model.CompanyInfo, domains map[string]string) *Builder {
	return NewBuilder(NewCache(newFakeLookuper(results)), &fakeResolver{domains: domains})
}

func TestBuild_SkipsVendorWithoutDomain(t *testing.T) {
	b := newTestBuilder(nil, nil)
	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "No Domain Co", ClientsRaw: "Acme (acme.com)"},
	})
	assert.Empty(t, rels)
}

func TestBuild_EnrichedVendorAndClient(t *testing.T) {
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"vendor.com": {Name: "Vendor Inc", Domain: "vendor.com", Logo: "v.png", Lat: ptr(1), Lng: ptr(2)},
		"acme.com":   {Name: "Acme Inc", Domain: "acme.com"},
	}, nil)

	rels := b.Build(context.Background(), []model.RosterRow{
		{
			VendorName:   "Vendor",
			VendorDomain: "vendor.com",
			ClientsRaw:   "Acme (acme.com)",
			ProvenURL:    "https://proven.example/vendor",
		},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, "Vendor Inc", rels[0].Vendor.Name)
	assert.Equal(t, "Acme Inc", rels[0].Client.Name)
	assert.Equal(t, "https://proven.example/vendor", rels[0].ProvenURL)
	assert.True(t, rels[0].Vendor.HasLocation())
}

func TestBuild_VendorFallbackOnEnrichmentFailure(t *testing.T) {
	// Vendor domain misses upstream; row survives with roster fields.
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"acme.com": {Name: "Acme Inc", Domain: "acme.com"},
	}, nil)

	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "Vendor", VendorDomain: "vendor.com", ClientsRaw: "acme.com"},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, model.CompanyInfo{Name: "Vendor", Domain: "vendor.com"}, rels[0].Vendor)
}

func TestBuild_ClientFallbackNameFromDomain(t *testing.T) {
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"vendor.com": {Name: "Vendor Inc", Domain: "vendor.com"},
	}, nil)

	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "Vendor", VendorDomain: "vendor.com", ClientsRaw: "acme-corp.com"},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, "Acme Corp", rels[0].Client.Name)
	assert.Equal(t, "acme-corp.com", rels[0].Client.Domain)
}

func TestBuild_ResolvesClientDomainByName(t *testing.T) {
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"vendor.com": {Name: "Vendor Inc", Domain: "vendor.com"},
		"globex.com": {Name: "Globex Inc", Domain: "globex.com"},
	}, map[string]string{"Globex": "globex.com"})

	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "Vendor", VendorDomain: "vendor.com", ClientsRaw: "Globex"},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, "Globex Inc", rels[0].Client.Name)
}

func TestBuild_DropsUnresolvableClientOnly(t *testing.T) {
	// "Mystery Co" cannot be resolved to a domain; its siblings survive.
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"vendor.com": {Name: "Vendor Inc", Domain: "vendor.com"},
	}, nil)

	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "Vendor", VendorDomain: "vendor.com", ClientsRaw: "Mystery Co, acme.com, globex.com"},
	})
	require.Len(t, rels, 2)
	assert.Equal(t, "acme.com", rels[0].Client.Domain)
	assert.Equal(t, "globex.com", rels[1].Client.Domain)
}

func TestBuild_RowFailureIsolation(t *testing.T) {
	// First row has no clients at all; second still processes.
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"a.com": {Name: "A", Domain: "a.com"},
		"b.com": {Name: "B", Domain: "b.com"},
	}, nil)

	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "A", VendorDomain: "a.com", ClientsRaw: ""},
		{VendorName: "B", VendorDomain: "b.com", ClientsRaw: "a.com"},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, "B", rels[0].Vendor.Name)
}

func TestBuild_EnrichedNameWinsOverRoster(t *testing.T) {
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"vendor.com": {Name: "Vendor International PLC", Domain: "vendor.com"},
		"acme.com":   {Name: "Acme Inc", Domain: "acme.com"},
	}, nil)

	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "vendor", VendorDomain: "vendor.com", ClientsRaw: "acme.com"},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, "Vendor International PLC", rels[0].Vendor.Name)
}

func TestBuild_EnrichedRecordWithoutName(t *testing.T) {
	// API returned a record but no name: the roster name fills in.
	b := newTestBuilder(map[string]*model.CompanyInfo{
		"vendor.com": {Domain: "vendor.com", Logo: "v.png"},
	}, nil)

	rels := b.Build(context.Background(), []model.RosterRow{
		{VendorName: "Vendor", VendorDomain: "vendor.com", ClientsRaw: "acme.com"},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, "Vendor", rels[0].Vendor.Name)
	assert.Equal(t, "v.png", rels[0].Vendor.Logo)
}

func TestCollectDomains(t *testing.T) {
	domains := CollectDomains([]model.RosterRow{
		{VendorDomain: "vendor.com", ClientsRaw: "Acme (acme.com), Globex, initech.io"},
		{VendorName: "No Domain", ClientsRaw: "foo.com"},
	})
	assert.Equal(t, []string{"vendor.com", "acme.com", "initech.io", "foo.com"}, domains)
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "Raw Name", fallbackName("Raw Name", "acme.com"))
	assert.Equal(t, "Acme Corp", fallbackName("", "acme-corp.com"))
	assert.Equal(t, "nodots", fallbackName("", "nodots"))
}
