package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/proven-connections/connections-cli/internal/model"
	"github.com/proven-connections/connections-cli/internal/roster"
)

var titleCaser = cases.Title(language.English)

// Builder resolves roster rows into relationships using the domain
// cache and the name-to-domain resolver.
type Builder struct {
	cache    *Cache
	resolver DomainResolver
}

// NewBuilder creates a relationship builder.
func NewBuilder(cache *Cache, resolver DomainResolver) *Builder {
	return &Builder{cache: cache, resolver: resolver}
}

// CollectDomains returns every domain mentioned in the roster: vendor
// domains plus client entries that already carry one. These are the
// prefetch set; name-only clients are resolved lazily during Build.
func CollectDomains(rows []model.RosterRow) []string {
	var domains []string
	for _, row := range rows {
		if row.VendorDomain != "" {
			domains = append(domains, row.VendorDomain)
		}
		for _, entry := range roster.ParseClientList(row.ClientsRaw) {
			if entry.Domain != "" {
				domains = append(domains, entry.Domain)
			}
		}
	}
	return domains
}

// Build resolves every roster row into zero or more relationships.
// Failures are isolated per entry: an unresolvable client never blocks
// its siblings, and an unenrichable vendor falls back to the roster's
// own fields rather than dropping the row. The only rows that emit
// nothing are those without a vendor domain.
func (b *Builder) Build(ctx context.Context, rows []model.RosterRow) []model.Relationship {
	var rels []model.Relationship

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		rels = append(rels, b.buildRow(ctx, row)...)
	}

	return rels
}

func (b *Builder) buildRow(ctx context.Context, row model.RosterRow) []model.Relationship {
	log := zap.L().With(zap.String("vendor", row.VendorName))

	// A vendor without a domain can be neither enriched nor reliably
	// deduplicated.
	if row.VendorDomain == "" {
		log.Debug("skipping vendor without domain")
		return nil
	}

	vendor := b.resolveCompany(ctx, row.VendorDomain, row.VendorName)

	entries := roster.ParseClientList(row.ClientsRaw)
	rels := make([]model.Relationship, 0, len(entries))

	for _, entry := range entries {
		domain := entry.Domain
		if domain == "" && entry.Name != "" {
			domain = b.resolver.ResolveDomain(ctx, entry.Name)
			if domain == "" {
				log.Info("dropping client, no domain found", zap.String("client", entry.Name))
				continue
			}
			log.Debug("resolved client domain",
				zap.String("client", entry.Name),
				zap.String("domain", domain),
			)
		}
		if domain == "" {
			continue
		}

		client := b.resolveCompany(ctx, domain, entry.Name)
		rels = append(rels, model.Relationship{
			Vendor:    vendor,
			Client:    client,
			ProvenURL: row.ProvenURL,
		})
	}

	return rels
}

// resolveCompany returns enriched info for the domain, falling back to
// a minimal record built from locally known fields when enrichment
// fails. The result always has a non-empty name.
func (b *Builder) resolveCompany(ctx context.Context, domain, rawName string) model.CompanyInfo {
	if info := b.cache.GetOrFetch(ctx, domain); info != nil {
		resolved := *info
		if resolved.Name == "" {
			resolved.Name = fallbackName(rawName, domain)
		}
		return resolved
	}
	return model.CompanyInfo{
		Name:   fallbackName(rawName, domain),
		Domain: domain,
	}
}

// fallbackName prefers the raw roster name and otherwise derives a
// readable one from the domain's first label ("acme-corp.com" becomes
// "Acme Corp").
func fallbackName(rawName, domain string) string {
	if rawName != "" {
		return rawName
	}
	labels := strings.Split(domain, ".")
	if len(labels) >= 2 {
		return titleCaser.String(strings.ReplaceAll(labels[0], "-", " "))
	}
	return domain
}
