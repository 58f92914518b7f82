package enrich

import (
	"sort"

	"github.com/proven-connections/connections-cli/internal/model"
)

// Finalize deduplicates relationships on the (vendor name, client name)
// pair — first occurrence wins — and sorts ascending by vendor name
// then client name under ordinal comparison. The result is the
// persisted and served order and is reproducible for identical input.
func Finalize(rels []model.Relationship) []model.Relationship {
	seen := make(map[model.RelationshipKey]struct{}, len(rels))
	out := make([]model.Relationship, 0, len(rels))

	for _, rel := range rels {
		key := rel.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rel)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Vendor.Name != out[j].Vendor.Name {
			return out[i].Vendor.Name < out[j].Vendor.Name
		}
		return out[i].Client.Name < out[j].Client.Name
	})

	return out
}

// RunStats summarizes a finalized table for pipeline reporting.
type RunStats struct {
	TotalRelationships  int
	UniqueVendors       int
	UniqueClients       int
	VendorsWithLocation int
	ClientsWithLocation int
}

// Stats computes summary statistics over a finalized table.
func Stats(rels []model.Relationship) RunStats {
	vendors := make(map[string]struct{})
	clients := make(map[string]struct{})
	stats := RunStats{TotalRelationships: len(rels)}

	for _, rel := range rels {
		vendors[rel.Vendor.Name] = struct{}{}
		clients[rel.Client.Name] = struct{}{}
		if rel.Vendor.HasLocation() {
			stats.VendorsWithLocation++
		}
		if rel.Client.HasLocation() {
			stats.ClientsWithLocation++
		}
	}

	stats.UniqueVendors = len(vendors)
	stats.UniqueClients = len(clients)
	return stats
}
