// Package model defines the core types shared across the relationship pipeline.
package model

// RosterRow is one input record from the vendor roster: a vendor plus the
// raw free-text list of its clients. Read once per pipeline run, never mutated.
type RosterRow struct {
	VendorName   string `json:"vendor_name"`
	VendorDomain string `json:"vendor_domain,omitempty"`
	ProvenURL    string `json:"vendor_proven_url,omitempty"`
	ClientsRaw   string `json:"clients_raw,omitempty"`
}

// ClientEntry is one parsed token from a roster row's client list.
// At least one of Name or Domain is set.
type ClientEntry struct {
	Name   string `json:"name,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// CompanyInfo is the canonical enrichment result for a company, keyed by
// domain once resolved. Name, Logo, Lat, and Lng are best-effort; absent
// coordinates stay nil rather than zero so they never leak into float math.
type CompanyInfo struct {
	Name   string   `json:"name,omitempty"`
	Domain string   `json:"domain,omitempty"`
	Logo   string   `json:"logo,omitempty"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
}

// HasLocation reports whether both coordinates are present.
func (c CompanyInfo) HasLocation() bool {
	return c.Lat != nil && c.Lng != nil
}

// Relationship is one resolved (vendor, client) association.
// Identity for deduplication is the (Vendor.Name, Client.Name) pair, not
// the domain pair: some companies enrich only to a name.
type Relationship struct {
	Vendor    CompanyInfo `json:"vendor"`
	Client    CompanyInfo `json:"client"`
	ProvenURL string      `json:"vendor_proven_url,omitempty"`
}

// Key returns the deduplication key for the relationship.
func (r Relationship) Key() RelationshipKey {
	return RelationshipKey{Vendor: r.Vendor.Name, Client: r.Client.Name}
}

// RelationshipKey identifies a relationship by its name pair.
type RelationshipKey struct {
	Vendor string
	Client string
}

// TableStats summarizes a finalized relationship table.
type TableStats struct {
	TotalVendors       int `json:"total_vendors"`
	TotalClients       int `json:"total_clients"`
	TotalRelationships int `json:"total_relationships"`
}
