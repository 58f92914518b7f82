// Package search answers lookup queries over a loaded relationship
// table. The engine indexes the table once at construction; queries
// never touch enrichment APIs.
package search

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/proven-connections/connections-cli/internal/model"
	"github.com/proven-connections/connections-cli/internal/textutil"
)

// Role tags on search results.
const (
	RoleVendor = "service_provider"
	RoleClient = "client"
)

// DefaultNameLimit caps name-list search results when no limit is given.
const DefaultNameLimit = 10

// ErrNotFound reports a company name that appears on neither side of
// any relationship. Distinct from a known company with no partners.
var ErrNotFound = eris.New("search: company not found")

// Company is a query result entry.
type Company struct {
	Name      string   `json:"name"`
	Domain    string   `json:"domain"`
	Logo      string   `json:"logo"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Type      string   `json:"type,omitempty"`
}

// Expansion is the result of walking one side of the table from a
// single company.
type Expansion struct {
	Center     Company   `json:"center"`
	Related    []Company `json:"related"`
	TotalCount int       `json:"total_count"`
}

// sideIndex holds one role's view of the table: unique companies in
// first-occurrence order, their sorted names, and rows keyed by
// lower-cased name for exact lookup.
type sideIndex struct {
	companies []model.CompanyInfo
	names     []string
	rows      map[string][]model.Relationship
}

// Engine indexes a relationship table for querying.
type Engine struct {
	vendors sideIndex
	clients sideIndex
	total   int
}

// NewEngine builds the query indexes over the given table.
func NewEngine(rels []model.Relationship) *Engine {
	e := &Engine{
		vendors: newSideIndex(),
		clients: newSideIndex(),
		total:   len(rels),
	}
	for _, rel := range rels {
		e.vendors.add(rel.Vendor, rel)
		e.clients.add(rel.Client, rel)
	}
	sort.Strings(e.vendors.names)
	sort.Strings(e.clients.names)
	return e
}

func newSideIndex() sideIndex {
	return sideIndex{rows: make(map[string][]model.Relationship)}
}

func (idx *sideIndex) add(c model.CompanyInfo, rel model.Relationship) {
	key := strings.ToLower(c.Name)
	if _, seen := idx.rows[key]; !seen {
		idx.companies = append(idx.companies, c)
		idx.names = append(idx.names, c.Name)
	}
	idx.rows[key] = append(idx.rows[key], rel)
}

// SearchCompanies matches the query against both sides of the table:
// normalized substring containment over company names and
// suffix-stripped domains. Results carry a role tag and are sorted by
// name length, shortest first. An empty query matches nothing.
func (e *Engine) SearchCompanies(query string) []Company {
	nq := textutil.Normalize(query)
	if nq == "" {
		return nil
	}

	var out []Company
	for _, c := range e.vendors.companies {
		if matches(c, nq) {
			out = append(out, toCompany(c, RoleVendor))
		}
	}
	for _, c := range e.clients.companies {
		if matches(c, nq) {
			out = append(out, toCompany(c, RoleClient))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Name) < len(out[j].Name)
	})
	return out
}

func matches(c model.CompanyInfo, normalizedQuery string) bool {
	if strings.Contains(textutil.Normalize(c.Name), normalizedQuery) {
		return true
	}
	return c.Domain != "" &&
		strings.Contains(textutil.NormalizeDomain(c.Domain), normalizedQuery)
}

// SearchVendors returns up to limit vendor names containing the query,
// case-insensitively, in sorted name order.
func (e *Engine) SearchVendors(query string, limit int) []string {
	return searchNames(e.vendors.names, query, limit)
}

// SearchClients returns up to limit client names containing the query,
// case-insensitively, in sorted name order.
func (e *Engine) SearchClients(query string, limit int) []string {
	return searchNames(e.clients.names, query, limit)
}

func searchNames(names []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultNameLimit
	}

	var out []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// VendorClients returns the clients of the named vendor. The name is
// matched case-insensitively and exactly; an unknown vendor yields
// ErrNotFound.
func (e *Engine) VendorClients(name string) (*Expansion, error) {
	return expand(e.vendors, name, RoleVendor, RoleClient,
		func(rel model.Relationship) model.CompanyInfo { return rel.Client },
		func(rel model.Relationship) model.CompanyInfo { return rel.Vendor },
	)
}

// ClientVendors returns the vendors serving the named client.
func (e *Engine) ClientVendors(name string) (*Expansion, error) {
	return expand(e.clients, name, RoleClient, RoleVendor,
		func(rel model.Relationship) model.CompanyInfo { return rel.Vendor },
		func(rel model.Relationship) model.CompanyInfo { return rel.Client },
	)
}

func expand(
	idx sideIndex, name, centerRole, relatedRole string,
	related func(model.Relationship) model.CompanyInfo,
	center func(model.Relationship) model.CompanyInfo,
) (*Expansion, error) {
	rows, ok := idx.rows[strings.ToLower(name)]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "%q", name)
	}

	exp := &Expansion{Center: toCompany(center(rows[0]), centerRole)}
	seen := make(map[string]struct{}, len(rows))
	for _, rel := range rows {
		c := related(rel)
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		exp.Related = append(exp.Related, toCompany(c, relatedRole))
	}

	sort.Slice(exp.Related, func(i, j int) bool {
		return exp.Related[i].Name < exp.Related[j].Name
	})
	exp.TotalCount = len(exp.Related)
	return exp, nil
}

// Stats reports table totals.
func (e *Engine) Stats() model.TableStats {
	return model.TableStats{
		TotalVendors:       len(e.vendors.companies),
		TotalClients:       len(e.clients.companies),
		TotalRelationships: e.total,
	}
}

func toCompany(c model.CompanyInfo, role string) Company {
	return Company{
		Name:      c.Name,
		Domain:    c.Domain,
		Logo:      c.Logo,
		Latitude:  c.Lat,
		Longitude: c.Lng,
		Type:      role,
	}
}
