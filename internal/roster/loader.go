package roster

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proven-connections/connections-cli/internal/fetcher"
	"github.com/proven-connections/connections-cli/internal/model"
)

// Column aliases seen across roster exports. Headers are matched after
// lower-casing and squashing spaces/underscores.
var (
	vendorNameAliases   = []string{"vendorname", "name"}
	vendorDomainAliases = []string{"vendordomain", "domain"}
	clientsAliases      = []string{"vendorclientsdomains", "clients", "clientdomains"}
	provenURLAliases    = []string{"vendorprovenurl", "provenurl"}
)

type columnMap struct {
	name, domain, clients, provenURL int
}

// Load reads roster rows from a source, which may be a local path, an
// http(s):// URL, or an ftp:// URL. Files ending in .xlsx are parsed as
// spreadsheets; everything else is parsed as CSV. The first row must be
// a header naming at least the vendor name and vendor domain columns.
func Load(ctx context.Context, source string) ([]model.RosterRow, error) {
	if strings.HasSuffix(strings.ToLower(source), ".xlsx") {
		return loadXLSX(source)
	}
	return loadCSV(ctx, source)
}

func loadCSV(ctx context.Context, source string) ([]model.RosterRow, error) {
	rc, err := fetcher.Open(ctx, source)
	if err != nil {
		return nil, eris.Wrapf(err, "roster: open %s", source)
	}
	defer rc.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, rc, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var (
		cols   *columnMap
		rows   []model.RosterRow
		mapErr error
	)
	for record := range rowCh {
		if cols == nil {
			header := <-headerCh
			cols, mapErr = mapColumns(header)
			if mapErr != nil {
				// Drain so the stream goroutine can exit.
				for range rowCh {
				}
				break
			}
		}
		rows = append(rows, rowFromRecord(record, cols))
	}
	if mapErr != nil {
		return nil, mapErr
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "roster: read %s", source)
	}

	// Header may never have been consumed when the file had no data rows.
	if cols == nil {
		select {
		case header := <-headerCh:
			if _, err := mapColumns(header); err != nil {
				return nil, err
			}
		default:
			return nil, eris.Errorf("roster: %s is empty", source)
		}
	}

	zap.L().Info("roster loaded", zap.String("source", source), zap.Int("rows", len(rows)))
	return rows, nil
}

func loadXLSX(source string) ([]model.RosterRow, error) {
	records, err := fetcher.ReadXLSX(source, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "roster: read %s", source)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("roster: %s is empty", source)
	}

	cols, err := mapColumns(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]model.RosterRow, 0, len(records)-1)
	for _, record := range records[1:] {
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		rows = append(rows, rowFromRecord(record, cols))
	}

	zap.L().Info("roster loaded", zap.String("source", source), zap.Int("rows", len(rows)))
	return rows, nil
}

func mapColumns(header []string) (*columnMap, error) {
	cols := &columnMap{name: -1, domain: -1, clients: -1, provenURL: -1}
	for i, h := range header {
		key := squashHeader(h)
		switch {
		case matchesAlias(key, vendorNameAliases):
			cols.name = i
		case matchesAlias(key, vendorDomainAliases):
			cols.domain = i
		case matchesAlias(key, clientsAliases):
			cols.clients = i
		case matchesAlias(key, provenURLAliases):
			cols.provenURL = i
		}
	}
	if cols.name == -1 || cols.domain == -1 {
		return nil, eris.Errorf("roster: header %v missing vendor name/domain columns", header)
	}
	return cols, nil
}

func squashHeader(h string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(h)))
}

func matchesAlias(key string, aliases []string) bool {
	for _, a := range aliases {
		if key == a {
			return true
		}
	}
	return false
}

func rowFromRecord(record []string, cols *columnMap) model.RosterRow {
	return model.RosterRow{
		VendorName:   field(record, cols.name),
		VendorDomain: field(record, cols.domain),
		ClientsRaw:   field(record, cols.clients),
		ProvenURL:    field(record, cols.provenURL),
	}
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
