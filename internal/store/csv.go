package store

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/proven-connections/connections-cli/internal/model"
)

// csvColumns is the artifact schema. Coordinates are empty when the
// company has no location; vendor_proven_url sits last so older
// artifacts without it still load.
var csvColumns = []string{
	"vendor_name", "vendor_domain", "vendor_logo", "vendor_lat", "vendor_lng",
	"client_name", "client_domain", "client_logo", "client_lat", "client_lng",
	"vendor_proven_url",
}

// CSVStore persists the relationship table as a flat CSV artifact.
type CSVStore struct {
	path string
}

// NewCSV creates a CSV store writing to the given path.
func NewCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Migrate is a no-op for the file backend.
func (s *CSVStore) Migrate(context.Context) error { return nil }

func (s *CSVStore) Close() error { return nil }

// Load reads the artifact. Columns are matched by header name, so
// reordered or extra columns are tolerated.
func (s *CSVStore) Load(ctx context.Context) ([]model.Relationship, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", s.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, eris.Errorf("csv: %s is empty", s.path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "csv: read header of %s", s.path)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"vendor_name", "client_name"} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("csv: %s missing column %q", s.path, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rels []model.Relationship
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read %s line %d", s.path, line)
		}

		rel := model.Relationship{
			Vendor: model.CompanyInfo{
				Name:   field(record, "vendor_name"),
				Domain: field(record, "vendor_domain"),
				Logo:   field(record, "vendor_logo"),
			},
			Client: model.CompanyInfo{
				Name:   field(record, "client_name"),
				Domain: field(record, "client_domain"),
				Logo:   field(record, "client_logo"),
			},
			ProvenURL: field(record, "vendor_proven_url"),
		}
		if rel.Vendor.Lat, err = parseCoord(field(record, "vendor_lat")); err != nil {
			return nil, eris.Wrapf(err, "csv: %s line %d vendor_lat", s.path, line)
		}
		if rel.Vendor.Lng, err = parseCoord(field(record, "vendor_lng")); err != nil {
			return nil, eris.Wrapf(err, "csv: %s line %d vendor_lng", s.path, line)
		}
		if rel.Client.Lat, err = parseCoord(field(record, "client_lat")); err != nil {
			return nil, eris.Wrapf(err, "csv: %s line %d client_lat", s.path, line)
		}
		if rel.Client.Lng, err = parseCoord(field(record, "client_lng")); err != nil {
			return nil, eris.Wrapf(err, "csv: %s line %d client_lng", s.path, line)
		}
		rels = append(rels, rel)
	}

	return rels, nil
}

// Save writes the artifact atomically: a temp file in the target
// directory is renamed over the destination once fully written.
func (s *CSVStore) Save(ctx context.Context, rels []model.Relationship) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "csv: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return eris.Wrap(err, "csv: create temp file")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvColumns); err != nil {
		tmp.Close()
		return eris.Wrap(err, "csv: write header")
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			tmp.Close()
			return err
		}
		record := []string{
			rel.Vendor.Name, rel.Vendor.Domain, rel.Vendor.Logo,
			formatCoord(rel.Vendor.Lat), formatCoord(rel.Vendor.Lng),
			rel.Client.Name, rel.Client.Domain, rel.Client.Logo,
			formatCoord(rel.Client.Lat), formatCoord(rel.Client.Lng),
			rel.ProvenURL,
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return eris.Wrap(err, "csv: write record")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return eris.Wrap(err, "csv: flush")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "csv: close temp file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return eris.Wrapf(err, "csv: rename to %s", s.path)
	}
	return nil
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseCoord(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "parse coordinate %q", s)
	}
	return &v, nil
}
