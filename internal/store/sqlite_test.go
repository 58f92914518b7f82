package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proven-connections/connections-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "connections.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRels()))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRels(), loaded)
}

func TestSQLiteStore_SaveReplacesTable(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRels()))
	replacement := []model.Relationship{{
		Vendor: model.CompanyInfo{Name: "Zeta", Domain: "zeta.dev"},
		Client: model.CompanyInfo{Name: "Acme Corp", Domain: "acme.com"},
	}}
	require.NoError(t, s.Save(ctx, replacement))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, loaded)
}

func TestSQLiteStore_LoadSortsByVendorThenClient(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	unsorted := []model.Relationship{
		{Vendor: model.CompanyInfo{Name: "Zeta"}, Client: model.CompanyInfo{Name: "Acme"}},
		{Vendor: model.CompanyInfo{Name: "Acme"}, Client: model.CompanyInfo{Name: "Initech"}},
		{Vendor: model.CompanyInfo{Name: "Acme"}, Client: model.CompanyInfo{Name: "Globex"}},
	}
	require.NoError(t, s.Save(ctx, unsorted))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "Globex", loaded[0].Client.Name)
	assert.Equal(t, "Initech", loaded[1].Client.Name)
	assert.Equal(t, "Zeta", loaded[2].Vendor.Name)
}

func TestSQLiteStore_EmptyTable(t *testing.T) {
	s := newTestSQLite(t)

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestOpen_CSV(t *testing.T) {
	s, err := Open(context.Background(), "csv", filepath.Join(t.TempDir(), "out.csv"))
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, s)
}
