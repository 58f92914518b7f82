package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proven-connections/connections-cli/internal/config"
	"github.com/proven-connections/connections-cli/internal/model"
	"github.com/proven-connections/connections-cli/internal/store"
)

func resetImportFlags(t *testing.T) {
	t.Helper()
	oldFrom, oldDriver, oldDSN := importFrom, importDriver, importDSN
	t.Cleanup(func() {
		importFrom, importDriver, importDSN = oldFrom, oldDriver, oldDSN
	})
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relationships.csv")
	rels := []model.Relationship{{
		Vendor: model.CompanyInfo{Name: "Acme Corp", Domain: "acme.com"},
		Client: model.CompanyInfo{Name: "Globex", Domain: "globex.com"},
	}}
	require.NoError(t, store.NewCSV(path).Save(context.Background(), rels))
	return path
}

func TestImportCmd_CSVTargetRejected(t *testing.T) {
	resetImportFlags(t)
	cfg = &config.Config{Store: config.StoreConfig{Driver: "csv"}}

	importCmd.SetContext(context.Background())
	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite or postgres")
}

func TestImportCmd_ToSQLite(t *testing.T) {
	resetImportFlags(t)
	dbPath := filepath.Join(t.TempDir(), "connections.db")
	cfg = &config.Config{}
	importFrom = writeArtifact(t)
	importDriver = "sqlite"
	importDSN = dbPath

	importCmd.SetContext(context.Background())
	require.NoError(t, importCmd.RunE(importCmd, nil))

	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close()

	rels, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "Acme Corp", rels[0].Vendor.Name)
}

func TestImportCmd_MissingArtifact(t *testing.T) {
	resetImportFlags(t)
	cfg = &config.Config{}
	importFrom = filepath.Join(t.TempDir(), "missing.csv")
	importDriver = "sqlite"
	importDSN = filepath.Join(t.TempDir(), "connections.db")

	importCmd.SetContext(context.Background())
	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load artifact")
}

func TestStatsCmd(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "csv", Path: writeArtifact(t)}}

	statsCmd.SetContext(context.Background())
	require.NoError(t, statsCmd.RunE(statsCmd, nil))
}

func TestStatsCmd_MissingTable(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{
		Driver: "csv",
		Path:   filepath.Join(t.TempDir(), "missing.csv"),
	}}

	statsCmd.SetContext(context.Background())
	assert.Error(t, statsCmd.RunE(statsCmd, nil))
}

func TestConfigCmd(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "csv", Path: "data/relationships.csv"}}

	configCmd.SetContext(context.Background())
	require.NoError(t, configCmd.RunE(configCmd, nil))
}
