package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proven-connections/connections-cli/internal/model"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeRoster(t, "Vendor Name,Vendor Domain,Vendor clients domains,Vendor Proven URL\n"+
		"Acme,acme.com,\"Globex (globex.com), Initech\",https://proven.example/acme\n"+
		"NoDomain Co,,initech.io,\n")

	rows, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.RosterRow{
		VendorName:   "Acme",
		VendorDomain: "acme.com",
		ClientsRaw:   "Globex (globex.com), Initech",
		ProvenURL:    "https://proven.example/acme",
	}, rows[0])
	assert.Equal(t, "NoDomain Co", rows[1].VendorName)
	assert.Empty(t, rows[1].VendorDomain)
}

func TestLoad_AltHeaders(t *testing.T) {
	path := writeRoster(t, "NAME,DOMAIN,CLIENTS\nAcme,acme.com,globex.com\n")

	rows, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].VendorName)
	assert.Equal(t, "globex.com", rows[0].ClientsRaw)
}

func TestLoad_MissingColumns(t *testing.T) {
	path := writeRoster(t, "foo,bar\n1,2\n")

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeRoster(t, "Vendor Name,Vendor Domain\n")

	rows, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeRoster(t, "")

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestLoad_HTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Vendor Name,Vendor Domain,Vendor clients domains\nAcme,acme.com,globex.com\n"))
	}))
	defer srv.Close()

	rows, err := Load(context.Background(), srv.URL+"/roster.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "acme.com", rows[0].VendorDomain)
}
