package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/proven-connections/connections-cli/internal/model"
)

func TestParseClientList_Empty(t *testing.T) {
	assert.Empty(t, ParseClientList(""))
	assert.Empty(t, ParseClientList("   "))
	assert.Empty(t, ParseClientList(" , , "))
}

func TestParseClientList_NameWithDomain(t *testing.T) {
	entries := ParseClientList("Acme (acme.com), Foo")
	assert.Equal(t, []model.ClientEntry{
		{Name: "Acme", Domain: "acme.com"},
		{Name: "Foo"},
	}, entries)
}

func TestParseClientList_BareDomain(t *testing.T) {
	entries := ParseClientList("globex.com")
	assert.Equal(t, []model.ClientEntry{{Domain: "globex.com"}}, entries)
}

func TestParseClientList_BareName(t *testing.T) {
	entries := ParseClientList("Initech")
	assert.Equal(t, []model.ClientEntry{{Name: "Initech"}}, entries)
}

func TestParseClientList_Mixed(t *testing.T) {
	entries := ParseClientList("Acme (acme.com), globex.com, Initech")
	assert.Len(t, entries, 3)
	assert.Equal(t, model.ClientEntry{Name: "Acme", Domain: "acme.com"}, entries[0])
	assert.Equal(t, model.ClientEntry{Domain: "globex.com"}, entries[1])
	assert.Equal(t, model.ClientEntry{Name: "Initech"}, entries[2])
}

func TestParseClientList_EmptyIdentifier(t *testing.T) {
	entries := ParseClientList("Acme ()")
	assert.Equal(t, []model.ClientEntry{{Name: "Acme"}}, entries)
}

func TestParseClientList_NanIdentifier(t *testing.T) {
	entries := ParseClientList("Acme (nan), Globex (NaN)")
	assert.Equal(t, []model.ClientEntry{{Name: "Acme"}, {Name: "Globex"}}, entries)
}

func TestParseClientList_DomainOnlyParens(t *testing.T) {
	entries := ParseClientList("(acme.com)")
	assert.Equal(t, []model.ClientEntry{{Domain: "acme.com"}}, entries)
}

func TestParseClientList_EmptyParensDropped(t *testing.T) {
	assert.Empty(t, ParseClientList("()"))
	assert.Empty(t, ParseClientList("(nan)"))
}

func TestParseClientList_TrimsWhitespace(t *testing.T) {
	entries := ParseClientList("  Acme Corp  ( acme.com ) ,  initech.io  ")
	assert.Equal(t, []model.ClientEntry{
		{Name: "Acme Corp", Domain: "acme.com"},
		{Domain: "initech.io"},
	}, entries)
}
