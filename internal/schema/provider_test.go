package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "invoice.yaml", `name: Invoice
module: accounts
fields:
  - name: customer
    kind: Link
    required: true
  - name: grand_total
    kind: Currency
`)
	writeDefinition(t, dir, "invoice_item.yaml", `name: Invoice Item
module: accounts
is_child: true
fields:
  - name: item_code
    kind: Link
`)
	writeDefinition(t, dir, "employee.json", `{"name": "Employee", "module": "hr", "fields": []}`)
	writeDefinition(t, dir, "broken.yaml", `name: [`)
	writeDefinition(t, dir, "notes.txt", `not a definition`)

	p, err := NewDirProvider(dir)
	require.NoError(t, err)

	t.Run("Meta", func(t *testing.T) {
		rt, err := p.Meta("Invoice")
		require.NoError(t, err)
		assert.Equal(t, "accounts", rt.Module)
		require.Len(t, rt.Fields, 2)
		assert.Equal(t, KindLink, rt.Fields[0].Kind)
		assert.True(t, rt.Fields[0].Required)
	})

	t.Run("Meta unknown type", func(t *testing.T) {
		_, err := p.Meta("Ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListModule skips child types", func(t *testing.T) {
		names, err := p.ListModule("accounts")
		require.NoError(t, err)
		assert.Equal(t, []string{"Invoice"}, names)
	})

	t.Run("ListAll is sorted and complete", func(t *testing.T) {
		names, err := p.ListAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Employee", "Invoice", "Invoice Item"}, names)
	})

	t.Run("Exists", func(t *testing.T) {
		assert.True(t, p.Exists("Employee"))
		assert.False(t, p.Exists("Ghost"))
	})
}

func TestNewDirProvider_EmptyDir(t *testing.T) {
	p, err := NewDirProvider("")
	require.NoError(t, err)

	names, err := p.ListAll()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestNewDirProvider_MissingDir(t *testing.T) {
	_, err := NewDirProvider(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestIsSystemType(t *testing.T) {
	assert.True(t, IsSystemType("User"))
	assert.True(t, IsSystemType("Role"))
	assert.False(t, IsSystemType("Invoice"))
}
