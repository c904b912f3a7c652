package docs

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/recordkit/postsync/internal/endpoint"
	"github.com/recordkit/postsync/internal/schema"
	"github.com/recordkit/postsync/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	types map[string]*schema.RecordType
}

func (f *fakeProvider) Meta(name string) (*schema.RecordType, error) {
	rt, ok := f.types[name]
	if !ok {
		return nil, schema.ErrNotFound
	}
	return rt, nil
}

func (f *fakeProvider) ListModule(string) ([]string, error) { return nil, nil }
func (f *fakeProvider) ListAll() ([]string, error)          { return nil, nil }
func (f *fakeProvider) Exists(name string) bool             { _, ok := f.types[name]; return ok }

func TestExporter_Export(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	builder := endpoint.NewBuilder(nil)
	payload, err := json.Marshal(builder.BuildEndpoints("Invoice", ""))
	require.NoError(t, err)
	st.Upsert(store.GenerationRecord{
		Kind:      store.KindSingleType,
		Target:    "Invoice",
		Endpoints: payload,
		Status:    store.StatusActive,
	})

	exporter := NewExporter(Params{
		Store: st,
		Provider: &fakeProvider{types: map[string]*schema.RecordType{
			"Invoice": {Name: "Invoice", Module: "accounts", Fields: []schema.FieldSchema{
				{Name: "customer", Kind: schema.KindLink, Required: true},
				{Name: "grand_total", Kind: schema.KindCurrency},
				{Name: "section_main", Kind: schema.KindSectionBreak},
			}},
		}},
	})

	data, err := exporter.Export("Generated Record APIs", "http://dev.localhost:8000")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "3.0.3", doc["openapi"])

	info := doc["info"].(map[string]interface{})
	assert.Equal(t, "Generated Record APIs", info["title"])

	paths := doc["paths"].(map[string]interface{})
	require.Contains(t, paths, "/api/resource/Invoice")
	require.Contains(t, paths, "/api/resource/Invoice/{name}")
	require.Contains(t, paths, "/api/method/reportview.get")

	resource := paths["/api/resource/Invoice"].(map[string]interface{})
	assert.Contains(t, resource, "get")
	assert.Contains(t, resource, "post")

	post := resource["post"].(map[string]interface{})
	body := post["requestBody"].(map[string]interface{})
	content := body["content"].(map[string]interface{})
	media := content["application/json"].(map[string]interface{})
	bodySchema := media["schema"].(map[string]interface{})
	props := bodySchema["properties"].(map[string]interface{})

	assert.Contains(t, props, "customer")
	assert.Contains(t, props, "grand_total")
	assert.NotContains(t, props, "section_main", "structural fields are excluded")

	grandTotal := props["grand_total"].(map[string]interface{})
	assert.Equal(t, "number", grandTotal["type"])
}

func TestExporter_Export_Empty(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	exporter := NewExporter(Params{Store: st, Provider: &fakeProvider{}})

	data, err := exporter.Export("Empty", "")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "servers")
}
