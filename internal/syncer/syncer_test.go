package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/recordkit/postsync/internal/config"
	"github.com/recordkit/postsync/internal/endpoint"
	"github.com/recordkit/postsync/internal/postman"
	"github.com/recordkit/postsync/internal/schema"
	"github.com/recordkit/postsync/internal/service"
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

type remoteCall struct {
	method string
	path   string
}

// fakeRemote is an httptest server standing in for the collection service.
type fakeRemote struct {
	server *httptest.Server
	calls  []remoteCall
	stored postman.Envelope
}

func newFakeRemote(t *testing.T, initial postman.Collection) *fakeRemote {
	t.Helper()
	f := &fakeRemote{stored: postman.Envelope{Collection: initial}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls = append(f.calls, remoteCall{method: r.Method, path: r.URL.Path})

		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(f.stored)
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f.stored))
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func testConfig(remoteURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Remote.APIKey = "PMAK-test"
	cfg.Remote.WorkspaceID = "ws-1"
	cfg.Remote.CollectionID = "col-1"
	cfg.Remote.APIURL = remoteURL
	cfg.Remote.BaseURL = "http://dev.localhost:8000"
	cfg.SiteName = "dev"
	return cfg
}

func newTestSyncer(t *testing.T, cfg *config.Config, types map[string]*schema.RecordType) (*Syncer, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	client := postman.NewClient(postman.ClientParams{
		Config:      cfg,
		AuthManager: postman.NewAPIKeyAuth(cfg.Remote.APIKey),
	})

	s := New(Params{
		Config:   cfg,
		Client:   client,
		Store:    st,
		Provider: &fakeProvider{types: types},
	})
	return s, st
}

func singleRecord(t *testing.T, target string) store.GenerationRecord {
	t.Helper()
	builder := endpoint.NewBuilder(nil)
	payload, err := json.Marshal(builder.BuildEndpoints(target, ""))
	require.NoError(t, err)
	return store.GenerationRecord{
		Kind:      store.KindSingleType,
		Target:    target,
		Endpoints: payload,
		Status:    store.StatusActive,
	}
}

func moduleRecord(t *testing.T, module string, types ...string) store.GenerationRecord {
	t.Helper()
	builder := endpoint.NewBuilder(nil)
	var all []service.TypeEndpoints
	for _, name := range types {
		all = append(all, service.TypeEndpoints{
			RecordType: name,
			Endpoints:  builder.BuildEndpoints(name, ""),
		})
	}
	payload, err := json.Marshal(all)
	require.NoError(t, err)
	return store.GenerationRecord{
		Kind:      store.KindWholeModule,
		Target:    module,
		Endpoints: payload,
		Status:    store.StatusActive,
	}
}

func TestSyncer_Sync_TwoRoundTrips(t *testing.T) {
	remote := newFakeRemote(t, postman.Collection{
		Info:  postman.Info{Name: "Existing"},
		Items: []postman.Item{{Name: "Manual Tests"}},
	})
	cfg := testConfig(remote.server.URL)

	s, st := newTestSyncer(t, cfg, map[string]*schema.RecordType{
		"Invoice":  {Name: "Invoice", Module: "accounts"},
		"Customer": {Name: "Customer", Module: "selling"},
		"Payment":  {Name: "Payment", Module: "accounts"},
	})
	st.Upsert(singleRecord(t, "Invoice"))
	st.Upsert(singleRecord(t, "Customer"))
	st.Upsert(moduleRecord(t, "accounts", "Payment"))

	result, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)

	require.Len(t, remote.calls, 2, "one GET and one PUT regardless of record count")
	assert.Equal(t, remoteCall{method: "GET", path: "/collections/col-1"}, remote.calls[0])
	assert.Equal(t, remoteCall{method: "PUT", path: "/collections/col-1"}, remote.calls[1])

	items := remote.stored.Collection.Items
	var names []string
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Manual Tests", "Invoice", "Customer", "accounts Module"}, names)

	// The module folder wraps per-type subfolders.
	moduleFolder := items[3]
	require.Len(t, moduleFolder.Items, 1)
	assert.Equal(t, "Payment", moduleFolder.Items[0].Name)
	assert.Len(t, moduleFolder.Items[0].Items, 6)

	assert.False(t, st.Settings().LastSync.IsZero())
	assert.Equal(t, store.StatusActive, st.Settings().Status)
}

func TestSyncer_Sync_NoActiveRecords(t *testing.T) {
	remote := newFakeRemote(t, postman.Collection{})
	cfg := testConfig(remote.server.URL)
	s, _ := newTestSyncer(t, cfg, nil)

	result, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Empty(t, remote.calls, "nothing to sync means no remote calls")
}

func TestSyncer_Sync_ReplacesStaleFolder(t *testing.T) {
	remote := newFakeRemote(t, postman.Collection{
		Items: []postman.Item{
			{Name: "Invoice", Items: []postman.Item{{Name: "Stale Request"}}},
			{Name: "Keep Me"},
		},
	})
	cfg := testConfig(remote.server.URL)

	s, st := newTestSyncer(t, cfg, map[string]*schema.RecordType{
		"Invoice": {Name: "Invoice", Module: "accounts"},
	})
	st.Upsert(singleRecord(t, "Invoice"))

	_, err := s.Sync(context.Background())
	require.NoError(t, err)

	items := remote.stored.Collection.Items
	require.Len(t, items, 2)
	assert.Equal(t, "Keep Me", items[0].Name)
	assert.Equal(t, "Invoice", items[1].Name)
	assert.Len(t, items[1].Items, 6, "stale folder contents replaced by the regenerated set")
}

func TestSyncer_BuildFolders_SkipsMalformedRecords(t *testing.T) {
	remote := newFakeRemote(t, postman.Collection{})
	cfg := testConfig(remote.server.URL)
	s, _ := newTestSyncer(t, cfg, map[string]*schema.RecordType{
		"Invoice": {Name: "Invoice", Module: "accounts"},
	})

	records := []store.GenerationRecord{
		{Kind: store.KindSingleType, Target: "Broken", Endpoints: json.RawMessage(`not json`), Status: store.StatusActive},
		singleRecord(t, "Invoice"),
	}

	folders, outcomes := s.BuildFolders(records)

	require.Len(t, folders, 1)
	assert.Equal(t, "Invoice", folders[0].Name)

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Skipped)
	assert.Contains(t, outcomes[0].Reason, "malformed")
	assert.False(t, outcomes[1].Skipped)
}

func TestSyncer_BuildFolders_ModuleWithoutName(t *testing.T) {
	remote := newFakeRemote(t, postman.Collection{})
	cfg := testConfig(remote.server.URL)
	s, _ := newTestSyncer(t, cfg, nil)

	record := moduleRecord(t, "", "Invoice", "Customer")
	folders, outcomes := s.BuildFolders([]store.GenerationRecord{record})

	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Skipped)
	require.Len(t, folders, 2, "type folders land at the top level when the module has no name")
	assert.Equal(t, "Invoice", folders[0].Name)
	assert.Equal(t, "Customer", folders[1].Name)
}

func TestSyncer_ValidateConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/workspaces/ws-1":
				_, _ = w.Write([]byte(`{"workspace":{"id":"ws-1"}}`))
			case "/collections/col-1":
				_, _ = w.Write([]byte(`{"collection":{"info":{"name":"C"}}}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		s, st := newTestSyncer(t, cfg, nil)

		result := s.ValidateConnection(context.Background())
		assert.Equal(t, "success", result.Status)
		assert.Equal(t, store.StatusActive, st.Settings().Status)
	})

	t.Run("bad workspace", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		s, st := newTestSyncer(t, cfg, nil)

		result := s.ValidateConnection(context.Background())
		assert.Equal(t, "error", result.Status)
		assert.Contains(t, result.Message, "workspace")
		assert.Equal(t, store.StatusError, st.Settings().Status)
	})
}

func TestSyncer_CreateEnvironment(t *testing.T) {
	var gotEnvelope postman.EnvironmentEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		_, _ = w.Write([]byte(`{"environment":{"id":"env-7"}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	s, _ := newTestSyncer(t, cfg, nil)

	id, err := s.CreateEnvironment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-7", id)

	env := gotEnvelope.Environment
	assert.Equal(t, "Site - dev", env.Name)
	require.Len(t, env.Values, 3)
	assert.Equal(t, "base_url", env.Values[0].Key)
	assert.Equal(t, "http://dev.localhost:8000", env.Values[0].Value)
	assert.Equal(t, "api_key", env.Values[1].Key)
	assert.Equal(t, "{{your_api_key}}", env.Values[1].Value)
	assert.Equal(t, "site_name", env.Values[2].Key)
	assert.Equal(t, "dev", env.Values[2].Value)
}
