package postman

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recordkit/postsync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Remote.APIKey = "PMAK-test-key"
	cfg.Remote.APIURL = server.URL

	return NewClient(ClientParams{
		Config:      cfg,
		AuthManager: NewAPIKeyAuth(cfg.Remote.APIKey),
	})
}

func TestClient_GetCollection(t *testing.T) {
	var gotKey, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(Envelope{Collection: Collection{
			Info:  Info{Name: "Generated CRUD APIs"},
			Items: []Item{{Name: "Invoice"}},
		}})
	})

	col, err := client.GetCollection(context.Background(), "col-123")
	require.NoError(t, err)

	assert.Equal(t, "PMAK-test-key", gotKey)
	assert.Equal(t, "/collections/col-123", gotPath)
	assert.Equal(t, "Generated CRUD APIs", col.Info.Name)
	require.Len(t, col.Items, 1)
	assert.Equal(t, "Invoice", col.Items[0].Name)
}

func TestClient_UpdateCollection(t *testing.T) {
	var gotMethod string
	var gotEnvelope Envelope
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		_, _ = w.Write([]byte(`{}`))
	})

	col := &Collection{
		Info:  Info{Name: "Generated CRUD APIs", Schema: CollectionSchema},
		Items: []Item{{Name: "Customer"}},
	}
	require.NoError(t, client.UpdateCollection(context.Background(), "col-123", col))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "Generated CRUD APIs", gotEnvelope.Collection.Info.Name)
	require.Len(t, gotEnvelope.Collection.Items, 1)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"name":"AuthenticationError"}}`))
	})

	_, err := client.GetCollection(context.Background(), "col-123")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "get collection", apiErr.Op)
	assert.Contains(t, apiErr.Body, "AuthenticationError")
}

func TestClient_MissingAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the server without credentials")
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Remote.APIURL = server.URL
	client := NewClient(ClientParams{Config: cfg, AuthManager: NewAPIKeyAuth("")})

	_, err := client.GetCollection(context.Background(), "col-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is not configured")
}

func TestClient_GetWorkspace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"workspace":{"id":"ws-9","name":"Team","type":"team"}}`))
	})

	ws, err := client.GetWorkspace(context.Background(), "ws-9")
	require.NoError(t, err)
	assert.Equal(t, "ws-9", ws.ID)
	assert.Equal(t, "Team", ws.Name)
}

func TestClient_CreateEnvironment(t *testing.T) {
	var gotEnvelope EnvironmentEnvelope
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/environments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		_, _ = w.Write([]byte(`{"environment":{"id":"env-42"}}`))
	})

	id, err := client.CreateEnvironment(context.Background(), &Environment{
		Name: "Site - Local",
		Values: []EnvironmentValue{
			{Key: "base_url", Value: "http://dev.localhost:8000", Enabled: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "env-42", id)
	assert.Equal(t, "Site - Local", gotEnvelope.Environment.Name)
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetCollection(ctx, "col-123")
	assert.Error(t, err)
}
