package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaUsesLatestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/subjects/user_events-value/versions/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":12,"version":3}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL+"/").EnsureSchema(context.Background(), "user_events-value", userUpdatedSchema)
	require.NoError(t, err)
	require.Equal(t, 12, id)
}

func TestEnsureSchemaRegistersMissingSubject(t *testing.T) {
	var registered map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.NotFound(w, r)
		case http.MethodPost:
			assert.Equal(t, "/subjects/user_events-value/versions", r.URL.Path)
			assert.Equal(t, schemaRegistryContentType, r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&registered))
			_, _ = w.Write([]byte(`{"id":31}`))
		}
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "user_events-value", userUpdatedSchema)
	require.NoError(t, err)
	require.Equal(t, 31, id)
	require.Equal(t, "JSON", registered["schemaType"])
	require.Equal(t, userUpdatedSchema, registered["schema"])
}

func TestEnsureSchemaSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend store unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "user_events-value", userUpdatedSchema)
	require.ErrorContains(t, err, "backend store unavailable")
}
