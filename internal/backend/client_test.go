package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/octofit/internal/domain"
)

func TestListUsersDecodesCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Iron Man","email":"tony.stark@marvel.com","team":"Team Marvel","created_at":"2026-01-02T10:00:00Z"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/", 0)
	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, domain.ID("1"), users[0].ID)
	require.Equal(t, "tony.stark", users[0].Handle())
}

func TestListFailsOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).ListActivities(context.Background())
	require.Error(t, err)
	require.Equal(t, "Failed to fetch activities", err.Error())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestListFailsOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).ListWorkouts(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode workouts response")
}

func TestUpdateUserSendsFullRecord(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/42/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"id":42,"name":"Clark Kent","email":"clark@dc.test","team":"Team DC"}`))
	}))
	defer srv.Close()

	updated, err := NewClient(srv.URL, 0).UpdateUser(context.Background(), "42", domain.UserUpdate{
		Name:  "Clark Kent",
		Email: "clark@dc.test",
		Team:  domain.TeamDC,
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "Clark Kent", "email": "clark@dc.test", "team": "Team DC"}, got)
	require.Equal(t, "Clark Kent", updated.Name)
}

func TestUpdateUserSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Email already in use"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).UpdateUser(context.Background(), "42", domain.UserUpdate{})
	require.EqualError(t, err, "Email already in use")
}

func TestUpdateUserFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email":["Enter a valid email address."]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).UpdateUser(context.Background(), "42", domain.UserUpdate{})
	require.EqualError(t, err, "Failed to update user")
}
