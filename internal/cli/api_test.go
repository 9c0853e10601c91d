package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])

		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "acc-1",
			"refresh_token": "ref-1",
		})
	}))
	defer srv.Close()

	pair, err := NewAPIClient(srv.URL).Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", pair.AccessToken)
	assert.Equal(t, "ref-1", pair.RefreshToken)
}

func TestAPIClient_ErrorDetailSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "invalid login or password"})
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL).Login(context.Background(), "alice", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid login or password")
}

func TestAPIClient_ImportCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/students/import-csv", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"job_id": "j-1"})
	}))
	defer srv.Close()

	jobID, err := NewAPIClient(srv.URL).ImportCSV(context.Background(), "tok", "s3://imports/x.csv")
	require.NoError(t, err)
	assert.Equal(t, "j-1", jobID)
}

func TestAPIClient_BulkDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body["ids"], 2)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"job_id": "j-2"})
	}))
	defer srv.Close()

	jobID, err := NewAPIClient(srv.URL).BulkDelete(context.Background(), "tok", []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "j-2", jobID)
}

func TestAPIClient_JobStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/j-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"id": "j-1", "status": "done", "result": "imported 3 records"})
	}))
	defer srv.Close()

	job, err := NewAPIClient(srv.URL).JobStatus(context.Background(), "tok", "j-1")
	require.NoError(t, err)
	assert.Equal(t, "done", job["status"])
}
