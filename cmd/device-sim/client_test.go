package main

import (
	"context"
	"encoding/json"
	"foodia-handoff/domain"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *apiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &apiClient{baseURL: srv.URL, token: "tok", transactionID: "tx-1", timeout: time.Second}
}

func TestPublishSendsOwnLocation(t *testing.T) {
	var got map[string]interface{}
	var auth, method, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth, method, path = r.Header.Get("Authorization"), r.Method, r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"lat":1,"lng":2}}`))
	})

	err := client.Publish(context.Background(), "handoff.tx-1.ownerLocation", domain.Coordinate{Lat: 1, Lng: 2, Timestamp: 1000})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/v1/transactions/tx-1/location", path)
	assert.Equal(t, 1.0, got["lat"])
	assert.Equal(t, 2.0, got["lng"])
	assert.NotContains(t, got, "field")
}

func TestPublishConflictStopsTracking(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":false,"message":"failed","error":"tracking is not active"}`))
	})

	err := client.Publish(context.Background(), "s", domain.Coordinate{Lat: 1, Lng: 2})
	assert.ErrorIs(t, err, domain.ErrTrackingInactive)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestStatusReadsTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transactions/tx-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"id":"tx-1","status":"accepted"}}`))
	})

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, status)
}

func TestServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":false,"message":"failed","error":"boom"}`))
	})

	_, err := client.Status(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransientIO)
}
