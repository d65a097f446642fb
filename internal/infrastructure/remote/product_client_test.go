package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, baseURL string) *ProductClient {
	t.Helper()
	client, err := NewProductClient(ProductClientConfig{BaseURL: baseURL, TimeoutSeconds: 2}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestProductClient_DisplayName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/product-colors/SKU-RED", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"name":"Classic Tee","color_name":"Red"}}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	name, err := client.DisplayName(context.Background(), "SKU-RED")
	require.NoError(t, err)
	assert.Equal(t, "Classic Tee / Red", name)
}

func TestProductClient_DisplayNameWithoutColor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"name":"Classic Tee"}}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	name, err := client.DisplayName(context.Background(), "SKU-PLAIN")
	require.NoError(t, err)
	assert.Equal(t, "Classic Tee", name)
}

func TestProductClient_UnknownProductDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	name, err := client.DisplayName(context.Background(), "SKU-MISSING")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestProductClient_UnreachableServiceDegrades(t *testing.T) {
	client := newClient(t, "http://127.0.0.1:1")
	name, err := client.DisplayName(context.Background(), "SKU-RED")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestProductClient_BadPayloadDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	name, err := client.DisplayName(context.Background(), "SKU-RED")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestProductClientConfig_Validate(t *testing.T) {
	cfg := ProductClientConfig{}
	assert.Error(t, cfg.Validate())

	cfg = ProductClientConfig{BaseURL: "http://catalog:8080"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.TimeoutSeconds)
}
