package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rogerio-castellano/catalog-console/internal/models"
	"github.com/rogerio-castellano/catalog-console/internal/upstream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"body":{"data":[{"id":1,"name":"Chair","category":"Furniture","price":49.99,"stock":3}]}}`))
	}))
	t.Cleanup(srv.Close)

	products, err := NewGatewayClient(srv.URL, time.Second).List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Chair", products[0].Name)
}

func TestGatewayClient_ListShapeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewGatewayClient(srv.URL, time.Second).List(context.Background())
	assert.ErrorIs(t, err, upstream.ErrShapeMismatch)
}

func TestGatewayClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"name is required","details":"upstream responded with status 400"}`))
	}))
	t.Cleanup(srv.Close)

	err := NewGatewayClient(srv.URL, time.Second).Create(context.Background(), models.ProductInput{})

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusBadRequest, upErr.Status)
	assert.Equal(t, "name is required", upErr.Message)
}

func TestGatewayClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewGatewayClient(url, time.Second).List(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "load", netErr.Op)
}

func TestGatewayClient_UpdateSendsFlatPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"body":{"data":{}}}`))
	}))
	t.Cleanup(srv.Close)

	update := models.ProductUpdate{
		ID: 4,
		ProductInput: models.ProductInput{
			Name:     "Notebook",
			Category: "Stationery",
			Price:    decimal.RequireFromString("2.5"),
			Stock:    10,
			Image:    "img",
		},
	}
	require.NoError(t, NewGatewayClient(srv.URL, time.Second).Update(context.Background(), update))

	assert.Equal(t, float64(4), got["id"])
	assert.Equal(t, "Notebook", got["name"])
	assert.Equal(t, 2.5, got["price"])
	assert.Equal(t, float64(10), got["stock"])
	assert.NotContains(t, got, "ProductInput")
}

func TestGatewayClient_ForwardsVisitorAddr(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(ForwardedForHeader))
		_, _ = w.Write([]byte(`{"body":{"data":[]}}`))
	}))
	t.Cleanup(srv.Close)
	c := NewGatewayClient(srv.URL, time.Second)

	_, err := c.List(context.Background())
	require.NoError(t, err)
	_, err = c.List(WithClientAddr(context.Background(), "10.0.0.7"))
	require.NoError(t, err)

	assert.Equal(t, []string{"", "10.0.0.7"}, seen)
}
