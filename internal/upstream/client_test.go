package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeList(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		data := []byte(`{"body":{"data":[{"id":1,"name":"Chair","category":"Furniture","price":49.99,"stock":3,"image":"https://placehold.co/100x100"}]}}`)

		products, err := DecodeList(data)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 1, products[0].ID)
		assert.Equal(t, "Chair", products[0].Name)
		assert.Equal(t, "49.99", products[0].Price.String())
		assert.Equal(t, 3, products[0].Stock)
	})

	t.Run("EmptyList", func(t *testing.T) {
		products, err := DecodeList([]byte(`{"body":{"data":[]}}`))
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	tests := map[string]string{
		"ProductsVariant": `{"products":[{"id":1}]}`,
		"MissingData":     `{"body":{}}`,
		"NullData":        `{"body":{"data":null}}`,
		"WrongType":       `{"body":{"data":{"id":1}}}`,
		"NotJSON":         `<html></html>`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeList([]byte(raw))
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "name is required", ErrorMessage([]byte(`{"error":"name is required"}`)))
	assert.Equal(t, "boom", ErrorMessage([]byte(`{"message":"boom"}`)))
	assert.Equal(t, "", ErrorMessage([]byte(`not json`)))
	assert.Equal(t, "", ErrorMessage([]byte(`{}`)))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("products", time.Second)
	assert.Error(t, err)
}

func TestClientDo(t *testing.T) {
	var gotMethod, gotQuery, gotBody, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/products", time.Second)
	require.NoError(t, err)

	res, err := c.Do(context.Background(), http.MethodPut, map[string][]string{"id": {"7"}}, []byte(`{"name":"x"}`))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "id=7", gotQuery)
	assert.Equal(t, `{"name":"x"}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, http.StatusAccepted, res.Status)
	assert.True(t, res.OK())
	assert.Equal(t, `{"ok":true}`, string(res.Body))
}

func TestClientListAndGet(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"store unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"body":{"data":[{"id":1,"name":"Chair"},{"id":2,"name":"Table"}]}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	p, err := c.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Table", p.Name)

	_, err = c.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProductNotFound)

	status = http.StatusServiceUnavailable
	_, err = c.ListProducts(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
	assert.Contains(t, se.Error(), "store unavailable")
}

func TestClientDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, nil, nil)
	assert.Error(t, err)
}
