package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rogerio-castellano/catalog-console/internal/models"
)

const maxResponseBytes = 8 << 20

// ErrProductNotFound is returned when the requested id is not in the store.
var ErrProductNotFound = errors.New("product not found")

// StatusError reports a non-2xx answer from the remote store.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	if msg := ErrorMessage(e.Body); msg != "" {
		return fmt.Sprintf("upstream responded with status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("upstream responded with status %d", e.Status)
}

// Response is a raw upstream answer.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client talks to the remote product store.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for the product collection at rawURL.
func NewClient(rawURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme and host are required", rawURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// URL returns the product collection URL.
func (c *Client) URL() string {
	return c.baseURL.String()
}

// Do sends a single request and returns the raw answer whatever its status.
// A non-nil error means no answer was received.
func (c *Client) Do(ctx context.Context, method string, query url.Values, body []byte) (Response, error) {
	u := *c.baseURL
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read upstream response: %w", err)
	}
	return Response{
		Status:      res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// ListProducts fetches the whole collection.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	res, err := c.Do(ctx, http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, &StatusError{Status: res.Status, Body: res.Body}
	}
	return DecodeList(res.Body)
}

// GetProduct returns a single product. The store has no item endpoint, so
// the whole list is fetched and searched.
func (c *Client) GetProduct(ctx context.Context, id int) (models.Product, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}
