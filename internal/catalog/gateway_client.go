package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rogerio-castellano/catalog-console/internal/models"
	"github.com/rogerio-castellano/catalog-console/internal/upstream"
)

// Gateway is the subset of the proxy surface the collection depends on.
type Gateway interface {
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, in models.ProductInput) error
	Update(ctx context.Context, update models.ProductUpdate) error
}

// ForwardedForHeader carries the console visitor's address on gateway calls
// so the rate limiter can budget each visitor separately.
const ForwardedForHeader = "X-Forwarded-For"

type clientAddrKey struct{}

// WithClientAddr returns a context whose gateway calls are made on behalf
// of the visitor at addr.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddrKey{}, addr)
}

func clientAddr(ctx context.Context) string {
	addr, _ := ctx.Value(clientAddrKey{}).(string)
	return addr
}

// GatewayClient calls the proxy endpoint over HTTP.
type GatewayClient struct {
	url        string
	httpClient *http.Client
}

// NewGatewayClient returns a client for the gateway mounted at url.
func NewGatewayClient(url string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// List fetches the collection through the gateway.
func (c *GatewayClient) List(ctx context.Context) ([]models.Product, error) {
	body, err := c.send(ctx, "load", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	products, err := upstream.DecodeList(body)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Create posts a new product.
func (c *GatewayClient) Create(ctx context.Context, in models.ProductInput) error {
	_, err := c.send(ctx, "add", http.MethodPost, in)
	return err
}

// Update puts {id, ...fields}.
func (c *GatewayClient) Update(ctx context.Context, update models.ProductUpdate) error {
	_, err := c.send(ctx, "edit", http.MethodPut, update)
	return err
}

func (c *GatewayClient) send(ctx context.Context, op, method string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url, reader)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if addr := clientAddr(ctx); addr != "" {
		req.Header.Set(ForwardedForHeader, addr)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := upstream.ErrorMessage(body)
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, &UpstreamError{Status: res.StatusCode, Message: msg}
	}
	return body, nil
}
