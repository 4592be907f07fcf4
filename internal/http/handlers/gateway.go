package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/catalog-console/internal/upstream"
)

const maxDetailsBytes = 512

// Forwarder sends one request to the remote product store.
type Forwarder interface {
	Do(ctx context.Context, method string, query url.Values, body []byte) (upstream.Response, error)
}

// Gateway is the single proxy endpoint in front of the remote product store.
type Gateway struct {
	upstream Forwarder
	metrics  *GatewayMetrics
}

// NewGateway creates a gateway forwarding to fwd. metrics may be nil.
func NewGateway(fwd Forwarder, metrics *GatewayMetrics) *Gateway {
	return &Gateway{upstream: fwd, metrics: metrics}
}

// CORS adds the permissive cross-origin headers the console clients rely on.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP godoc
// @Summary Product gateway
// @Description Forwards product list, create and update calls to the remote product store and relays its answer.
// @Tags gateway
// @Accept json
// @Produce json
// @Param product body models.ProductUpdate false "Product fields; id is required on PUT"
// @Success 200 {object} ProductsResponse
// @Success 201 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products [get]
// @Router /api/products [post]
// @Router /api/products [put]
// @Router /api/products [options]
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	defer func() {
		if g.metrics != nil {
			g.metrics.Requests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		}
	}()

	switch r.Method {
	case http.MethodOptions:
		ww.WriteHeader(http.StatusOK)
	case http.MethodGet:
		g.forward(ww, r, nil, nil)
	case http.MethodPost:
		body, err := readBody(ww, r)
		if err != nil {
			g.reject(ww, r, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		g.forward(ww, r, nil, body)
	case http.MethodPut:
		g.put(ww, r)
	default:
		ww.Header().Set("Allow", "GET, POST, PUT")
		g.reject(ww, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), "")
	}
}

func (g *Gateway) put(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := readJSON(w, r, &fields); err != nil {
		g.reject(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	id, err := productID(fields["id"])
	if err != nil {
		g.reject(w, r, http.StatusBadRequest, "missing or invalid product id", err.Error())
		return
	}
	delete(fields, "id")

	body, err := json.Marshal(fields)
	if err != nil {
		g.reject(w, r, http.StatusInternalServerError, "internal error in proxy for PUT", err.Error())
		return
	}
	g.forward(w, r, url.Values{"id": {strconv.Itoa(id)}}, body)
}

// productID accepts a JSON integer or a numeric string.
func productID(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("id is required")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch id := v.(type) {
	case json.Number:
		n, err := strconv.Atoi(id.String())
		if err != nil {
			return 0, fmt.Errorf("id %s is not an integer", id)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return 0, fmt.Errorf("id %q is not an integer", id)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("id must be a number, got %T", v)
	}
}

func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, query url.Values, body []byte) {
	const op = "Gateway.forward"
	log := slog.With("op", op, "method", r.Method)

	start := time.Now()
	res, err := g.upstream.Do(r.Context(), r.Method, query, body)
	if g.metrics != nil {
		g.metrics.UpstreamDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		log.Error("upstream request failed", "err", err)
		g.reject(w, r, http.StatusInternalServerError, "internal error in proxy for "+r.Method, err.Error())
		return
	}

	if !res.OK() {
		msg := upstream.ErrorMessage(res.Body)
		if msg == "" {
			msg = fmt.Sprintf("upstream rejected %s request", r.Method)
		}
		log.Warn("upstream responded with an error", "status", res.Status, "message", msg)
		details := fmt.Sprintf("upstream responded with status %d: %s", res.Status, truncate(res.Body, maxDetailsBytes))
		g.reject(w, r, res.Status, msg, details)
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(res.Status)
	if _, err := w.Write(res.Body); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func (g *Gateway) reject(w http.ResponseWriter, r *http.Request, status int, msg, details string) {
	if err := writeJSON(w, status, ErrorResponse{Error: msg, Details: details}); err != nil {
		slog.Error("failed to write error response", "op", "Gateway.reject", "method", r.Method, "err", err)
	}
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
