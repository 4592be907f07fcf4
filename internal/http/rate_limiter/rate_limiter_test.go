package rate_limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddleware_RejectsBeyondBurst(t *testing.T) {
	l := New(0.001, 2, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected the first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 for the third request, got %d", codes[2])
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for a new client, got %d", w.Code)
	}
}

func TestCleanup_DropsIdleVisitors(t *testing.T) {
	l := New(1, 1, time.Millisecond)
	l.GetVisitor("10.0.0.1")

	time.Sleep(5 * time.Millisecond)
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.visitors) != 0 {
		t.Errorf("expected idle visitor to be dropped, %d left", len(l.visitors))
	}
}

func TestClientIP_TrustsForwardedOnlyFromLoopback(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"direct client", "10.0.0.1:1234", "", "10.0.0.1"},
		{"direct client cannot spoof", "10.0.0.1:1234", "10.9.9.9", "10.0.0.1"},
		{"loopback without header", "127.0.0.1:5555", "", "127.0.0.1"},
		{"loopback forwards visitor", "127.0.0.1:5555", "10.0.0.2", "10.0.0.2"},
		{"ipv6 loopback keeps first hop", "[::1]:5555", "10.0.0.3, 10.0.0.4", "10.0.0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
