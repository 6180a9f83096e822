package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memoryRateStore struct {
	counts map[string]int64
	err    error
}

func newMemoryRateStore() *memoryRateStore {
	return &memoryRateStore{counts: map[string]int64{}}
}

func (m *memoryRateStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryRateStore) RateLimitKey(scope string) string {
	return "careops:rate_limit:" + scope
}

func loginBody() *bytes.Reader {
	return bytes.NewReader([]byte(`{"email":"member@example.org","password":"pw"}`))
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 5, 3)
	store := newMemoryRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", loginBody())
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, resp.Code)
		}
	}
}

func TestAuthRateLimitBlocksEmailOverLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 100, 2)
	store := newMemoryRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", loginBody())
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit got %d", last)
	}
}

func TestAuthRateLimitBlocksIPOverLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	store := newMemoryRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/login", loginBody())
	first.RemoteAddr = "10.0.0.2:1234"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, first)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected first attempt allowed got %d", resp.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/login", loginBody())
	second.RemoteAddr = "10.0.0.2:1234"
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, second)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestAuthRateLimitUsesNamespacedKeys(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 5, 5)
	store := newMemoryRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", loginBody())
	req.RemoteAddr = "10.0.0.3:1234"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if _, ok := store.counts["careops:rate_limit:login:ip:10.0.0.3"]; !ok {
		t.Fatalf("expected namespaced ip counter, got keys %v", store.counts)
	}
	var sawEmail bool
	for key := range store.counts {
		if strings.HasPrefix(key, "careops:rate_limit:login:email:") {
			sawEmail = true
		}
	}
	if !sawEmail {
		t.Fatalf("expected namespaced email counter, got keys %v", store.counts)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)
	handler := AuthRateLimit(policy, newMemoryRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", loginBody())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pass-through got %d", resp.Code)
	}
}
