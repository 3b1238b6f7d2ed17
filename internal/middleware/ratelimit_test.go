package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    3,
		RecalcRate:      rate.Limit(1.0 / 60.0),
		RecalcBurst:     2,
		CleanupInterval: time.Hour,
	}
}

func doRequest(t *testing.T, handler http.Handler, userID string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/rating/recalculate", nil)
	if userID != "" {
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Result().StatusCode
}

func TestRateLimiter_GeneralAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		if status := doRequest(t, handler, "user-1"); status != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, status, http.StatusOK)
		}
	}

	if status := doRequest(t, handler, "user-1"); status != http.StatusTooManyRequests {
		t.Errorf("request over burst: status = %d, want %d", status, http.StatusTooManyRequests)
	}
}

func TestRateLimiter_PerUserIsolation(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1のバーストを使い切る
	for i := 0; i < 3; i++ {
		doRequest(t, handler, "user-1")
	}
	if status := doRequest(t, handler, "user-1"); status != http.StatusTooManyRequests {
		t.Fatalf("user-1 should be limited, got %d", status)
	}

	// user-2は影響を受けない
	if status := doRequest(t, handler, "user-2"); status != http.StatusOK {
		t.Errorf("user-2: status = %d, want %d", status, http.StatusOK)
	}
}

func TestRateLimiter_RecalcIndependentOfGeneral(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	recalc := rl.RecalculateMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 再計算バースト2を使い切る
	for i := 0; i < 2; i++ {
		if status := doRequest(t, recalc, "user-1"); status != http.StatusOK {
			t.Fatalf("recalc request %d: status = %d", i+1, status)
		}
	}
	if status := doRequest(t, recalc, "user-1"); status != http.StatusTooManyRequests {
		t.Errorf("recalc over burst: status = %d, want 429", status)
	}

	// API全般は独立に許可される
	if status := doRequest(t, general, "user-1"); status != http.StatusOK {
		t.Errorf("general after recalc limit: status = %d, want 200", status)
	}
}

func TestRateLimiter_Unauthenticated(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	if status := doRequest(t, handler, ""); status != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestRateLimiter_RetryAfterHeader(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		doRequest(t, handler, "user-1")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rating/me", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Result().StatusCode)
	}
	if w.Result().Header.Get("Retry-After") == "" {
		t.Error("Retry-After header should be set on 429 responses")
	}
}

func TestRateLimiter_LimiterCounts(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest(t, general, "user-1")
	doRequest(t, general, "user-2")

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", got)
	}
	if got := rl.RecalcLimiterCount(); got != 0 {
		t.Errorf("RecalcLimiterCount = %d, want 0", got)
	}
}
