package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/dayboard/internal/model"
)

func newTestRateLimiter(generalBurst, createBurst int) *RateLimiter {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // テスト中に補充されない速度
		GeneralBurst:    generalBurst,
		CreateRate:      rate.Limit(0.001),
		CreateBurst:     createBurst,
		CleanupInterval: time.Hour,
	})
	return rl
}

func authedRequest(authID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	user := &model.AuthorizedUser{AuthID: authID, Email: authID + "@example.com"}
	return req.WithContext(ContextWithUser(req.Context(), user))
}

func TestRateLimiter_General_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(3, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("user-a"))
		if rec.Code != http.StatusOK {
			t.Fatalf("%d回目のリクエストが拒否された: %d", i+1, rec.Code)
		}
	}

	// バースト超過は429
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-a"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("ステータス = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-Afterヘッダが設定されるべき")
	}
}

func TestRateLimiter_General_PerUserIsolation(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-a"))
	if rec.Code != http.StatusOK {
		t.Fatalf("user-aの初回が拒否された: %d", rec.Code)
	}

	// user-aが上限に達してもuser-bは影響を受けない
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-b"))
	if rec.Code != http.StatusOK {
		t.Errorf("user-bのリクエストが拒否された: %d", rec.Code)
	}
}

func TestRateLimiter_CreateIndependentOfGeneral(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	create := rl.CreateMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	general.ServeHTTP(rec, authedRequest("user-a"))
	if rec.Code != http.StatusOK {
		t.Fatalf("general初回が拒否された: %d", rec.Code)
	}

	// generalの消費はcreateの枠に影響しない
	rec = httptest.NewRecorder()
	create.ServeHTTP(rec, authedRequest("user-a"))
	if rec.Code != http.StatusOK {
		t.Errorf("createのリクエストが拒否された: %d", rec.Code)
	}
}

func TestRateLimiter_UnauthenticatedRejected(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("未認証のリクエストはハンドラへ到達してはならない")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ステータス = %d, want 401", rec.Code)
	}
}
