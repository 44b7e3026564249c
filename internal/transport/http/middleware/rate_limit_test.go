package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type fakeRateLimitStore struct {
	trimErr   error
	count     int
	countErr  error
	oldest    time.Time
	hasOldest bool
	oldestErr error
	recordErr error

	recordCalls int
	recordedKey string
}

func (f *fakeRateLimitStore) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	return f.trimErr
}

func (f *fakeRateLimitStore) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	return f.count, f.countErr
}

func (f *fakeRateLimitStore) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	f.recordCalls++
	f.recordedKey = identifier
	return f.recordErr
}

func (f *fakeRateLimitStore) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	return f.oldest, f.hasOldest, f.oldestErr
}

func newRateLimitRouter(limiter *RateLimiter, rule RateLimitRule) *gin.Engine {
	router := gin.New()
	router.Use(limiter.RateLimit(rule))
	router.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiterAllowsBelowLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	oldest := now.Add(-20 * time.Second)

	store := &fakeRateLimitStore{count: 1, oldest: oldest, hasOldest: true}
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := newRateLimitRouter(limiter, RateLimitRule{
		Name:   "login",
		Limit:  5,
		Window: time.Minute,
		Identifier: func(c *gin.Context) (string, bool) {
			return "192.0.2.1", true
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.recordCalls != 1 {
		t.Fatalf("expected one recorded attempt, got %d", store.recordCalls)
	}
	if store.recordedKey != "login:192.0.2.1" {
		t.Fatalf("recorded key = %q", store.recordedKey)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("limit header = %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "3" {
		t.Fatalf("remaining header = %q", got)
	}
	expectedReset := oldest.Add(time.Minute).Unix()
	if got := rr.Header().Get("X-RateLimit-Reset"); got != strconv.FormatInt(expectedReset, 10) {
		t.Fatalf("reset header = %q, want %d", got, expectedReset)
	}
	if got := rr.Header().Get("Retry-After"); got != "" {
		t.Fatalf("unexpected retry-after header %q", got)
	}
}

func TestRateLimiterBlocksAtLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	oldest := now.Add(-15 * time.Second)

	store := &fakeRateLimitStore{count: 5, oldest: oldest, hasOldest: true}
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := newRateLimitRouter(limiter, RateLimitRule{
		Name:   "login",
		Limit:  5,
		Window: time.Minute,
		Identifier: func(c *gin.Context) (string, bool) {
			return "192.0.2.1", true
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if store.recordCalls != 0 {
		t.Fatalf("expected no recorded attempt when blocked, got %d", store.recordCalls)
	}
	if got := rr.Header().Get("Retry-After"); got != "45" {
		t.Fatalf("retry-after header = %q", got)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests {
		t.Fatalf("problem status = %d", problem.Status)
	}
	if problem.RetryAfter != 45 {
		t.Fatalf("problem retry_after = %d, want 45", problem.RetryAfter)
	}
}

func TestRateLimiterFailsOpenOnStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &fakeRateLimitStore{trimErr: errors.New("redis down")}
	limiter := NewRateLimiter(store, zaptest.NewLogger(t))

	router := newRateLimitRouter(limiter, RateLimitRule{
		Name:   "login",
		Limit:  5,
		Window: time.Minute,
		Identifier: func(c *gin.Context) (string, bool) {
			return "192.0.2.1", true
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when failing open, got %d", rr.Code)
	}
	if store.recordCalls != 0 {
		t.Fatalf("expected no recorded attempt on failure, got %d", store.recordCalls)
	}
}

func TestRateLimiterSkipsMissingIdentifier(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &fakeRateLimitStore{count: 100}
	limiter := NewRateLimiter(store, zaptest.NewLogger(t))

	router := newRateLimitRouter(limiter, RateLimitRule{
		Name:   "login",
		Limit:  1,
		Window: time.Minute,
		Identifier: func(c *gin.Context) (string, bool) {
			return "", false
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when identifier is missing, got %d", rr.Code)
	}
	if store.recordCalls != 0 {
		t.Fatalf("expected no recorded attempt, got %d", store.recordCalls)
	}
}
