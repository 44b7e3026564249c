package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitRepository_CountInsideWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rate-limit", TTL: time.Minute})

	ctx := context.Background()
	reference := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{-90 * time.Second, -30 * time.Second, -5 * time.Second} {
		if err := repo.RecordAttempt(ctx, "client-1", reference.Add(offset)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "client-1", time.Minute, reference)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 attempts inside the window", count)
	}

	count, err = repo.CountAttempts(ctx, "client-2", time.Minute, reference)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 for an unseen identifier", count)
	}
}

func TestRateLimitRepository_TrimWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rate-limit", TTL: time.Minute})

	ctx := context.Background()
	reference := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.RecordAttempt(ctx, "client-1", reference.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "client-1", reference.Add(-10*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	if err := repo.TrimWindow(ctx, "client-1", time.Minute, reference); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "client-1", time.Hour, reference)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 surviving attempt", count)
	}
}

func TestRateLimitRepository_OldestAttempt(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rate-limit", TTL: time.Minute})

	ctx := context.Background()
	reference := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	oldest := reference.Add(-45 * time.Second)

	if _, found, err := repo.OldestAttempt(ctx, "client-1", time.Minute, reference); err != nil || found {
		t.Fatalf("expected no attempt yet, got found=%t err=%v", found, err)
	}

	if err := repo.RecordAttempt(ctx, "client-1", reference.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "client-1", oldest); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "client-1", reference.Add(-5*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	got, found, err := repo.OldestAttempt(ctx, "client-1", time.Minute, reference)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !found {
		t.Fatal("expected an attempt inside the window")
	}

	// Scores round-trip through float64, so allow sub-microsecond drift.
	if diff := got.Sub(oldest); diff < -time.Microsecond || diff > time.Microsecond {
		t.Fatalf("oldest = %v, want about %v", got, oldest)
	}
}

func TestRateLimitRepository_AppliesTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rate-limit", TTL: 2 * time.Minute})

	if err := repo.RecordAttempt(context.Background(), "client-1", time.Now()); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	remaining := server.TTL("rate-limit:client-1")
	if remaining <= 0 || remaining > 2*time.Minute {
		t.Fatalf("expected ttl within (0, 2m], got %v", remaining)
	}
}
