package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreFixedWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := store.Check(ctx, "user@example.com", OpSendOTP)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("check %d: expected allowed", i)
		}
		if want := 3 - (i + 1); res.Remaining != want {
			t.Fatalf("check %d: remaining = %d, want %d", i, res.Remaining, want)
		}
	}

	// 4th attempt within the window is rejected.
	res, err := store.Check(ctx, "user@example.com", OpSendOTP)
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("4th sendOtp within the window should be rejected")
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
	if got, want := res.ResetAt, now.Add(time.Hour); !got.Equal(want) {
		t.Fatalf("reset at = %v, want %v", got, want)
	}

	// Once the window elapses the counter resets before evaluation.
	now = now.Add(time.Hour + time.Minute)
	res, err = store.Check(ctx, "user@example.com", OpSendOTP)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Allowed {
		t.Fatal("call after window elapsed should be allowed")
	}
	if res.Remaining != 2 {
		t.Fatalf("remaining after window reset = %d, want 2", res.Remaining)
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Check(ctx, "a@example.com", OpSendOTP); err != nil {
			t.Fatal(err)
		}
	}

	// A different identity, and a different operation for the same
	// identity, both have untouched budgets.
	res, _ := store.Check(ctx, "b@example.com", OpSendOTP)
	if !res.Allowed {
		t.Fatal("other identity should not be throttled")
	}
	res, _ = store.Check(ctx, "a@example.com", OpVerifyOTP)
	if !res.Allowed {
		t.Fatal("other operation should not be throttled")
	}
}

func TestMemoryStoreReset(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Check(ctx, "user@example.com", OpSendOTP); err != nil {
			t.Fatal(err)
		}
	}
	if res, _ := store.Check(ctx, "user@example.com", OpSendOTP); res.Allowed {
		t.Fatal("budget should be exhausted")
	}

	if err := store.Reset(ctx, "user@example.com", OpSendOTP); err != nil {
		t.Fatal(err)
	}

	res, _ := store.Check(ctx, "user@example.com", OpSendOTP)
	if !res.Allowed {
		t.Fatal("check after reset should be allowed")
	}
	if res.Remaining != 2 {
		t.Fatalf("remaining after reset = %d, want 2", res.Remaining)
	}
}

func TestResultRetryAfter(t *testing.T) {
	now := time.Now()
	res := Result{ResetAt: now.Add(90 * time.Second)}
	if got := res.RetryAfter(now); got < 90 || got > 91 {
		t.Fatalf("retry after = %d, want ~90", got)
	}

	res = Result{ResetAt: now.Add(-time.Minute)}
	if got := res.RetryAfter(now); got != 0 {
		t.Fatalf("retry after for elapsed window = %d, want 0", got)
	}
}
