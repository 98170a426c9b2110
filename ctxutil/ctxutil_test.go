// Copyright (c) 2025 BVK Chaitanya

package ctxutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCloseGroup(t *testing.T) {
	var cg CloseGroup

	done := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		cg.Go(func(ctx context.Context) {
			<-ctx.Done()
			done <- struct{}{}
		})
	}

	cg.Close()
	for i := 0; i < 100; i++ {
		<-done
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	err := Retry(ctx, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 3 {
		t.Fatalf("want 3 attempts, got %d", attempts)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := Retry(cctx, time.Millisecond, func() error { return errors.New("always") }); err == nil {
		t.Fatal("want non-nil, got nil")
	}
}
