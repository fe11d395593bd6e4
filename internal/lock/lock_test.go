package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habithero/internal/logger"
)

func TestLocalExcludes(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, "default")
			if err != nil {
				t.Errorf("failed to lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("expected at most one holder, saw %d", maxInside)
	}
}

func TestLocalTimeout(t *testing.T) {
	l := &Local{}
	release, err := l.Lock(context.Background(), "default")
	if err != nil {
		t.Fatalf("failed to lock: %v", err)
	}

	// Other keys are independent.
	other, err := l.Lock(context.Background(), "other")
	if err != nil {
		t.Fatalf("failed to lock other key: %v", err)
	}
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "default"); !errors.Is(err, ErrTimeout) {
		t.Errorf("Lock() on held key = %v, want ErrTimeout", err)
	}

	release()
	release() // idempotent

	again, err := l.Lock(context.Background(), "default")
	if err != nil {
		t.Fatalf("failed to relock after release: %v", err)
	}
	again()
}

// Set HABITHERO_TEST_REDIS=localhost:6379 to run.
func TestRedis_Integration(t *testing.T) {
	addr := os.Getenv("HABITHERO_TEST_REDIS")
	if addr == "" {
		t.Skip("HABITHERO_TEST_REDIS not set, skipping Redis integration test")
	}

	ctx := context.Background()
	r, err := NewRedis(ctx, RedisConfig{Addr: addr}, logger.Nop{})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer r.Close()

	key := "test-" + uuid.NewString()
	release, err := r.Lock(ctx, key)
	if err != nil {
		t.Fatalf("failed to lock: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if _, err := r.Lock(short, key); !errors.Is(err, ErrTimeout) {
		t.Errorf("second Lock() = %v, want ErrTimeout", err)
	}

	release()
	again, err := r.Lock(ctx, key)
	if err != nil {
		t.Fatalf("failed to relock after release: %v", err)
	}
	again()
}
