package idempotency

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func seedRecords(t *testing.T, repo domain.IdempotencyRepository, n int, ttlAt time.Time) {
	t.Helper()

	for i := 0; i < n; i++ {
		if _, err := repo.CreateProcessing(fmt.Sprintf("key-%d", i), "hash", ttlAt); err != nil {
			t.Fatalf("seed record %d: %v", i, err)
		}
	}
}

func TestDeleteExpired(t *testing.T) {
	repo := memory.NewIdempotencyRepository(memory.NewStore())
	worker := NewCleanupWorker(repo, WithBatchSize(10))

	expired := time.Now().UTC().Add(-time.Hour)
	alive := time.Now().UTC().Add(time.Hour)
	seedRecords(t, repo, 3, expired)

	fresh, err := repo.CreateProcessing("fresh-key", "hash", alive)
	if err != nil {
		t.Fatalf("seed fresh record: %v", err)
	}

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted records, got %d", deleted)
	}

	if _, err := repo.Get(fresh.Key); err != nil {
		t.Fatalf("fresh record must survive cleanup: %v", err)
	}
}

func TestDeleteExpiredBatches(t *testing.T) {
	repo := memory.NewIdempotencyRepository(memory.NewStore())
	worker := NewCleanupWorker(repo, WithBatchSize(2))

	seedRecords(t, repo, 5, time.Now().UTC().Add(-time.Minute))

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if deleted != 5 {
		t.Fatalf("expected 5 deleted records across batches, got %d", deleted)
	}
}

func TestDeleteExpiredHonoursContext(t *testing.T) {
	repo := memory.NewIdempotencyRepository(memory.NewStore())
	worker := NewCleanupWorker(repo, WithBatchSize(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := worker.DeleteExpired(ctx, time.Now().UTC()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	repo := memory.NewIdempotencyRepository(memory.NewStore())
	worker := NewCleanupWorker(repo, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
