package worker_test

import (
	"testing"
	"time"

	"github.com/tea-corner/go-backend/internal/repository/memory"
	"github.com/tea-corner/go-backend/internal/worker"
	"github.com/tea-corner/go-backend/pkg/logger"
)

func TestPurgeWorkerClearsAllCarts(t *testing.T) {
	carts := memory.NewCartRepo()
	carts.AddOne(1, 10)
	carts.AddOne(2, 20)

	w := worker.NewPurgeWorker(carts, 20*time.Millisecond, logger.NewSlogLogger())
	w.Start()
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if len(carts.Lines(1)) == 0 && len(carts.Lines(2)) == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("carts were not purged within the deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPurgeWorkerStopTerminates(t *testing.T) {
	carts := memory.NewCartRepo()
	w := worker.NewPurgeWorker(carts, time.Hour, logger.NewSlogLogger())

	w.Start()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop did not return")
	}
}
