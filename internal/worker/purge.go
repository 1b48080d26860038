package worker

import (
	"sync"
	"time"

	"github.com/tea-corner/go-backend/pkg/logger"
)

// CartPurger опустошает все корзины и возвращает их количество.
type CartPurger interface {
	PurgeAll() int
}

// PurgeWorker периодически очищает все корзины всех пользователей.
// Грубая стратегия вместо поштучного устаревания: корзины эфемерны,
// гонка с живым оформлением заказа безвредна (сборщик заказа трактует
// пустую корзину как корректный отказ).
type PurgeWorker struct {
	carts    CartPurger
	interval time.Duration
	logger   logger.Logger
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewPurgeWorker(carts CartPurger, interval time.Duration, logger logger.Logger) *PurgeWorker {
	return &PurgeWorker{
		carts:    carts,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

func (w *PurgeWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()
}

func (w *PurgeWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *PurgeWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.purge()
		case <-w.stop:
			return
		}
	}
}

func (w *PurgeWorker) purge() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warnf("Cart purge panicked: %v", r)
		}
	}()

	purged := w.carts.PurgeAll()
	w.logger.Infof("Cart purge completed, carts cleared: %d", purged)
}
