package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/kitchen"
	"github.com/javacachava/pizza-brava-sub000/internal/metrics"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"go.uber.org/zap"
)

const defaultResyncDelay = 2 * time.Second

// BoardSyncWorker keeps the kitchen board in step with the order store. It
// follows the orders change stream and, whenever the stream is (re)opened,
// reloads every active order so nothing missed while disconnected is lost.
type BoardSyncWorker struct {
	orderRepo   repo.OrderRepository
	board       *kitchen.Board
	metrics     *metrics.Metrics
	resyncDelay time.Duration
	logger      *zap.SugaredLogger
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewBoardSyncWorker(
	orderRepo repo.OrderRepository,
	board *kitchen.Board,
	m *metrics.Metrics,
	resyncDelay time.Duration,
	logger *zap.SugaredLogger,
) *BoardSyncWorker {
	if resyncDelay <= 0 {
		resyncDelay = defaultResyncDelay
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &BoardSyncWorker{
		orderRepo:   orderRepo,
		board:       board,
		metrics:     m,
		resyncDelay: resyncDelay,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

func (w *BoardSyncWorker) Start() error {
	w.logger.Info("starting kitchen board sync worker")

	go w.run(w.ctx)

	return nil
}

// Stop cancels the stream and waits for the loop to exit.
func (w *BoardSyncWorker) Stop() {
	w.logger.Info("stopping kitchen board sync worker")
	w.cancel()
	<-w.done
}

func (w *BoardSyncWorker) run(ctx context.Context) {
	defer close(w.done)

	for {
		err := w.SyncOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		w.logger.Warnw("kitchen board stream interrupted, resyncing", "error", err, "retry_in", w.resyncDelay)
		w.metrics.BoardResync()

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.resyncDelay):
		}
	}
}

// SyncOnce opens the change stream, resets the board from the store once the
// stream is live, then applies changes until the stream ends.
func (w *BoardSyncWorker) SyncOnce(ctx context.Context) error {
	return w.orderRepo.WatchOrders(ctx, w.reload, w.apply)
}

func (w *BoardSyncWorker) reload(ctx context.Context) error {
	orders, err := w.orderRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active orders: %w", err)
	}

	w.board.Reset(orders)
	w.logger.Infow("kitchen board loaded", "orders", len(orders))

	return nil
}

func (w *BoardSyncWorker) apply(order domain.Order) error {
	if w.board.Apply(order) {
		w.logger.Debugw("kitchen board updated", "order_id", order.ID.Hex(), "order_number", order.OrderNumber, "status", order.Status)
	}
	return nil
}
