package price_refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/pricefeed"
)

// Worker keeps the price cache warm so quote requests rarely hit a
// cold source
type Worker struct {
	aggregator *pricefeed.Aggregator
	chains     *entities.ChainSet
	symbol     string
	interval   time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
}

func NewWorker(
	aggregator *pricefeed.Aggregator,
	chains *entities.ChainSet,
	symbol string,
	interval time.Duration,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		aggregator: aggregator,
		chains:     chains,
		symbol:     symbol,
		interval:   interval,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the refresh loop. The first refresh runs immediately.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting price refresh worker",
		zap.String("symbol", w.symbol),
		zap.Duration("interval", w.interval))

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Price refresh worker stopped (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info("Price refresh worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// Stop signals the worker to stop
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	w.aggregator.Refresh(refreshCtx, w.chains.IDs(), w.symbol)
	w.logger.Debug("Price cache refreshed", zap.Int("chains", len(w.chains.IDs())))
}
