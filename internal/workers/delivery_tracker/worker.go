package delivery_tracker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/adapters/oracle"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/messenger"
	"github.com/stableroute/stableroute_service/internal/domain/services/transfer"
)

// Worker polls the delivery oracle for in-flight messages and completes
// the transfers whose messages have landed on the destination chain.
type Worker struct {
	messenger *messenger.Messenger
	oracle    *oracle.Client
	transfers *transfer.Service
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
	stopCh    chan struct{}
}

func NewWorker(
	msgr *messenger.Messenger,
	oracleClient *oracle.Client,
	transfers *transfer.Service,
	interval time.Duration,
	batchSize int,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		messenger: msgr,
		oracle:    oracleClient,
		transfers: transfers,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the polling loop
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting delivery tracker worker",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Delivery tracker worker stopped (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info("Delivery tracker worker stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// Stop signals the worker to stop
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) poll(ctx context.Context) {
	pending := w.pendingMessages()
	if len(pending) == 0 {
		return
	}

	confirmed := 0
	for _, msg := range pending {
		delivery, err := w.oracle.GetDelivery(ctx, msg.ID)
		if err != nil {
			if errors.Is(err, oracle.ErrDeliveryPending) {
				continue
			}
			w.logger.Warn("Delivery lookup failed",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}

		if delivery.Status != oracle.DeliveryStatusConfirmed {
			continue
		}

		if _, err := w.transfers.ConfirmDelivery(ctx, msg.ID, "delivery_tracker"); err != nil {
			w.logger.Error("Failed to confirm delivery",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		confirmed++
	}

	if confirmed > 0 {
		w.logger.Info("Deliveries confirmed",
			zap.Int("checked", len(pending)),
			zap.Int("confirmed", confirmed))
	}
}

// pendingMessages returns up to batchSize messages still awaiting delivery
func (w *Worker) pendingMessages() []entities.CrossChainMessage {
	var pending []entities.CrossChainMessage
	for _, msg := range w.messenger.ListSent() {
		if msg.Status != entities.MessageStatusSent {
			continue
		}
		pending = append(pending, msg)
		if len(pending) >= w.batchSize {
			break
		}
	}
	return pending
}
