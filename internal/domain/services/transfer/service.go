package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
	"github.com/stableroute/stableroute_service/internal/domain/services/messenger"
	"github.com/stableroute/stableroute_service/internal/domain/services/quote"
	"github.com/stableroute/stableroute_service/pkg/metrics"
)

// Repository persists transfer transactions
type Repository interface {
	Create(ctx context.Context, t *entities.TransferTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TransferTransaction, error)
	GetByMessageID(ctx context.Context, messageID string) (*entities.TransferTransaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransferStatus) error
	MarkDispatched(ctx context.Context, id uuid.UUID, messageID string) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*entities.TransferTransaction, error)
}

// messagePayload is what rides inside a cross-chain message
type messagePayload struct {
	QuoteID   string `json:"quote_id"`
	Token     string `json:"token"`
	AmountOut string `json:"amount_out"`
	Recipient string `json:"recipient"`
}

// Service executes issued quotes. Same-chain transfers settle immediately;
// cross-chain transfers dispatch a message and stay processing until the
// delivery tracker confirms them.
type Service struct {
	quotes    *quote.Engine
	messenger *messenger.Messenger
	repo      Repository
	logger    *zap.Logger
}

// NewService wires the transfer service
func NewService(quotes *quote.Engine, msgr *messenger.Messenger, repo Repository, logger *zap.Logger) *Service {
	return &Service{
		quotes:    quotes,
		messenger: msgr,
		repo:      repo,
		logger:    logger,
	}
}

// Execute settles a previously issued quote. The quote must still be inside
// its validity window; expired or unknown quotes are rejected.
func (s *Service) Execute(ctx context.Context, req *entities.ExecuteTransferRequest) (*entities.TransferTransaction, error) {
	quoteID, err := uuid.Parse(req.QuoteID)
	if err != nil {
		return nil, domainErrors.ValidationError("quote_id", "quote_id must be a UUID")
	}

	q, err := s.quotes.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	transfer := &entities.TransferTransaction{
		ID:          uuid.New(),
		QuoteID:     q.ID,
		SourceChain: q.SourceChain,
		DestChain:   q.DestChain,
		Token:       q.Token,
		AmountIn:    q.AmountIn,
		AmountOut:   q.AmountOut,
		TotalFees:   q.Fees.Total,
		Recipient:   req.Recipient,
		BridgeName:  q.Route.Bridge,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if q.SameChain() {
		transfer.Status = entities.TransferStatusCompleted
		transfer.CompletedAt = &now
		if err := s.repo.Create(ctx, transfer); err != nil {
			return nil, fmt.Errorf("create transfer: %w", err)
		}
	} else {
		payload, err := json.Marshal(messagePayload{
			QuoteID:   q.ID.String(),
			Token:     q.Token,
			AmountOut: q.AmountOut.String(),
			Recipient: req.Recipient,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}

		// the row goes in before the message goes out, so a failed
		// insert never leaves a dispatched message with no transfer
		transfer.Status = entities.TransferStatusPending
		if err := s.repo.Create(ctx, transfer); err != nil {
			return nil, fmt.Errorf("create transfer: %w", err)
		}

		msg, err := s.messenger.SendMessage(req.Sender, q.DestChain, req.Recipient, payload)
		if err != nil {
			if uerr := s.repo.UpdateStatus(ctx, transfer.ID, entities.TransferStatusFailed); uerr != nil {
				s.logger.Warn("failed to mark transfer failed",
					zap.String("transfer_id", transfer.ID.String()),
					zap.Error(uerr))
			}
			return nil, err
		}

		transfer.MessageID = msg.ID
		transfer.Status = entities.TransferStatusProcessing
		if err := s.repo.MarkDispatched(ctx, transfer.ID, msg.ID); err != nil {
			return nil, fmt.Errorf("mark dispatched: %w", err)
		}
	}

	metrics.TransfersTotal.WithLabelValues(string(transfer.Status)).Inc()
	s.logger.Info("transfer executed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("quote_id", q.ID.String()),
		zap.String("status", string(transfer.Status)),
		zap.String("message_id", transfer.MessageID))
	return transfer, nil
}

// GetByID returns a transfer record
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*entities.TransferTransaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domainErrors.NotFoundError("TRANSFER")
	}
	return t, nil
}

// List returns recent transfers, newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*entities.TransferTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

// ConfirmDelivery marks the message delivered and completes its transfer.
// Called with the identity of whoever confirmed the delivery: the relayer
// behind the receive endpoint, or the delivery tracker polling the oracle.
func (s *Service) ConfirmDelivery(ctx context.Context, messageID, confirmedBy string) (*entities.TransferTransaction, error) {
	if _, err := s.messenger.ReceiveMessage(messageID, confirmedBy); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		// message was sent outside the transfer flow, nothing to complete
		return nil, nil
	}

	if err := s.repo.MarkCompleted(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	now := time.Now()
	t.Status = entities.TransferStatusCompleted
	t.CompletedAt = &now

	metrics.TransfersTotal.WithLabelValues(string(entities.TransferStatusCompleted)).Inc()
	s.logger.Info("transfer completed",
		zap.String("transfer_id", t.ID.String()),
		zap.String("message_id", messageID))
	return t, nil
}
