package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
)

// TransferRepository persists transfer transactions in Postgres
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, t *entities.TransferTransaction) error {
	query := `
		INSERT INTO transfers (
			id, quote_id, source_chain, dest_chain, token, amount_in,
			amount_out, total_fees, recipient, bridge_name, message_id,
			status, created_at, updated_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.QuoteID, t.SourceChain, t.DestChain, t.Token, t.AmountIn,
		t.AmountOut, t.TotalFees, t.Recipient, t.BridgeName,
		t.MessageID, t.Status, t.CreatedAt, t.UpdatedAt, t.CompletedAt,
	)
	return err
}

func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TransferTransaction, error) {
	var t entities.TransferTransaction
	query := `SELECT * FROM transfers WHERE id = $1`
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepository) GetByMessageID(ctx context.Context, messageID string) (*entities.TransferTransaction, error) {
	var t entities.TransferTransaction
	query := `SELECT * FROM transfers WHERE message_id = $1`
	if err := r.db.GetContext(ctx, &t, query, messageID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepository) GetByStatus(ctx context.Context, status entities.TransferStatus) ([]*entities.TransferTransaction, error) {
	var transfers []*entities.TransferTransaction
	query := `SELECT * FROM transfers WHERE status = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &transfers, query, status)
	return transfers, err
}

func (r *TransferRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransferStatus) error {
	query := `UPDATE transfers SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	return err
}

// MarkDispatched attaches the message id once the cross-chain message
// is on its way and moves the transfer out of pending.
func (r *TransferRepository) MarkDispatched(ctx context.Context, id uuid.UUID, messageID string) error {
	query := `UPDATE transfers SET message_id = $2, status = $3, updated_at = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, messageID, entities.TransferStatusProcessing, time.Now())
	return err
}

func (r *TransferRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transfers SET status = $2, updated_at = $3, completed_at = $3
		WHERE id = $1 AND completed_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id, entities.TransferStatusCompleted, time.Now())
	return err
}

func (r *TransferRepository) List(ctx context.Context, limit, offset int) ([]*entities.TransferTransaction, error) {
	var transfers []*entities.TransferTransaction
	query := `SELECT * FROM transfers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &transfers, query, limit, offset)
	return transfers, err
}
