package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the persisted lifecycle of an executed transfer
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "pending"
	TransferStatusProcessing TransferStatus = "processing"
	TransferStatusCompleted  TransferStatus = "completed"
	TransferStatusFailed     TransferStatus = "failed"
	TransferStatusCancelled  TransferStatus = "cancelled"
)

// TransferTransaction is the durable record of a quote execution. MessageID is
// set only for cross-chain transfers and ties the row to its tracked message.
type TransferTransaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	QuoteID     uuid.UUID       `json:"quote_id" db:"quote_id"`
	SourceChain ChainID         `json:"source_chain" db:"source_chain"`
	DestChain   ChainID         `json:"dest_chain" db:"dest_chain"`
	Token       string          `json:"token" db:"token"`
	AmountIn    decimal.Decimal `json:"amount_in" db:"amount_in"`
	AmountOut   decimal.Decimal `json:"amount_out" db:"amount_out"`
	TotalFees   decimal.Decimal `json:"total_fees" db:"total_fees"`
	Recipient   string          `json:"recipient" db:"recipient"`
	BridgeName  string          `json:"bridge_name,omitempty" db:"bridge_name"`
	MessageID   string          `json:"message_id,omitempty" db:"message_id"`
	Status      TransferStatus  `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// ExecuteTransferRequest executes a previously issued quote
type ExecuteTransferRequest struct {
	QuoteID   string `json:"quote_id" binding:"required"`
	Sender    string `json:"sender" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
}

// TransferResponse wraps a transfer record for the API surface
type TransferResponse struct {
	Transfer *TransferTransaction `json:"transfer"`
}
