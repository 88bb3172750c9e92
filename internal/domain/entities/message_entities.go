package entities

import (
	"time"
)

// MessageStatus is the lifecycle of a cross-chain message. There is no failed
// state; an undelivered message simply stays SENT until confirmed.
type MessageStatus string

const (
	MessageStatusNone      MessageStatus = "NONE"
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
)

// CrossChainMessage is one tracked send. ID is a deterministic digest of the
// sender, destination, nonce and payload, so replays of the same send collide
// instead of duplicating.
type CrossChainMessage struct {
	ID          string        `json:"id"`
	Sender      string        `json:"sender"`
	SourceChain ChainID       `json:"source_chain"`
	DestChain   ChainID       `json:"dest_chain"`
	Recipient   string        `json:"recipient"`
	Payload     []byte        `json:"payload"`
	Nonce       uint64        `json:"nonce"`
	Status      MessageStatus `json:"status"`
	SentAt      time.Time     `json:"sent_at"`
	DeliveredAt *time.Time    `json:"delivered_at,omitempty"`
	ConfirmedBy string        `json:"confirmed_by,omitempty"`
}

// MessageEvent records a messenger transition. Delivered events carry the
// source chain and recipient of the landed message.
type MessageEvent struct {
	Type       string        `json:"type"` // "sent", "delivered", "paused", "unpaused", "chain_supported", "chain_removed"
	MessageID  string        `json:"message_id,omitempty"`
	Chain      ChainID       `json:"chain,omitempty"`
	Recipient  string        `json:"recipient,omitempty"`
	Status     MessageStatus `json:"status,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// SupportChainRequest is the admin payload for allowing a destination chain
type SupportChainRequest struct {
	ChainID  string `json:"chain_id" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
}

// ReceiveMessageRequest identifies the relayer confirming a delivery.
// The body is optional; an absent confirmer falls back to the caller address.
type ReceiveMessageRequest struct {
	ConfirmedBy string `json:"confirmed_by"`
}

// SendMessageRequest is the payload for dispatching a cross-chain message
type SendMessageRequest struct {
	DestChain string `json:"dest_chain" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
	Payload   string `json:"payload" binding:"required"` // hex or base64 encoded
}
