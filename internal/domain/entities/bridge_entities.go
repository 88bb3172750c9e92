package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BridgeKind distinguishes selection behavior between bridge families
type BridgeKind string

const (
	BridgeKindNative        BridgeKind = "native"         // burn-and-mint, e.g. cctp
	BridgeKindLiquidityPool BridgeKind = "liquidity_pool" // pooled liquidity, e.g. stargate
	BridgeKindMessaging     BridgeKind = "messaging"      // generic message passing, e.g. wormhole
)

// Bridge is a registered transfer protocol. ID is derived deterministically
// from Name and AdapterAddress so re-registering the same adapter yields the
// same id across restarts.
type Bridge struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Protocol       string          `json:"protocol" db:"protocol"`
	Kind           BridgeKind      `json:"kind" db:"kind"`
	AdapterAddress string          `json:"adapter_address" db:"adapter_address"`
	Priority       int             `json:"priority" db:"priority"`
	Active         bool            `json:"active" db:"active"`
	FeeMultiplier  decimal.Decimal `json:"fee_multiplier" db:"fee_multiplier"`
	SourceChains   []ChainID       `json:"source_chains"`
	DestChains     []ChainID       `json:"dest_chains"`
	RegisteredAt   time.Time       `json:"registered_at" db:"registered_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// SupportsRoute reports whether the bridge can carry the given leg
func (b *Bridge) SupportsRoute(src, dst ChainID) bool {
	return containsChain(b.SourceChains, src) && containsChain(b.DestChains, dst)
}

func containsChain(set []ChainID, id ChainID) bool {
	for _, c := range set {
		if c == id {
			return true
		}
	}
	return false
}

// TokenRoute keys a preferred-bridge override. Pins are scoped to one token
// on one destination chain; other tokens on the same chain are unaffected.
type TokenRoute struct {
	DestChain ChainID `json:"dest_chain"`
	Token     string  `json:"token"`
}

// BridgeEvent records a registry mutation for audit consumers
type BridgeEvent struct {
	Type       string    `json:"type"` // "registered", "updated", "activated", "deactivated", "preferred_set", "preferred_cleared"
	BridgeID   uuid.UUID `json:"bridge_id"`
	BridgeName string    `json:"bridge_name,omitempty"`
	DestChain  ChainID   `json:"dest_chain,omitempty"`
	Token      string    `json:"token,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RegisterBridgeRequest is the admin payload for adding a bridge
type RegisterBridgeRequest struct {
	Name           string   `json:"name" binding:"required"`
	Protocol       string   `json:"protocol" binding:"required"`
	Kind           string   `json:"kind" binding:"required"`
	AdapterAddress string   `json:"adapter_address" binding:"required"`
	Priority       int      `json:"priority"`
	FeeMultiplier  string   `json:"fee_multiplier,omitempty"`
	SourceChains   []string `json:"source_chains" binding:"required"`
	DestChains     []string `json:"dest_chains" binding:"required"`
}

// UpdateBridgeRequest is the admin payload for mutating a bridge.
// Nil fields are left unchanged.
type UpdateBridgeRequest struct {
	Priority      *int    `json:"priority,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	FeeMultiplier *string `json:"fee_multiplier,omitempty"`
}

// SetPreferredBridgeRequest pins a bridge for a token on a destination chain
type SetPreferredBridgeRequest struct {
	DestChain string `json:"dest_chain" binding:"required"`
	Token     string `json:"token" binding:"required"`
	BridgeID  string `json:"bridge_id" binding:"required"`
}
