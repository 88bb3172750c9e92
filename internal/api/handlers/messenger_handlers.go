package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
	"github.com/stableroute/stableroute_service/internal/domain/services/messenger"
	"github.com/stableroute/stableroute_service/internal/domain/services/transfer"
	"github.com/stableroute/stableroute_service/pkg/logger"
)

// MessengerHandlers handles cross-chain message status and delivery endpoints
type MessengerHandlers struct {
	messenger *messenger.Messenger
	transfers *transfer.Service
	chains    *entities.ChainSet
	logger    *logger.Logger
}

func NewMessengerHandlers(msgr *messenger.Messenger, transfers *transfer.Service, chains *entities.ChainSet, logger *logger.Logger) *MessengerHandlers {
	return &MessengerHandlers{messenger: msgr, transfers: transfers, chains: chains, logger: logger}
}

// Get returns a message and its delivery status
// GET /api/v1/messages/:id
func (h *MessengerHandlers) Get(c *gin.Context) {
	msg, err := h.messenger.Get(c.Param("id"))
	if err != nil {
		SendDomainError(c, err)
		return
	}

	SendSuccess(c, msg)
}

// Receive marks a message as delivered on the destination chain and
// completes the transfer that dispatched it
// POST /api/v1/messages/:id/receive
func (h *MessengerHandlers) Receive(c *gin.Context) {
	id := c.Param("id")

	var req entities.ReceiveMessageRequest
	_ = c.ShouldBindJSON(&req)
	confirmedBy := req.ConfirmedBy
	if confirmedBy == "" {
		confirmedBy = c.ClientIP()
	}

	tx, err := h.transfers.ConfirmDelivery(c.Request.Context(), id, confirmedBy)
	if err != nil {
		h.logger.Warn("Message delivery rejected", "error", err, "message_id", id)
		SendDomainError(c, err)
		return
	}

	msg, err := h.messenger.Get(id)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	h.logger.Info("Message delivered", "message_id", id)
	SendSuccess(c, gin.H{
		"message":  msg,
		"transfer": tx,
	})
}

// List returns all messages dispatched by this service
// GET /api/v1/admin/messages
func (h *MessengerHandlers) List(c *gin.Context) {
	SendSuccess(c, gin.H{"messages": h.messenger.ListSent()})
}

// Pause halts outbound message dispatch; in-flight deliveries still land
// POST /api/v1/admin/messenger/pause
func (h *MessengerHandlers) Pause(c *gin.Context) {
	h.messenger.Pause()
	h.logger.Warn("Messenger paused")
	SendSuccess(c, gin.H{"paused": true})
}

// Unpause resumes outbound message dispatch
// POST /api/v1/admin/messenger/unpause
func (h *MessengerHandlers) Unpause(c *gin.Context) {
	h.messenger.Unpause()
	h.logger.Info("Messenger unpaused")
	SendSuccess(c, gin.H{"paused": false})
}

// AddChain allows outbound messages to target a chain via the given relay
// endpoint. The chain must exist in the configured chain set.
// POST /api/v1/admin/chains
func (h *MessengerHandlers) AddChain(c *gin.Context) {
	var req entities.SupportChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest)
		return
	}

	chainID := entities.ChainID(strings.ToLower(req.ChainID))
	if !h.chains.IsSupported(chainID) {
		SendDomainError(c, domainErrors.UnsupportedChainError(string(chainID)))
		return
	}

	h.messenger.AddSupportedChain(chainID, req.Endpoint)
	SendSuccess(c, gin.H{"chain_id": chainID, "endpoint": req.Endpoint})
}

// RemoveChain stops new outbound messages to a chain. Messages already
// dispatched to it remain deliverable.
// DELETE /api/v1/admin/chains/:id
func (h *MessengerHandlers) RemoveChain(c *gin.Context) {
	chainID := entities.ChainID(strings.ToLower(c.Param("id")))
	h.messenger.RemoveSupportedChain(chainID)
	SendNoContent(c)
}

// ListChains returns the chains the messenger currently dispatches to
// GET /api/v1/admin/chains
func (h *MessengerHandlers) ListChains(c *gin.Context) {
	SendSuccess(c, gin.H{"chains": h.messenger.SupportedChains()})
}
