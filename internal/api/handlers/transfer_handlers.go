package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/transfer"
	"github.com/stableroute/stableroute_service/pkg/logger"
)

// TransferHandlers handles transfer execution and lookup endpoints
type TransferHandlers struct {
	transfers *transfer.Service
	logger    *logger.Logger
}

func NewTransferHandlers(transfers *transfer.Service, logger *logger.Logger) *TransferHandlers {
	return &TransferHandlers{transfers: transfers, logger: logger}
}

// Execute redeems a quote and starts the transfer
// POST /api/v1/transfers
func (h *TransferHandlers) Execute(c *gin.Context) {
	var req entities.ExecuteTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest)
		return
	}

	tx, err := h.transfers.Execute(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("Transfer execution failed", "error", err, "quote_id", req.QuoteID)
		SendDomainError(c, err)
		return
	}

	SendCreated(c, entities.TransferResponse{Transfer: tx})
}

// Get returns a single transfer by ID
// GET /api/v1/transfers/:id
func (h *TransferHandlers) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		SendBadRequest(c, ErrCodeInvalidID, "Invalid transfer ID format")
		return
	}

	tx, err := h.transfers.GetByID(c.Request.Context(), id)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	SendSuccess(c, entities.TransferResponse{Transfer: tx})
}

// List returns recent transfers, newest first
// GET /api/v1/transfers?limit=50&offset=0
func (h *TransferHandlers) List(c *gin.Context) {
	limit := parseIntParam(c, "limit", 50)
	offset := parseIntParam(c, "offset", 0)

	transfers, err := h.transfers.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list transfers", "error", err)
		SendInternalError(c, ErrCodeInternalError, "Failed to list transfers")
		return
	}

	SendSuccess(c, gin.H{
		"transfers": transfers,
		"limit":     limit,
		"offset":    offset,
	})
}
