package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/quote"
	"github.com/stableroute/stableroute_service/pkg/logger"
)

// QuoteHandlers handles quote request and lookup endpoints
type QuoteHandlers struct {
	engine *quote.Engine
	logger *logger.Logger
}

func NewQuoteHandlers(engine *quote.Engine, logger *logger.Logger) *QuoteHandlers {
	return &QuoteHandlers{engine: engine, logger: logger}
}

// RequestQuote prices a transfer and returns a quote with a validity window
// POST /api/v1/quotes
func (h *QuoteHandlers) RequestQuote(c *gin.Context) {
	var req entities.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest)
		return
	}

	q, err := h.engine.RequestQuote(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("Quote request rejected", "error", err,
			"source_chain", req.SourceChain, "dest_chain", req.DestChain)
		SendDomainError(c, err)
		return
	}

	SendCreated(c, entities.QuoteResponse{Quote: q})
}

// GetQuote returns a previously issued quote if it is still valid
// GET /api/v1/quotes/:id
func (h *QuoteHandlers) GetQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		SendBadRequest(c, ErrCodeInvalidID, "Invalid quote ID format")
		return
	}

	q, err := h.engine.GetQuote(c.Request.Context(), id)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	SendSuccess(c, entities.QuoteResponse{Quote: q})
}
