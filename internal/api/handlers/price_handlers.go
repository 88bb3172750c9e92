package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/pricefeed"
	"github.com/stableroute/stableroute_service/pkg/logger"
)

// PriceHandlers exposes aggregated stablecoin price data
type PriceHandlers struct {
	prices        *pricefeed.Aggregator
	chains        *entities.ChainSet
	defaultSymbol string
	logger        *logger.Logger
}

func NewPriceHandlers(prices *pricefeed.Aggregator, chains *entities.ChainSet, defaultSymbol string, logger *logger.Logger) *PriceHandlers {
	return &PriceHandlers{prices: prices, chains: chains, defaultSymbol: defaultSymbol, logger: logger}
}

// GetPrice returns the current price for a token on one chain
// GET /api/v1/prices/:chain?symbol=USDC
func (h *PriceHandlers) GetPrice(c *gin.Context) {
	chain := entities.ChainID(strings.ToLower(c.Param("chain")))
	if !h.chains.IsSupported(chain) {
		SendBadRequest(c, ErrCodeInvalidRequest, "Unsupported chain: "+string(chain))
		return
	}
	symbol := c.DefaultQuery("symbol", h.defaultSymbol)

	price := h.prices.GetPrice(c.Request.Context(), chain, symbol)
	SendSuccess(c, price)
}

// GetPrices returns prices across chains in a single call
// GET /api/v1/prices?chains=ethereum,polygon&symbol=USDC
func (h *PriceHandlers) GetPrices(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", h.defaultSymbol)

	chains := h.chains.IDs()
	if param := c.Query("chains"); param != "" {
		chains = nil
		for _, raw := range strings.Split(param, ",") {
			chain := entities.ChainID(strings.ToLower(strings.TrimSpace(raw)))
			if !h.chains.IsSupported(chain) {
				SendBadRequest(c, ErrCodeInvalidRequest, "Unsupported chain: "+string(chain))
				return
			}
			chains = append(chains, chain)
		}
	}

	prices := h.prices.GetPrices(c.Request.Context(), chains, symbol)
	SendSuccess(c, gin.H{"symbol": symbol, "prices": prices})
}
