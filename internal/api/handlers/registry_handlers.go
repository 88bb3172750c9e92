package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/registry"
	"github.com/stableroute/stableroute_service/pkg/logger"
)

// RegistryHandlers handles bridge registry admin endpoints
type RegistryHandlers struct {
	registry *registry.Registry
	chains   *entities.ChainSet
	logger   *logger.Logger
}

func NewRegistryHandlers(reg *registry.Registry, chains *entities.ChainSet, logger *logger.Logger) *RegistryHandlers {
	return &RegistryHandlers{registry: reg, chains: chains, logger: logger}
}

// Register adds a bridge adapter to the registry
// POST /api/v1/admin/bridges
func (h *RegistryHandlers) Register(c *gin.Context) {
	var req entities.RegisterBridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest)
		return
	}

	bridge, err := h.registry.Register(&req)
	if err != nil {
		h.logger.Warn("Bridge registration rejected", "error", err, "name", req.Name)
		SendDomainError(c, err)
		return
	}

	h.logger.Info("Bridge registered", "bridge_id", bridge.ID, "name", bridge.Name, "protocol", bridge.Protocol)
	SendCreated(c, bridge)
}

// List returns all registered bridges
// GET /api/v1/admin/bridges
func (h *RegistryHandlers) List(c *gin.Context) {
	SendSuccess(c, gin.H{"bridges": h.registry.List()})
}

// Get returns a single bridge by ID
// GET /api/v1/admin/bridges/:id
func (h *RegistryHandlers) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		SendBadRequest(c, ErrCodeInvalidID, "Invalid bridge ID format")
		return
	}

	bridge, err := h.registry.Get(id)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	SendSuccess(c, bridge)
}

// Update mutates a bridge's priority, active flag, or fee multiplier
// PATCH /api/v1/admin/bridges/:id
func (h *RegistryHandlers) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		SendBadRequest(c, ErrCodeInvalidID, "Invalid bridge ID format")
		return
	}

	var req entities.UpdateBridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest)
		return
	}

	bridge, err := h.registry.Update(id, &req)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	h.logger.Info("Bridge updated", "bridge_id", bridge.ID, "active", bridge.Active, "priority", bridge.Priority)
	SendSuccess(c, bridge)
}

// Activate puts a bridge back into selection rotation
// POST /api/v1/admin/bridges/:id/activate
func (h *RegistryHandlers) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate removes a bridge from selection without unregistering it
// POST /api/v1/admin/bridges/:id/deactivate
func (h *RegistryHandlers) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *RegistryHandlers) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		SendBadRequest(c, ErrCodeInvalidID, "Invalid bridge ID format")
		return
	}

	bridge, err := h.registry.Update(id, &entities.UpdateBridgeRequest{Active: &active})
	if err != nil {
		SendDomainError(c, err)
		return
	}

	h.logger.Info("Bridge active flag changed", "bridge_id", bridge.ID, "active", bridge.Active)
	SendSuccess(c, bridge)
}

// SetPreferred pins a bridge for a token on a destination chain
// PUT /api/v1/admin/bridges/preferred
func (h *RegistryHandlers) SetPreferred(c *gin.Context) {
	var req entities.SetPreferredBridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest)
		return
	}

	dst, ok := h.destChain(c, req.DestChain)
	if !ok {
		return
	}

	id, err := uuid.Parse(req.BridgeID)
	if err != nil {
		SendBadRequest(c, ErrCodeInvalidID, "Invalid bridge ID format")
		return
	}

	if err := h.registry.SetPreferred(dst, req.Token, id); err != nil {
		SendDomainError(c, err)
		return
	}

	h.logger.Info("Preferred bridge set", "dest_chain", dst, "token", req.Token, "bridge_id", id)
	SendSuccess(c, gin.H{
		"dest_chain": dst,
		"token":      req.Token,
		"bridge_id":  id,
	})
}

// ClearPreferred removes a token pin
// DELETE /api/v1/admin/bridges/preferred?dest_chain=solana&token=USDC
func (h *RegistryHandlers) ClearPreferred(c *gin.Context) {
	dst, ok := h.destChain(c, c.Query("dest_chain"))
	if !ok {
		return
	}

	token := c.Query("token")
	h.registry.ClearPreferred(dst, token)
	h.logger.Info("Preferred bridge cleared", "dest_chain", dst, "token", token)
	SendNoContent(c)
}

func (h *RegistryHandlers) destChain(c *gin.Context, raw string) (entities.ChainID, bool) {
	dst := entities.ChainID(strings.ToLower(raw))
	if !h.chains.IsSupported(dst) {
		SendBadRequest(c, ErrCodeInvalidRequest, "Unsupported destination chain: "+string(dst))
		return "", false
	}
	return dst, true
}
