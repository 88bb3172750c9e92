package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/registry"
	"github.com/stableroute/stableroute_service/pkg/logger"
)

func registryRouter(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	chains := entities.NewChainSet([]*entities.Chain{
		{ID: entities.ChainEthereum, Name: "Ethereum", EVM: true},
		{ID: entities.ChainPolygon, Name: "Polygon", EVM: true},
		{ID: entities.ChainSolana, Name: "Solana", EVM: false},
	})

	reg := registry.NewRegistry(logger.NewNop().Zap())
	h := NewRegistryHandlers(reg, chains, logger.NewNop())

	router := gin.New()
	router.POST("/admin/bridges", h.Register)
	router.GET("/admin/bridges", h.List)
	router.GET("/admin/bridges/:id", h.Get)
	router.PATCH("/admin/bridges/:id", h.Update)
	router.POST("/admin/bridges/:id/activate", h.Activate)
	router.POST("/admin/bridges/:id/deactivate", h.Deactivate)
	router.PUT("/admin/bridges/preferred", h.SetPreferred)
	router.DELETE("/admin/bridges/preferred", h.ClearPreferred)
	return router, reg
}

func postJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterBridge(t *testing.T) {
	router, _ := registryRouter(t)

	rec := postJSON(t, router, http.MethodPost, "/admin/bridges", entities.RegisterBridgeRequest{
		Name:           "cctp",
		Protocol:       "cctp",
		Kind:           "native",
		AdapterAddress: "0x1111111111111111111111111111111111111111",
		Priority:       1,
		SourceChains:   []string{"ethereum", "polygon"},
		DestChains:     []string{"ethereum", "polygon"},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var bridge entities.Bridge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bridge))
	assert.Equal(t, "cctp", bridge.Name)
	assert.True(t, bridge.Active)
}

func TestRegisterBridge_Duplicate(t *testing.T) {
	router, _ := registryRouter(t)

	req := entities.RegisterBridgeRequest{
		Name:           "cctp",
		Protocol:       "cctp",
		Kind:           "native",
		AdapterAddress: "0x1111111111111111111111111111111111111111",
		SourceChains:   []string{"ethereum"},
		DestChains:     []string{"polygon"},
	}

	rec := postJSON(t, router, http.MethodPost, "/admin/bridges", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, http.MethodPost, "/admin/bridges", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateBridge_Deactivate(t *testing.T) {
	router, reg := registryRouter(t)

	bridge, err := reg.Register(&entities.RegisterBridgeRequest{
		Name:           "wormhole",
		Protocol:       "wormhole",
		Kind:           "messaging",
		AdapterAddress: "0x2222222222222222222222222222222222222222",
		SourceChains:   []string{"ethereum"},
		DestChains:     []string{"solana"},
	})
	require.NoError(t, err)

	active := false
	rec := postJSON(t, router, http.MethodPatch, "/admin/bridges/"+bridge.ID.String(), entities.UpdateBridgeRequest{
		Active: &active,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated entities.Bridge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.Active)
}

func TestActivateDeactivateBridge(t *testing.T) {
	router, reg := registryRouter(t)

	bridge, err := reg.Register(&entities.RegisterBridgeRequest{
		Name:           "axelar",
		Protocol:       "axelar",
		Kind:           "messaging",
		AdapterAddress: "0x4444444444444444444444444444444444444444",
		SourceChains:   []string{"ethereum"},
		DestChains:     []string{"polygon"},
	})
	require.NoError(t, err)

	rec := postJSON(t, router, http.MethodPost, "/admin/bridges/"+bridge.ID.String()+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated entities.Bridge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.Active)

	rec = postJSON(t, router, http.MethodPost, "/admin/bridges/"+bridge.ID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Active)
}

func TestSetPreferredBridge_UnknownChain(t *testing.T) {
	router, reg := registryRouter(t)

	bridge, err := reg.Register(&entities.RegisterBridgeRequest{
		Name:           "stargate",
		Protocol:       "stargate",
		Kind:           "liquidity_pool",
		AdapterAddress: "0x3333333333333333333333333333333333333333",
		SourceChains:   []string{"ethereum"},
		DestChains:     []string{"polygon"},
	})
	require.NoError(t, err)

	rec := postJSON(t, router, http.MethodPut, "/admin/bridges/preferred", entities.SetPreferredBridgeRequest{
		DestChain: "dogechain",
		Token:     "USDC",
		BridgeID:  bridge.ID.String(),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetAndClearPreferredBridge(t *testing.T) {
	router, reg := registryRouter(t)

	bridge, err := reg.Register(&entities.RegisterBridgeRequest{
		Name:           "stargate",
		Protocol:       "stargate",
		Kind:           "liquidity_pool",
		AdapterAddress: "0x3333333333333333333333333333333333333333",
		SourceChains:   []string{"ethereum"},
		DestChains:     []string{"polygon"},
	})
	require.NoError(t, err)

	rec := postJSON(t, router, http.MethodPut, "/admin/bridges/preferred", entities.SetPreferredBridgeRequest{
		DestChain: "polygon",
		Token:     "USDC",
		BridgeID:  bridge.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	pinned, ok := reg.Preferred(entities.ChainPolygon, "USDC")
	require.True(t, ok)
	assert.Equal(t, bridge.ID, pinned.ID)

	// a pin for USDC leaves other tokens unpinned
	_, ok = reg.Preferred(entities.ChainPolygon, "USDT")
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodDelete, "/admin/bridges/preferred?dest_chain=polygon&token=USDC", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, ok = reg.Preferred(entities.ChainPolygon, "USDC")
	assert.False(t, ok)
}

func TestGetBridge_NotFound(t *testing.T) {
	router, _ := registryRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/bridges/7f6c2bc1-74de-44ef-9f34-9e3a716b3cbb", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
