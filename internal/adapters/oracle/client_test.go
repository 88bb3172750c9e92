package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	logger := zap.NewNop()

	t.Run("defaults to sandbox URL", func(t *testing.T) {
		client := NewClient(Config{Environment: "sandbox"}, logger)
		assert.Equal(t, OracleSandboxURL, client.config.BaseURL)
	})

	t.Run("uses mainnet URL", func(t *testing.T) {
		client := NewClient(Config{Environment: "mainnet"}, logger)
		assert.Equal(t, OracleMainnetURL, client.config.BaseURL)
	})

	t.Run("respects custom base URL", func(t *testing.T) {
		client := NewClient(Config{BaseURL: "https://custom.api"}, logger)
		assert.Equal(t, "https://custom.api", client.config.BaseURL)
	})
}

func TestGetPrice(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns price on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/prices/ethereum", r.URL.Path)
			assert.Equal(t, "USDC", r.URL.Query().Get("symbol"))

			resp := PriceResponse{
				Chain:      "ethereum",
				Symbol:     "USDC",
				Price:      "0.9998",
				Confidence: 0.99,
				Source:     "chainlink",
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL}, logger)
		resp, err := client.GetPrice(context.Background(), "ethereum", "USDC")

		require.NoError(t, err)
		assert.Equal(t, "0.9998", resp.Price)
		assert.Equal(t, "chainlink", resp.Source)
	})

	t.Run("returns error when price missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(PriceResponse{Chain: "ethereum"})
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL}, logger)
		_, err := client.GetPrice(context.Background(), "ethereum", "USDC")

		assert.ErrorIs(t, err, ErrPriceUnavailable)
	})
}

func TestGetPrices(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/prices", r.URL.Path)
		assert.Equal(t, "ethereum,solana", r.URL.Query().Get("chains"))

		resp := BatchPriceResponse{
			Prices: []PriceResponse{
				{Chain: "ethereum", Symbol: "USDC", Price: "0.9998", Confidence: 0.99, Source: "chainlink"},
				{Chain: "solana", Symbol: "USDC", Price: "1.0001", Confidence: 0.97, Source: "pyth"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, logger)
	resp, err := client.GetPrices(context.Background(), []string{"ethereum", "solana"}, "USDC")

	require.NoError(t, err)
	require.Len(t, resp.Prices, 2)
	assert.Equal(t, "solana", resp.Prices[1].Chain)
}

func TestGetDelivery(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/deliveries/abc123", r.URL.Path)

		resp := DeliveryResponse{
			MessageID: "abc123",
			Status:    DeliveryStatusConfirmed,
			DestChain: "solana",
			TxHash:    "0xdeadbeef",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, logger)
	resp, err := client.GetDelivery(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, DeliveryStatusConfirmed, resp.Status)
	assert.Equal(t, "0xdeadbeef", resp.TxHash)
}
