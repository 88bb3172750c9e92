package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
)

func TestSendDomainError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error maps to 400",
			err:        domainErrors.InvalidAmountError("-5"),
			wantStatus: http.StatusBadRequest,
			wantCode:   domainErrors.CodeInvalidAmount,
		},
		{
			name:       "unsupported chain maps to 400",
			err:        domainErrors.UnsupportedChainError("dogechain"),
			wantStatus: http.StatusBadRequest,
			wantCode:   domainErrors.CodeUnsupportedChain,
		},
		{
			name:       "not found maps to 404",
			err:        domainErrors.MessageNotFoundError("abc"),
			wantStatus: http.StatusNotFound,
			wantCode:   domainErrors.CodeMessageNotFound,
		},
		{
			name:       "already delivered maps to 409",
			err:        domainErrors.MessageAlreadyDeliveredError("abc"),
			wantStatus: http.StatusConflict,
			wantCode:   domainErrors.CodeMessageAlreadyDelivered,
		},
		{
			name:       "expired quote maps to 410",
			err:        domainErrors.QuoteExpiredError("q-1"),
			wantStatus: http.StatusGone,
			wantCode:   domainErrors.CodeQuoteExpired,
		},
		{
			name:       "paused system maps to 503",
			err:        domainErrors.SystemPausedError(),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   domainErrors.CodeSystemPaused,
		},
		{
			name:       "unknown error collapses to 500",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			SendDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestSendDomainError_DoesNotLeakInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SendDomainError(c, errors.New("dial tcp 10.0.0.3:5432: i/o timeout"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}
