package oracle

import "fmt"

// ErrorResponse represents an oracle API error response
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("oracle API error [%d]: %s (code: %s)", e.StatusCode, e.Message, e.Code)
}

func (e *ErrorResponse) IsNotFound() bool {
	return e.StatusCode == 404
}

func (e *ErrorResponse) IsRateLimited() bool {
	return e.StatusCode == 429
}

// ErrPriceUnavailable indicates the oracle returned no price for the chain
var ErrPriceUnavailable = fmt.Errorf("price unavailable")

// ErrDeliveryPending indicates the delivery is not yet confirmed
var ErrDeliveryPending = fmt.Errorf("delivery pending")
