package oracle

// PriceResponse represents the response from the price API
type PriceResponse struct {
	Chain      string  `json:"chain"`
	Symbol     string  `json:"symbol"`
	Price      string  `json:"price"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	UpdatedAt  string  `json:"updatedAt"`
}

// BatchPriceResponse represents prices for several chains at once
type BatchPriceResponse struct {
	Prices []PriceResponse `json:"prices"`
}

// DeliveryResponse represents the delivery status of a tracked message
type DeliveryResponse struct {
	MessageID   string `json:"messageId"`
	Status      string `json:"status"`
	DestChain   string `json:"destChain"`
	TxHash      string `json:"txHash,omitempty"`
	ConfirmedAt string `json:"confirmedAt,omitempty"`
}
