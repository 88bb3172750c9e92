package oracle

const (
	// API Hosts
	OracleMainnetURL = "https://oracle.stableroute.io"
	OracleSandboxURL = "https://oracle-sandbox.stableroute.io"

	// Rate limiting
	MaxRequestsPerSecond = 25

	// Delivery statuses reported by the oracle
	DeliveryStatusPending   = "pending"
	DeliveryStatusConfirmed = "confirmed"
)
