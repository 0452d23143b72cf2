package pos

import "time"

const (
	ReconReasonGatewayInitFailed   = "gateway_init_failed"
	ReconReasonConfirmationTimeout = "confirmation_timeout"
)

// ReconciliationEntry records a remote sale left in pending state with no
// client-side resolution path: gateway initiation failed after the sale was
// created, or confirmation polling hit its ceiling. Back office follows up.
type ReconciliationEntry struct {
	SaleID    string
	Reason    string
	CreatedAt time.Time
}
