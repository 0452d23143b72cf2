package ports

import "context"

// Connectivity exposes the device's network state. The flag can lag reality,
// so callers that hit a failed request report it, and decision points that
// must be sure (the offline fallback) probe directly.
type Connectivity interface {
	Offline() bool
	// Probe performs a direct reachability check and returns true when the
	// remote API answered.
	Probe(ctx context.Context) bool
	// ReportFailure lets any component infer offline state from a failed
	// request.
	ReportFailure()
}
