package quota

import "context"

// ModelUsage is one per-backend counter row for a caller.
type ModelUsage struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// Ledger maps callers to roles and tracks generation counts per backend
// name. Admission itself lives in the service layer: the ledger only reads
// and writes rows.
type Ledger interface {
	// ResolveRole returns the caller's role, or DefaultRole when the caller
	// has no role row at all. A role row holding an unrecognized value is
	// the caller's problem to detect via LimitFor, not the ledger's.
	ResolveRole(ctx context.Context, userID string) (string, error)

	// Usage returns the per-backend counters and their sum.
	Usage(ctx context.Context, userID string) ([]ModelUsage, int, error)

	// Record increments the counter for (userID, model) by one, creating
	// the row if absent. Read-modify-write: concurrent callers can
	// under-count, which is accepted (see DESIGN.md).
	Record(ctx context.Context, userID, model string) error
}
