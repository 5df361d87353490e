package mirror

import (
	"context"

	"hisab/internal/core"
)

// TableWriter replaces the mirrored transaction table with a fresh snapshot.
// Implementations must write the header row followed by one row per transaction.
type TableWriter interface {
	Replace(ctx context.Context, rows []core.Transaction) error
}
