package store

import (
	"context"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// StatusStore is the read side of the per-kind status masters.
type StatusStore interface {
	GetStatus(ctx context.Context, kind types.EntityType, id int) (types.Status, error)
	// ListStatuses returns the master ordered by id.
	ListStatuses(ctx context.Context, kind types.EntityType) ([]types.Status, error)
}
