package store

import (
	"context"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

type AccountStore interface {
	// FindAccount returns ErrNotFound for unknown usernames.
	FindAccount(ctx context.Context, username string) (types.Account, error)
}
