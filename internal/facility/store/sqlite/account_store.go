package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// AccountStore looks up staff accounts in the employees table.
type AccountStore struct {
	db *sql.DB
}

var _ store.AccountStore = (*AccountStore)(nil)

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) FindAccount(ctx context.Context, username string) (types.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return types.Account{}, store.ErrNotFound
	}

	var (
		a                types.Account
		isAdmin, deleted int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT user_name, password_hash, is_admin, delete_flag
FROM employees
WHERE user_name = ?;`, username).Scan(&a.Username, &a.PasswordHash, &isAdmin, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Account{}, store.ErrNotFound
	}
	if err != nil {
		return types.Account{}, fmt.Errorf("FindAccount: %w", err)
	}
	a.IsAdmin = isAdmin == 1
	a.Deleted = deleted == 1
	return a, nil
}
