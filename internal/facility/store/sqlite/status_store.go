package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// StatusStore reads the three read-only status master tables.
type StatusStore struct {
	db *sql.DB
}

var _ store.StatusStore = (*StatusStore)(nil)

func NewStatusStore(db *sql.DB) *StatusStore {
	return &StatusStore{db: db}
}

type masterTable struct {
	table, idCol, nameCol string
}

var masters = map[types.EntityType]masterTable{
	types.EntityParking: {"parking_statuses", "parking_status_id", "parking_status_name"},
	types.EntityVisitor: {"visit_situations", "visit_situation_id", "visit_situations_name"},
	types.EntityBus:     {"bus_situations", "bus_situations_id", "bus_situations_name"},
}

func (s *StatusStore) GetStatus(ctx context.Context, kind types.EntityType, id int) (types.Status, error) {
	m, ok := masters[kind]
	if !ok {
		return types.Status{}, fmt.Errorf("GetStatus: unknown entity %q", kind)
	}
	var st types.Status
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?;", m.idCol, m.nameCol, m.table, m.idCol), id,
	).Scan(&st.ID, &st.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Status{}, store.ErrNotFound
	}
	if err != nil {
		return types.Status{}, fmt.Errorf("GetStatus %s %d: %w", kind, id, err)
	}
	return st, nil
}

func (s *StatusStore) ListStatuses(ctx context.Context, kind types.EntityType) ([]types.Status, error) {
	m, ok := masters[kind]
	if !ok {
		return nil, fmt.Errorf("ListStatuses: unknown entity %q", kind)
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s;", m.idCol, m.nameCol, m.table, m.idCol))
	if err != nil {
		return nil, fmt.Errorf("ListStatuses %s: %w", kind, err)
	}
	defer rows.Close()

	out := []types.Status{}
	for rows.Next() {
		var st types.Status
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, fmt.Errorf("ListStatuses scan: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
