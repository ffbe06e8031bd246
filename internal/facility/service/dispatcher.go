package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// TimeLayout is the wall-clock format used for secondary time inputs and for
// every updateTime handed back to clients.
const TimeLayout = "2006/01/02 15:04"

// Publisher receives one event per committed update.
type Publisher interface {
	Publish(ev types.ChangeEvent)
}

// UpdateCommand is one field edit as submitted by a dashboard client. Values
// are raw text; the dispatcher parses them according to the field kind.
type UpdateCommand struct {
	Entity     types.EntityType
	RecordID   string
	Field      string
	Value      string
	ExtraField string
	ExtraValue string
}

// Result describes a committed update.
type Result struct {
	Entity   types.EntityType
	RecordID int
	Field    string
	NewValue string

	// ExtraValue is nil when no secondary field was named and "" when the
	// secondary field was cleared.
	ExtraField string
	ExtraValue *string

	Message     string
	CommittedAt time.Time
	UpdateTime  string
}

type DispatcherConfig struct {
	Location *time.Location   // defaults to time.Local
	Now      func() time.Time // defaults to time.Now
}

// Dispatcher validates and applies single-field updates to parking, visitor
// and bus records. It takes no locks: two updates of the same record race and
// the later Save wins.
type Dispatcher struct {
	statuses store.StatusStore
	pub      Publisher
	loc      *time.Location
	now      func() time.Time
	tables   map[types.EntityType]applier
}

func NewDispatcher(records store.RecordStore, statuses store.StatusStore, pub Publisher, cfg DispatcherConfig) (*Dispatcher, error) {
	if records == nil {
		return nil, errors.New("dispatcher: nil record store")
	}
	d := &Dispatcher{
		statuses: statuses,
		pub:      pub,
		loc:      cfg.Location,
		now:      cfg.Now,
		tables: map[types.EntityType]applier{
			types.EntityParking: parkingTable(records),
			types.EntityVisitor: visitorTable(records),
			types.EntityBus:     busTable(records),
		},
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	if d.now == nil {
		d.now = time.Now
	}

	for _, kind := range types.EntityTypes {
		t, ok := d.tables[kind]
		if !ok {
			return nil, fmt.Errorf("dispatcher: no field table for %s", kind)
		}
		if err := t.check(statuses != nil); err != nil {
			return nil, fmt.Errorf("dispatcher: %w", err)
		}
	}
	return d, nil
}

// Apply validates cmd, persists the mutated record in one Save and publishes
// the resulting event. Nothing is saved or published when an error is
// returned.
func (d *Dispatcher) Apply(ctx context.Context, cmd UpdateCommand) (Result, error) {
	t, ok := d.tables[cmd.Entity]
	if !ok {
		return Result{}, fieldErr(ErrNotFound, "entityType", "Unknown record type %q.", cmd.Entity)
	}

	cmd.Field = strings.TrimSpace(cmd.Field)
	cmd.ExtraField = strings.TrimSpace(cmd.ExtraField)
	rawID := strings.TrimSpace(cmd.RecordID)
	if rawID == "" || cmd.Field == "" {
		return Result{}, fieldErr(ErrValidation, "", "Record id and field name are required.")
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return Result{}, fieldErr(ErrFormat, "id", "Record id %q is not a number.", rawID)
	}

	res, err := t.apply(ctx, d, cmd, id)
	if err != nil {
		return Result{}, err
	}

	if d.pub != nil {
		d.pub.Publish(ComposeEvent(res))
	}
	return res, nil
}

// FormatTime renders t in the dispatcher's location with TimeLayout.
func (d *Dispatcher) FormatTime(t time.Time) string {
	return t.In(d.loc).Format(TimeLayout)
}

func (d *Dispatcher) parseValue(ctx context.Context, kind types.EntityType, field string, fk fieldKind, label, raw string) (fieldValue, error) {
	v := strings.TrimSpace(raw)

	switch fk {
	case optionalText:
		if v == "" {
			return fieldValue{}, nil
		}
		return fieldValue{text: &v}, nil

	case requiredText:
		if v == "" {
			return fieldValue{}, fieldErr(ErrValidation, field, "%s is required.", label)
		}
		return fieldValue{text: &v}, nil

	case countField:
		if v == "" {
			return fieldValue{}, fieldErr(ErrValidation, field, "%s is required.", label)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fieldValue{}, fieldErr(ErrFormat, field, "%s must be a whole number.", label)
		}
		if n < 0 {
			return fieldValue{}, fieldErr(ErrValidation, field, "%s cannot be negative.", label)
		}
		if n > maxCount {
			return fieldValue{}, fieldErr(ErrValidation, field, "%s cannot exceed %d.", label, maxCount)
		}
		return fieldValue{count: int16(n)}, nil

	case statusRef:
		if v == "" {
			return fieldValue{}, fieldErr(ErrValidation, field, "%s is required.", label)
		}
		id, err := strconv.Atoi(v)
		if err != nil {
			return fieldValue{}, fieldErr(ErrFormat, field, "%s %q is not a valid id.", label, v)
		}
		st, err := d.statuses.GetStatus(ctx, kind, id)
		if errors.Is(err, store.ErrNotFound) {
			return fieldValue{}, fieldErr(ErrNotFound, field, "%s %d does not exist.", label, id)
		}
		if err != nil {
			return fieldValue{}, fmt.Errorf("resolve %s status %d: %w", kind, id, err)
		}
		return fieldValue{status: st}, nil
	}

	return fieldValue{}, fmt.Errorf("field %s: unhandled kind %d", field, fk)
}

// parseTime returns nil for blank input, which clears the field.
func (d *Dispatcher) parseTime(field, label, raw string) (*time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(TimeLayout, v, d.loc)
	if err != nil {
		return nil, fieldErr(ErrFormat, field, "%s %q does not match yyyy/MM/dd HH:mm.", label, v)
	}
	return &t, nil
}
