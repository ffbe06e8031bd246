package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// statusAlias is accepted by every entity kind in place of its own status field name.
const statusAlias = "status"

type fieldKind int

const (
	optionalText fieldKind = iota
	requiredText
	countField
	statusRef
)

// maxCount is the upper bound of the short-typed count columns.
const maxCount = 32767

// fieldValue is a parsed primary value; which member is meaningful depends on
// the field kind.
type fieldValue struct {
	text   *string
	count  int16
	status types.Status
}

type fieldSpec[R any] struct {
	kind  fieldKind
	label string
	set   func(r *R, v fieldValue)
}

func (s fieldSpec[R]) message(v fieldValue) string {
	switch s.kind {
	case countField:
		return fmt.Sprintf("%s changed to %q.", s.label, strconv.Itoa(int(v.count)))
	case statusRef:
		return fmt.Sprintf("%s changed to %q.", s.label, v.status.Name)
	}
	if v.text == nil {
		return s.label + " cleared."
	}
	return s.label + " updated."
}

func (s fieldSpec[R]) wireValue(v fieldValue) string {
	switch s.kind {
	case countField:
		return strconv.Itoa(int(v.count))
	case statusRef:
		return strconv.Itoa(v.status.ID)
	}
	if v.text == nil {
		return ""
	}
	return *v.text
}

type timeSpec[R any] struct {
	label string
	set   func(r *R, t *time.Time)
}

func (s timeSpec[R]) message(t *time.Time) string {
	if t == nil {
		return s.label + " cleared."
	}
	return s.label + " updated."
}

// entityTable is the update surface of one record kind.
type entityTable[R any] struct {
	kind        types.EntityType
	statusField string
	fields      map[string]fieldSpec[R]
	times       map[string]timeSpec[R]

	load  func(ctx context.Context, id int) (R, error)
	save  func(ctx context.Context, r R) error
	stamp func(r *R) *time.Time
}

type applier interface {
	apply(ctx context.Context, d *Dispatcher, cmd UpdateCommand, id int) (Result, error)
	check(statusesWired bool) error
}

func (t *entityTable[R]) check(statusesWired bool) error {
	if t.load == nil || t.save == nil || t.stamp == nil {
		return fmt.Errorf("%s: storage hooks missing", t.kind)
	}
	if _, ok := t.fields[statusAlias]; ok {
		return fmt.Errorf("%s: field name %q is reserved", t.kind, statusAlias)
	}
	st, ok := t.fields[t.statusField]
	if !ok || st.kind != statusRef {
		return fmt.Errorf("%s: status field %q not declared as a status reference", t.kind, t.statusField)
	}
	for name, f := range t.fields {
		if f.set == nil || f.label == "" {
			return fmt.Errorf("%s.%s: setter or label missing", t.kind, name)
		}
		if f.kind == statusRef && !statusesWired {
			return fmt.Errorf("%s.%s: no status master lookup", t.kind, name)
		}
	}
	for name, ts := range t.times {
		if ts.set == nil || ts.label == "" {
			return fmt.Errorf("%s.%s: setter or label missing", t.kind, name)
		}
	}
	return nil
}

func (t *entityTable[R]) apply(ctx context.Context, d *Dispatcher, cmd UpdateCommand, id int) (Result, error) {
	name := cmd.Field
	if name == statusAlias {
		name = t.statusField
	}
	spec, ok := t.fields[name]
	if !ok {
		return Result{}, fieldErr(ErrInvalidField, cmd.Field, "Field %q cannot be updated on %s records.", cmd.Field, t.kind)
	}

	var extra *timeSpec[R]
	if cmd.ExtraField != "" {
		ts, ok := t.times[cmd.ExtraField]
		if !ok {
			return Result{}, fieldErr(ErrInvalidField, cmd.ExtraField, "Field %q cannot be updated on %s records.", cmd.ExtraField, t.kind)
		}
		extra = &ts
	}

	rec, err := t.load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, fieldErr(ErrNotFound, "id", "No %s record with id %d.", t.kind, id)
	}
	if err != nil {
		return Result{}, fmt.Errorf("load %s %d: %w", t.kind, id, err)
	}

	v, err := d.parseValue(ctx, t.kind, name, spec.kind, spec.label, cmd.Value)
	if err != nil {
		return Result{}, err
	}

	// Every input is parsed before the record is touched so a bad secondary
	// value rejects the whole update.
	var extraAt *time.Time
	if extra != nil {
		extraAt, err = d.parseTime(cmd.ExtraField, extra.label, cmd.ExtraValue)
		if err != nil {
			return Result{}, err
		}
	}

	spec.set(&rec, v)
	if extra != nil {
		extra.set(&rec, extraAt)
	}
	stamp := t.stamp(&rec)
	committed := nextUpdateTime(d.now(), *stamp)
	*stamp = committed

	if err := t.save(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("save %s %d: %w", t.kind, id, err)
	}

	res := Result{
		Entity:      t.kind,
		RecordID:    id,
		Field:       name,
		NewValue:    spec.wireValue(v),
		Message:     spec.message(v),
		CommittedAt: committed,
		UpdateTime:  d.FormatTime(committed),
	}
	if extra != nil {
		ev := ""
		if extraAt != nil {
			ev = d.FormatTime(*extraAt)
		}
		res.ExtraField = cmd.ExtraField
		res.ExtraValue = &ev
		res.Message += " Also: " + extra.message(extraAt)
	}
	return res, nil
}

// nextUpdateTime keeps a record's update time non-decreasing even if the wall
// clock steps backwards.
func nextUpdateTime(now, prev time.Time) time.Time {
	t := now.UTC().Truncate(time.Millisecond)
	if t.Before(prev) {
		return prev.UTC()
	}
	return t
}

func parkingTable(s store.ParkingStore) *entityTable[types.ParkingRecord] {
	return &entityTable[types.ParkingRecord]{
		kind:        types.EntityParking,
		statusField: "parkingStatus",
		fields: map[string]fieldSpec[types.ParkingRecord]{
			"parkingPermit": {optionalText, "Parking permit",
				func(r *types.ParkingRecord, v fieldValue) { r.ParkingPermit = v.text }},
			"parkingPosition": {optionalText, "Parking position",
				func(r *types.ParkingRecord, v fieldValue) { r.ParkingPosition = v.text }},
			"carNumber": {requiredText, "Car number",
				func(r *types.ParkingRecord, v fieldValue) { r.CarNumber = *v.text }},
			"parkingStatus": {statusRef, "Parking status",
				func(r *types.ParkingRecord, v fieldValue) { r.StatusID = v.status.ID }},
			"remarksColumn": {optionalText, "Remarks",
				func(r *types.ParkingRecord, v fieldValue) { r.RemarksColumn = v.text }},
		},
		times: map[string]timeSpec[types.ParkingRecord]{
			"departureTime": {"Departure time", func(r *types.ParkingRecord, t *time.Time) { r.DepartureTime = t }},
		},
		load:  s.GetParking,
		save:  s.SaveParking,
		stamp: func(r *types.ParkingRecord) *time.Time { return &r.UpdateTime },
	}
}

func visitorTable(s store.VisitorStore) *entityTable[types.VisitorRecord] {
	return &entityTable[types.VisitorRecord]{
		kind:        types.EntityVisitor,
		statusField: "visitSituation",
		fields: map[string]fieldSpec[types.VisitorRecord]{
			"visitSituation": {statusRef, "Visit situation",
				func(r *types.VisitorRecord, v fieldValue) { r.StatusID = v.status.ID }},
			"remarksColumn": {optionalText, "Remarks",
				func(r *types.VisitorRecord, v fieldValue) { r.RemarksColumn = v.text }},
		},
		times: map[string]timeSpec[types.VisitorRecord]{
			"compilationCmpTime": {"Completion time", func(r *types.VisitorRecord, t *time.Time) { r.CompilationCmpTime = t }},
		},
		load:  s.GetVisitor,
		save:  s.SaveVisitor,
		stamp: func(r *types.VisitorRecord) *time.Time { return &r.UpdateTime },
	}
}

func busTable(s store.BusStore) *entityTable[types.BusRecord] {
	return &entityTable[types.BusRecord]{
		kind:        types.EntityBus,
		statusField: "busSituation",
		fields: map[string]fieldSpec[types.BusRecord]{
			"busSituation": {statusRef, "Bus situation",
				func(r *types.BusRecord, v fieldValue) { r.StatusID = v.status.ID }},
			"remarksColumn": {optionalText, "Remarks",
				func(r *types.BusRecord, v fieldValue) { r.RemarksColumn = v.text }},
			"passengers": {countField, "Passenger count",
				func(r *types.BusRecord, v fieldValue) { r.Passengers = v.count }},
		},
		times: map[string]timeSpec[types.BusRecord]{
			"emptybusDepTime": {"Empty bus departure time", func(r *types.BusRecord, t *time.Time) { r.EmptybusDepTime = t }},
			"departureTime":   {"Departure time", func(r *types.BusRecord, t *time.Time) { r.DepartureTime = t }},
		},
		load:  s.GetBus,
		save:  s.SaveBus,
		stamp: func(r *types.BusRecord) *time.Time { return &r.UpdateTime },
	}
}
