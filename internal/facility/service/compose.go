package service

import (
	"strconv"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// ComposeEvent flattens a dispatcher result into the entity-agnostic event
// sent to every subscriber.
func ComposeEvent(r Result) types.ChangeEvent {
	ev := types.ChangeEvent{
		RecordID:   strconv.Itoa(r.RecordID),
		EntityType: r.Entity,
		Field:      r.Field,
		NewValue:   r.NewValue,
		UpdateTime: r.UpdateTime,
		Message:    r.Message,
	}
	if r.ExtraField != "" {
		ev.ExtraField = r.ExtraField
		v := ""
		if r.ExtraValue != nil {
			v = *r.ExtraValue
		}
		ev.ExtraValue = &v
	}
	return ev
}
