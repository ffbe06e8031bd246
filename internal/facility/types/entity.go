package types

// EntityType discriminates the three record kinds shown on the dashboard.
type EntityType string

const (
	EntityParking EntityType = "parking"
	EntityVisitor EntityType = "visitor"
	EntityBus     EntityType = "bus"
)

// EntityTypes lists every kind in display order.
var EntityTypes = []EntityType{EntityParking, EntityVisitor, EntityBus}

func (e EntityType) Valid() bool {
	switch e {
	case EntityParking, EntityVisitor, EntityBus:
		return true
	}
	return false
}

func (e EntityType) String() string { return string(e) }

// Status is one row of an entity kind's status master.
type Status struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
