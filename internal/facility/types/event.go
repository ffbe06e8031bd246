package types

// ChangeEvent is the flat description of one committed update, fanned out to
// every dashboard client. It is never persisted.
type ChangeEvent struct {
	RecordID   string     `json:"id"`
	EntityType EntityType `json:"entityType"`
	Field      string     `json:"field"`
	NewValue   string     `json:"newValue"`
	ExtraField string     `json:"extraField,omitempty"`
	ExtraValue *string    `json:"extraValue,omitempty"`
	UpdateTime string     `json:"updateTime"`
	Message    string     `json:"message"`
}
