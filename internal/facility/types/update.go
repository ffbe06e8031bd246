package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString accepts either a JSON string or a JSON number. Browsers send
// record ids as strings; scripts tend to send numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

type UpdateRequest struct {
	ID         FlexString  `json:"id"`
	Field      string      `json:"field"`
	Value      *FlexString `json:"value,omitempty"`
	ExtraField string      `json:"extraField,omitempty"`
	ExtraValue *FlexString `json:"extraValue,omitempty"`
}

type UpdateResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	UpdateTime string `json:"updateTime"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Message string `json:"message"`
}
