package model

import (
	"encoding/json"
	"fmt"
)

// Status is the completion state of a Todo.
type Status int

const (
	Incomplete Status = iota
	Complete
)

func (s Status) String() string {
	if s == Complete {
		return "Complete"
	}
	return "Incomplete"
}

// Toggle returns the other status.
func (s Status) Toggle() Status {
	if s == Complete {
		return Incomplete
	}
	return Complete
}

// ParseStatus accepts the wire names "Incomplete" and "Complete".
func ParseStatus(s string) (Status, error) {
	switch s {
	case "Incomplete":
		return Incomplete, nil
	case "Complete":
		return Complete, nil
	}
	return Incomplete, fmt.Errorf("unknown status %q", s)
}

// StatusFromChecked maps a checkbox state onto a Status.
func StatusFromChecked(checked bool) Status {
	if checked {
		return Complete
	}
	return Incomplete
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Todo is a record owned by the backend. The ID is assigned on creation.
type Todo struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Done reports whether the record is Complete.
func (t Todo) Done() bool { return t.Status == Complete }
