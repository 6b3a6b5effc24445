package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the completion state of a task.
type Status uint8

const (
	StatusPending Status = iota
	StatusDone
)

const (
	pendingText = "pending"
	doneText    = "done"

	// Values written by earlier releases of the web client.
	legacyPendingText = "non terminée"
	legacyDoneText    = "terminée"
)

// ParseStatus maps a wire value onto a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case pendingText, legacyPendingText:
		return StatusPending, nil
	case doneText, legacyDoneText:
		return StatusDone, nil
	}
	return StatusPending, Validation(fmt.Sprintf("unknown status %q", s))
}

func (s Status) String() string {
	if s == StatusDone {
		return doneText
	}
	return pendingText
}

// Opposite returns done for pending and pending for done.
func (s Status) Opposite() Status {
	if s == StatusDone {
		return StatusPending
	}
	return StatusDone
}

// IsValid reports whether s is one of the declared statuses.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusDone
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid status value %d", uint8(s))
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return Validation("status must be a string")
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
