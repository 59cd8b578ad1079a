package model

import "time"

// Entity names used in change events.
const (
	EntitySubject    = "subject"
	EntityCompetency = "competency"
)

// ChangeAction is the kind of mutation a ChangeEvent describes.
type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// ChangeEvent is published after every successful mutation.
type ChangeEvent struct {
	ID         string       `json:"id"`
	Entity     string       `json:"entity"`
	Action     ChangeAction `json:"action"`
	EntityID   int          `json:"entityId"`
	SubjectID  int          `json:"subjectId,omitempty"`
	Data       any          `json:"data,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// Type returns the dotted event name, e.g. "subject.created".
func (e ChangeEvent) Type() string {
	return e.Entity + "." + string(e.Action)
}
