package model

import (
	"strings"
	"time"
)

// Subject is a top-level grouping that owns zero or more competencies.
type Subject struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
}

func (r *CreateSubjectRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	trimPtr(r.Description)
}

func (r *CreateSubjectRequest) Messages() map[string]string {
	return subjectMessages
}

// UpdateSubjectRequest is the payload for a partial subject update.
// Nil fields are left untouched.
type UpdateSubjectRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
}

func (r *UpdateSubjectRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Description)
}

func (r *UpdateSubjectRequest) Messages() map[string]string {
	return subjectMessages
}

// Empty reports whether no field was supplied.
func (r *UpdateSubjectRequest) Empty() bool {
	return r.Name == nil && r.Description == nil
}

var subjectMessages = map[string]string{
	"name.required":    MsgRequiredField,
	"name.min":         "Subject name must be at least 2 characters",
	"name.max":         "Subject name cannot exceed 100 characters",
	"name.type":        "Subject name must be a string",
	"description.max":  "Description cannot exceed 500 characters",
	"description.type": "Description must be a string",
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
