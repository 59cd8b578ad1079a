package model

import (
	"math"
	"strings"
	"time"
)

// Competency is a scored evaluation criterion belonging to one subject.
type Competency struct {
	ID        int       `json:"id"`
	SubjectID int       `json:"subjectId"`
	Name      string    `json:"name"`
	Marks     float64   `json:"marks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCompetencyRequest is the payload for creating a competency.
type CreateCompetencyRequest struct {
	SubjectID int      `json:"subjectId" binding:"required,gt=0,lte=2147483647"`
	Name      string   `json:"name" binding:"required,min=2,max=100"`
	Marks     *float64 `json:"marks" binding:"required,gte=0,lte=10"`
}

func (r *CreateCompetencyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	roundMarks(r.Marks)
}

func (r *CreateCompetencyRequest) Messages() map[string]string {
	return competencyMessages
}

// UpdateCompetencyRequest is the payload for a partial competency update.
// The owning subject cannot be changed.
type UpdateCompetencyRequest struct {
	Name  *string  `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Marks *float64 `json:"marks,omitempty" binding:"omitempty,gte=0,lte=10"`
}

func (r *UpdateCompetencyRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	roundMarks(r.Marks)
}

func (r *UpdateCompetencyRequest) Messages() map[string]string {
	return competencyMessages
}

// Empty reports whether no field was supplied.
func (r *UpdateCompetencyRequest) Empty() bool {
	return r.Name == nil && r.Marks == nil
}

var competencyMessages = map[string]string{
	"subjectId.required": "Subject ID is required",
	"subjectId.gt":       MsgInvalidID,
	"subjectId.lte":      MsgInvalidID,
	"name.required":      MsgRequiredField,
	"name.min":           "Competency name must be at least 2 characters",
	"name.max":           "Competency name cannot exceed 100 characters",
	"subjectId.type":     MsgInvalidID,
	"name.type":          "Competency name must be a string",
	"marks.required":     "Marks are required",
	"marks.type":         "Marks must be a number",
	"marks.gte":          "Marks must be at least 0",
	"marks.lte":          "Marks cannot exceed 10",
}

// roundMarks keeps two decimal places, matching the NUMERIC(4,2) column.
func roundMarks(m *float64) {
	if m != nil {
		*m = math.Round(*m*100) / 100
	}
}
