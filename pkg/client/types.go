package client

import "time"

// Subject mirrors the API's subject record.
type Subject struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Competency mirrors the API's competency record.
type Competency struct {
	ID        int       `json:"id"`
	SubjectID int       `json:"subjectId"`
	Name      string    `json:"name"`
	Marks     float64   `json:"marks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateSubjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateSubjectRequest sends only the non-nil fields.
type UpdateSubjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateCompetencyRequest struct {
	SubjectID int      `json:"subjectId"`
	Name      string   `json:"name"`
	Marks     *float64 `json:"marks"`
}

// UpdateCompetencyRequest sends only the non-nil fields.
type UpdateCompetencyRequest struct {
	Name  *string  `json:"name,omitempty"`
	Marks *float64 `json:"marks,omitempty"`
}
