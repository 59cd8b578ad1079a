package model

import "math"

// User-facing messages shared by validation and the service layer.
const (
	MsgRequiredField        = "This field is required"
	MsgInvalidID            = "Invalid ID provided"
	MsgEmptyUpdate          = "At least one field must be provided"
	MsgSubjectNameExists    = "Subject with this name already exists"
	MsgCompetencyNameExists = "Competency with this name already exists for this subject"
)

// MaxID is the largest key an INTEGER column holds.
const MaxID = math.MaxInt32
