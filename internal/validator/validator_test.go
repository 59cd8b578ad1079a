package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func newContext(body string) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func requireValidation(t *testing.T, err error) *apperr.Error {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %v", err)
	require.Equal(t, apperr.KindValidation, e.Kind)
	return e
}

func TestBindCreateSubjectTrimsAndStripsUnknown(t *testing.T) {
	var req model.CreateSubjectRequest
	err := Bind(newContext(`{"name":"  Algorithms  ","description":" Sorting and searching ","extra":true}`), &req)

	require.NoError(t, err)
	assert.Equal(t, "Algorithms", req.Name)
	require.NotNil(t, req.Description)
	assert.Equal(t, "Sorting and searching", *req.Description)
}

func TestBindCreateSubjectNameTooShortAfterTrim(t *testing.T) {
	var req model.CreateSubjectRequest
	e := requireValidation(t, Bind(newContext(`{"name":"  A  "}`), &req))

	assert.Equal(t, "Subject name must be at least 2 characters", e.Fields["name"])
}

func TestBindCreateSubjectAllowsEmptyDescription(t *testing.T) {
	var req model.CreateSubjectRequest
	require.NoError(t, Bind(newContext(`{"name":"Algorithms","description":""}`), &req))
	require.NotNil(t, req.Description)
	assert.Empty(t, *req.Description)
}

func TestBindCreateSubjectDescriptionTooLong(t *testing.T) {
	var req model.CreateSubjectRequest
	body := `{"name":"Algorithms","description":"` + strings.Repeat("x", 501) + `"}`
	e := requireValidation(t, Bind(newContext(body), &req))

	assert.Equal(t, "Description cannot exceed 500 characters", e.Fields["description"])
}

func TestBindCreateCompetencyReportsAllFields(t *testing.T) {
	var req model.CreateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"subjectId":-1,"name":"x","marks":11}`), &req))

	assert.Len(t, e.Fields, 3)
	assert.Equal(t, model.MsgInvalidID, e.Fields["subjectId"])
	assert.Equal(t, "Competency name must be at least 2 characters", e.Fields["name"])
	assert.Equal(t, "Marks cannot exceed 10", e.Fields["marks"])
}

func TestBindCreateCompetencyMissingFields(t *testing.T) {
	var req model.CreateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{}`), &req))

	assert.Equal(t, "Subject ID is required", e.Fields["subjectId"])
	assert.Equal(t, model.MsgRequiredField, e.Fields["name"])
	assert.Equal(t, "Marks are required", e.Fields["marks"])
}

func TestBindCreateCompetencyZeroMarksIsValid(t *testing.T) {
	var req model.CreateCompetencyRequest
	require.NoError(t, Bind(newContext(`{"subjectId":1,"name":"Sorting","marks":0}`), &req))
	require.NotNil(t, req.Marks)
	assert.Equal(t, 0.0, *req.Marks)
}

func TestBindCreateCompetencyWrongType(t *testing.T) {
	var req model.CreateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"subjectId":1,"name":"Sorting","marks":"high"}`), &req))

	assert.Equal(t, "Marks must be a number", e.Fields["marks"])
}

func TestBindMalformedJSON(t *testing.T) {
	var req model.CreateSubjectRequest
	e := requireValidation(t, Bind(newContext(`{"name":`), &req))

	assert.Contains(t, e.Fields, "body")
}

func TestBindEmptyPartialUpdateRejected(t *testing.T) {
	var req model.UpdateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"subjectId":3}`), &req))

	assert.Equal(t, model.MsgEmptyUpdate, e.Message)
	assert.Equal(t, "body", e.Field)
}

func TestBindPartialUpdateMarksOutOfRange(t *testing.T) {
	var req model.UpdateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"marks":-0.5}`), &req))

	assert.Equal(t, "Marks must be at least 0", e.Fields["marks"])
}

func TestBindPartialUpdateBlankName(t *testing.T) {
	var req model.UpdateSubjectRequest
	e := requireValidation(t, Bind(newContext(`{"name":"   "}`), &req))

	assert.Equal(t, "Subject name must be at least 2 characters", e.Fields["name"])
}

func TestBindID(t *testing.T) {
	cases := []struct {
		raw   string
		want  int
		valid bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"2147483647", 2147483647, true},
		{"2147483648", 0, false},
		{"3000000000", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			c := newContext("")
			c.Params = gin.Params{{Key: "id", Value: tc.raw}}

			id, err := BindID(c, "id")
			if !tc.valid {
				e := requireValidation(t, err)
				assert.Equal(t, model.MsgInvalidID, e.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestBindTypeErrorDoesNotHideOtherFields(t *testing.T) {
	var req model.CreateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"subjectId":1,"name":"a","marks":"x"}`), &req))

	assert.Len(t, e.Fields, 2)
	assert.Equal(t, "Marks must be a number", e.Fields["marks"])
	assert.Equal(t, "Competency name must be at least 2 characters", e.Fields["name"])
}

func TestBindReportsEveryTypeError(t *testing.T) {
	var req model.CreateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"subjectId":"one","name":7,"marks":"x"}`), &req))

	assert.Equal(t, model.MsgInvalidID, e.Fields["subjectId"])
	assert.Equal(t, "Competency name must be a string", e.Fields["name"])
	assert.Equal(t, "Marks must be a number", e.Fields["marks"])
}

func TestBindPartialUpdateOnlyWrongType(t *testing.T) {
	var req model.UpdateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"marks":"high"}`), &req))

	assert.Equal(t, map[string]string{"marks": "Marks must be a number"}, e.Fields)
}

func TestBindSubjectIDOutOfRange(t *testing.T) {
	var req model.CreateCompetencyRequest
	e := requireValidation(t, Bind(newContext(`{"subjectId":3000000000,"name":"Sorting","marks":5}`), &req))

	assert.Equal(t, map[string]string{"subjectId": model.MsgInvalidID}, e.Fields)
}

func TestBindNonObjectBody(t *testing.T) {
	for _, body := range []string{`[]`, `"text"`, `42`} {
		var req model.CreateSubjectRequest
		e := requireValidation(t, Bind(newContext(body), &req))

		assert.Equal(t, MsgBodyNotObject, e.Fields["body"], body)
	}
}
