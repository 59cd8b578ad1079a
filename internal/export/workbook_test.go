package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stemsi/evaluation-backend/internal/model"
)

func TestWriteWorkbook(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	desc := "Core CS"
	subjects := []model.Subject{
		{ID: 2, Name: "Databases", CreatedAt: now, UpdatedAt: now},
		{ID: 1, Name: "Algorithms", Description: &desc, CreatedAt: now, UpdatedAt: now},
	}
	competencies := []model.Competency{
		{ID: 1, SubjectID: 1, Name: "Sorting", Marks: 7.5, CreatedAt: now, UpdatedAt: now},
		{ID: 2, SubjectID: 1, Name: "Graphs", Marks: 9, CreatedAt: now, UpdatedAt: now},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, subjects, competencies))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SubjectsSheet, CompetenciesSheet}, f.GetSheetList())

	rows, err := f.GetRows(SubjectsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, subjectHeaders, rows[0])
	assert.Equal(t, []string{"2", "Databases", "", "0", "2024-03-01T10:00:00Z", "2024-03-01T10:00:00Z"}, rows[1])
	assert.Equal(t, "Core CS", rows[2][2])
	assert.Equal(t, "2", rows[2][3])

	rows, err = f.GetRows(CompetenciesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "1", "Algorithms", "Sorting", "7.5"}, rows[1][:5])
}

func TestWriteEmptyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(CompetenciesSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{competencyHeaders}, rows)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "evaluation-20240301-100000.xlsx", FileName(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
}
