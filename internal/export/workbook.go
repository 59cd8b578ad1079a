// Package export renders subjects and their competencies as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stemsi/evaluation-backend/internal/model"
)

const (
	SubjectsSheet     = "Subjects"
	CompetenciesSheet = "Competencies"
	ContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	subjectHeaders    = []string{"ID", "Name", "Description", "Competencies", "Created At", "Updated At"}
	competencyHeaders = []string{"ID", "Subject ID", "Subject", "Name", "Marks", "Created At", "Updated At"}
)

// Build lays out one sheet per entity. Subject rows carry their competency count.
func Build(subjects []model.Subject, competencies []model.Competency) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SubjectsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CompetenciesSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	counts := make(map[int]int, len(subjects))
	names := make(map[int]string, len(subjects))
	for _, c := range competencies {
		counts[c.SubjectID]++
	}
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	if err := writeRow(f, SubjectsSheet, 1, toCells(subjectHeaders)); err != nil {
		return nil, err
	}
	for i, s := range subjects {
		desc := ""
		if s.Description != nil {
			desc = *s.Description
		}
		row := []any{s.ID, s.Name, desc, counts[s.ID], formatTime(s.CreatedAt), formatTime(s.UpdatedAt)}
		if err := writeRow(f, SubjectsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, CompetenciesSheet, 1, toCells(competencyHeaders)); err != nil {
		return nil, err
	}
	for i, c := range competencies {
		row := []any{c.ID, c.SubjectID, names[c.SubjectID], c.Name, c.Marks, formatTime(c.CreatedAt), formatTime(c.UpdatedAt)}
		if err := writeRow(f, CompetenciesSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	for sheet, headers := range map[string][]string{SubjectsSheet: subjectHeaders, CompetenciesSheet: competencyHeaders} {
		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetCellStyle(sheet, "A1", last+"1", headerStyle)
		_ = f.SetColWidth(sheet, "A", "A", 8)
		_ = f.SetColWidth(sheet, "B", last, 22)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write renders the workbook straight into w.
func Write(w io.Writer, subjects []model.Subject, competencies []model.Competency) error {
	f, err := Build(subjects, competencies)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName is the attachment name for an export taken at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("evaluation-%s.xlsx", t.UTC().Format("20060102-150405"))
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(headers []string) []any {
	out := make([]any, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
