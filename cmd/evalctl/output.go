package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/stemsi/evaluation-backend/pkg/client"
)

// printer renders tables on a terminal and JSON everywhere else.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) Subjects(list []client.Subject) error {
	if p.json {
		return p.encode(list)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tUPDATED")
	for _, s := range list {
		desc := "-"
		if s.Description != nil && *s.Description != "" {
			desc = *s.Description
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Name, desc, s.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (p *printer) Competencies(list []client.Competency) error {
	if p.json {
		return p.encode(list)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBJECT\tNAME\tMARKS\tUPDATED")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", c.ID, c.SubjectID, c.Name,
			strconv.FormatFloat(c.Marks, 'f', 2, 64), c.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (p *printer) Counts(subjects []client.Subject, counts map[int]int) error {
	if p.json {
		type row struct {
			ID           int    `json:"id"`
			Name         string `json:"name"`
			Competencies int    `json:"competencies"`
		}
		rows := make([]row, 0, len(subjects))
		for _, s := range subjects {
			rows = append(rows, row{ID: s.ID, Name: s.Name, Competencies: counts[s.ID]})
		}
		return p.encode(rows)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOMPETENCIES")
	for _, s := range subjects {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", s.ID, s.Name, counts[s.ID])
	}
	return tw.Flush()
}

func (p *printer) Health(status string, backend *client.Health, reason string) error {
	if p.json {
		out := map[string]any{"status": status, "client": "operational"}
		if backend != nil {
			out["backend"] = backend
		} else {
			out["backend"] = reason
		}
		return p.encode(out)
	}
	fmt.Fprintf(p.w, "status:  %s\n", status)
	if backend == nil {
		fmt.Fprintf(p.w, "backend: %s\n", reason)
		return nil
	}
	fmt.Fprintf(p.w, "service: %s\ndatabase: %s\nredis:   %s\nuptime:  %s\n",
		backend.Service, backend.Database, backend.Redis, backend.Uptime)
	return nil
}
