package registry

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"codebeyond/internal/model"
)

// csvHeader is read by spreadsheet tooling downstream; append new columns, never reorder.
var csvHeader = []string{
	"ID",
	"Email",
	"Status",
	"Team Name",
	"Team Lead",
	"University",
	"Department",
	"Phone",
	"Team Size",
	"Project Title",
	"Category",
	"Tech Stack",
	"Problem Solved",
	"Project URL",
	"Video URL",
	"Accommodation Required",
	"Accommodation Type",
	"Accommodation Duration",
	"Registration Date",
}

// ExportCSV writes the filtered set, or the full set when no filter is active,
// and returns the number of data rows written.
func (r *Registry) ExportCSV(w io.Writer) (int, error) {
	r.mu.Lock()
	rows := r.all
	if r.filter.Active() {
		rows = r.filtered
	}
	rows = clone(rows)
	r.mu.Unlock()

	if err := WriteCSV(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func ExportFileName(now time.Time) string {
	return fmt.Sprintf("participants_%s.csv", now.UTC().Format("20060102_150405"))
}

// WriteCSV quotes every field, unlike encoding/csv which only quotes when needed.
func WriteCSV(w io.Writer, ps []model.Participant) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, csvHeader); err != nil {
		return err
	}
	for _, p := range ps {
		if err := writeRecord(bw, csvRecord(p)); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvRecord(p model.Participant) []string {
	teamSize := ""
	if p.TeamSize > 0 {
		teamSize = strconv.Itoa(p.TeamSize)
	}
	accommodation := "No"
	if p.AccommodationRequired {
		accommodation = "Yes"
	}
	registered := ""
	if !p.RegisteredAt.IsZero() {
		registered = p.RegisteredAt.UTC().Format(time.RFC3339)
	}
	return []string{
		p.ID,
		p.Email,
		string(p.Status),
		p.TeamName,
		p.TeamLead,
		p.University,
		p.Department,
		p.Phone,
		teamSize,
		p.ProjectTitle,
		p.Category,
		p.TechStack,
		p.ProblemSolved,
		p.ProjectURL,
		p.VideoURL,
		accommodation,
		p.AccommodationType,
		p.AccommodationDuration,
		registered,
	}
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
