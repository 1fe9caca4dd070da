package repo

import (
	"database/sql"
	"strings"

	"codebeyond/internal/model"
)

// participantColumns lists the scanned columns; created_at and reviewed_at come last
// because each backend scans timestamps its own way.
const participantColumns = `id, email, status, rejection_reason, team_name, team_lead, university, department,
	phone, team_size, project_title, project_category, project_description, problem_solved, tech_stack,
	project_url, video_url, project_doc_url, accommodation_needed, accommodation_type,
	accommodation_duration, special_requirements, reviewed_by, created_at, reviewed_at`

const insertColumns = `id, email, status, team_name, team_lead, university, department, phone, team_size,
	project_title, project_category, project_description, problem_solved, tech_stack, project_url, video_url,
	project_doc_url, accommodation_needed, accommodation_type, accommodation_duration, special_requirements,
	created_at`

type nullableColumns struct {
	rejectionReason       sql.NullString
	projectURL            sql.NullString
	videoURL              sql.NullString
	projectDocURL         sql.NullString
	accommodationType     sql.NullString
	accommodationDuration sql.NullString
	specialRequirements   sql.NullString
	reviewedBy            sql.NullString
}

func scanTargets(p *model.Participant, n *nullableColumns) []any {
	return []any{
		&p.ID, &p.Email, &p.Status, &n.rejectionReason, &p.TeamName, &p.TeamLead, &p.University,
		&p.Department, &p.Phone, &p.TeamSize, &p.ProjectTitle, &p.Category, &p.Description,
		&p.ProblemSolved, &p.TechStack, &n.projectURL, &n.videoURL, &n.projectDocURL,
		&p.AccommodationRequired, &n.accommodationType, &n.accommodationDuration,
		&n.specialRequirements, &n.reviewedBy,
	}
}

func (n nullableColumns) apply(p *model.Participant) {
	p.RejectionReason = n.rejectionReason.String
	p.ProjectURL = n.projectURL.String
	p.VideoURL = n.videoURL.String
	p.ProjectDocURL = n.projectDocURL.String
	p.AccommodationType = n.accommodationType.String
	p.AccommodationDuration = n.accommodationDuration.String
	p.SpecialRequirements = n.specialRequirements.String
	p.ReviewedBy = n.reviewedBy.String
}

func insertArgs(p model.Participant, createdAt any) []any {
	return []any{
		p.ID, p.Email, string(model.StatusPending), p.TeamName, p.TeamLead, p.University, p.Department,
		p.Phone, p.TeamSize, p.ProjectTitle, p.Category, p.Description, p.ProblemSolved, p.TechStack,
		nullString(p.ProjectURL), nullString(p.VideoURL), nullString(p.ProjectDocURL),
		p.AccommodationRequired, nullString(p.AccommodationType), nullString(p.AccommodationDuration),
		nullString(p.SpecialRequirements), createdAt,
	}
}

// placeholders renders n bind markers using mark for the 1-based position.
func placeholders(n int, mark func(int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = mark(i + 1)
	}
	return strings.Join(parts, ", ")
}

// patchSet renders "col = <mark>" pairs for the changed columns. Column names come from
// model.Patch, never from request input.
func patchSet(patch model.Patch, mark func(int) string) (string, []any) {
	cols := patch.Columns()
	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		parts = append(parts, c.Name+" = "+mark(i+1))
		args = append(args, c.Value)
	}
	return strings.Join(parts, ", "), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
