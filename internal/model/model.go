package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status is a final review outcome.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Participant struct {
	ID                    string       `db:"id" json:"id"`
	Email                 string       `db:"email" json:"email"`
	Status                Status       `db:"status" json:"status"`
	RejectionReason       string       `db:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	TeamName              string       `db:"team_name" json:"team_name"`
	TeamLead              string       `db:"team_lead" json:"team_lead"`
	University            string       `db:"university" json:"university"`
	Department            string       `db:"department" json:"department"`
	Phone                 string       `db:"phone" json:"phone"`
	TeamSize              int          `db:"team_size" json:"team_size"`
	ProjectTitle          string       `db:"project_title" json:"project_title"`
	Category              string       `db:"project_category" json:"project_category"`
	Description           string       `db:"project_description" json:"project_description"`
	ProblemSolved         string       `db:"problem_solved" json:"problem_solved"`
	TechStack             string       `db:"tech_stack" json:"tech_stack"`
	ProjectURL            string       `db:"project_url,omitempty" json:"project_url,omitempty"`
	VideoURL              string       `db:"video_url,omitempty" json:"video_url,omitempty"`
	ProjectDocURL         string       `db:"project_doc_url,omitempty" json:"project_doc_url,omitempty"`
	AccommodationRequired bool         `db:"accommodation_needed" json:"accommodation_needed"`
	AccommodationType     string       `db:"accommodation_type,omitempty" json:"accommodation_type,omitempty"`
	AccommodationDuration string       `db:"accommodation_duration,omitempty" json:"accommodation_duration,omitempty"`
	SpecialRequirements   string       `db:"special_requirements,omitempty" json:"special_requirements,omitempty"`
	TeamMembers           []TeamMember `json:"team_members,omitempty"`
	RegisteredAt          time.Time    `db:"created_at" json:"created_at"`
	ReviewedAt            *time.Time   `db:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewedBy            string       `db:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
}

type TeamMember struct {
	Name  string `db:"member_name" json:"name"`
	Email string `db:"member_email" json:"email"`
	Role  string `db:"member_role" json:"role"`
}

// Review is the outcome written back to the registry when an admin decides on a registration.
type Review struct {
	Status     Status
	Reason     string
	ReviewedBy string
	ReviewedAt time.Time
}

func (p *Participant) ApplyReview(r Review) {
	p.Status = r.Status
	p.RejectionReason = ""
	if r.Status == StatusRejected {
		p.RejectionReason = r.Reason
	}
	at := r.ReviewedAt
	p.ReviewedAt = &at
	p.ReviewedBy = r.ReviewedBy
}

// Patch carries the editable team/project metadata. Nil fields are left untouched.
type Patch struct {
	TeamName              *string `json:"team_name,omitempty" validate:"omitempty,notblank,max=255"`
	TeamLead              *string `json:"team_lead,omitempty" validate:"omitempty,notblank,max=255"`
	University            *string `json:"university,omitempty" validate:"omitempty,notblank,max=255"`
	Department            *string `json:"department,omitempty" validate:"omitempty,max=255"`
	Phone                 *string `json:"phone,omitempty" validate:"omitempty,phone"`
	TeamSize              *int    `json:"team_size,omitempty" validate:"omitempty,teamsize"`
	ProjectTitle          *string `json:"project_title,omitempty" validate:"omitempty,notblank,max=255"`
	Category              *string `json:"project_category,omitempty" validate:"omitempty,notblank,max=100"`
	Description           *string `json:"project_description,omitempty"`
	ProblemSolved         *string `json:"problem_solved,omitempty"`
	TechStack             *string `json:"tech_stack,omitempty"`
	ProjectURL            *string `json:"project_url,omitempty" validate:"omitempty,url"`
	VideoURL              *string `json:"video_url,omitempty" validate:"omitempty,url"`
	ProjectDocURL         *string `json:"project_doc_url,omitempty" validate:"omitempty,url"`
	AccommodationRequired *bool   `json:"accommodation_needed,omitempty"`
	AccommodationType     *string `json:"accommodation_type,omitempty"`
	AccommodationDuration *string `json:"accommodation_duration,omitempty"`
	SpecialRequirements   *string `json:"special_requirements,omitempty"`
}

func (p Patch) Empty() bool {
	return len(p.Columns()) == 0
}

// Columns returns the changed fields keyed by their storage column, in a stable order.
func (p Patch) Columns() []Column {
	var cols []Column
	addStr := func(name string, v *string) {
		if v != nil {
			cols = append(cols, Column{Name: name, Value: strings.TrimSpace(*v)})
		}
	}
	addStr("team_name", p.TeamName)
	addStr("team_lead", p.TeamLead)
	addStr("university", p.University)
	addStr("department", p.Department)
	addStr("phone", p.Phone)
	if p.TeamSize != nil {
		cols = append(cols, Column{Name: "team_size", Value: *p.TeamSize})
	}
	addStr("project_title", p.ProjectTitle)
	addStr("project_category", p.Category)
	addStr("project_description", p.Description)
	addStr("problem_solved", p.ProblemSolved)
	addStr("tech_stack", p.TechStack)
	addStr("project_url", p.ProjectURL)
	addStr("video_url", p.VideoURL)
	addStr("project_doc_url", p.ProjectDocURL)
	if p.AccommodationRequired != nil {
		cols = append(cols, Column{Name: "accommodation_needed", Value: *p.AccommodationRequired})
	}
	addStr("accommodation_type", p.AccommodationType)
	addStr("accommodation_duration", p.AccommodationDuration)
	addStr("special_requirements", p.SpecialRequirements)
	return cols
}

type Column struct {
	Name  string
	Value any
}

// Apply merges the patch into dst.
func (p Patch) Apply(dst *Participant) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&dst.TeamName, p.TeamName)
	set(&dst.TeamLead, p.TeamLead)
	set(&dst.University, p.University)
	set(&dst.Department, p.Department)
	set(&dst.Phone, p.Phone)
	if p.TeamSize != nil {
		dst.TeamSize = *p.TeamSize
	}
	set(&dst.ProjectTitle, p.ProjectTitle)
	set(&dst.Category, p.Category)
	set(&dst.Description, p.Description)
	set(&dst.ProblemSolved, p.ProblemSolved)
	set(&dst.TechStack, p.TechStack)
	set(&dst.ProjectURL, p.ProjectURL)
	set(&dst.VideoURL, p.VideoURL)
	set(&dst.ProjectDocURL, p.ProjectDocURL)
	if p.AccommodationRequired != nil {
		dst.AccommodationRequired = *p.AccommodationRequired
	}
	set(&dst.AccommodationType, p.AccommodationType)
	set(&dst.AccommodationDuration, p.AccommodationDuration)
	set(&dst.SpecialRequirements, p.SpecialRequirements)
}

type Summary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
