package dto

import (
	"codebeyond/internal/model"
	"codebeyond/internal/registry"
	"strings"
	"time"
)

type TeamMemberRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=255"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"max=100"`
}

type RegisterRequest struct {
	Email                 string              `json:"email" validate:"required,email,max=255"`
	TeamName              string              `json:"team_name" validate:"required,notblank,max=255"`
	TeamLead              string              `json:"team_lead" validate:"required,notblank,max=255"`
	University            string              `json:"university" validate:"required,notblank,max=255"`
	Department            string              `json:"department" validate:"max=255"`
	Phone                 string              `json:"phone" validate:"required,phone"`
	TeamSize              int                 `json:"team_size" validate:"teamsize"`
	ProjectTitle          string              `json:"project_title" validate:"required,notblank,max=255"`
	Category              string              `json:"project_category" validate:"required,notblank,max=100"`
	Description           string              `json:"project_description" validate:"required,notblank"`
	ProblemSolved         string              `json:"problem_solved" validate:"required,notblank"`
	TechStack             string              `json:"tech_stack" validate:"required,notblank"`
	ProjectURL            string              `json:"project_url" validate:"omitempty,url"`
	VideoURL              string              `json:"video_url" validate:"omitempty,url"`
	ProjectDocURL         string              `json:"project_doc_url" validate:"omitempty,url"`
	AccommodationRequired bool                `json:"accommodation_needed"`
	AccommodationType     string              `json:"accommodation_type" validate:"required_when=AccommodationRequired"`
	AccommodationDuration string              `json:"accommodation_duration" validate:"required_when=AccommodationRequired"`
	SpecialRequirements   string              `json:"special_requirements"`
	TeamMembers           []TeamMemberRequest `json:"team_members" validate:"max=5,dive"`
}

// ToModel trims the form input. Accommodation details are dropped when no accommodation
// is requested.
func (r RegisterRequest) ToModel() model.Participant {
	p := model.Participant{
		Email:                 strings.ToLower(strings.TrimSpace(r.Email)),
		TeamName:              strings.TrimSpace(r.TeamName),
		TeamLead:              strings.TrimSpace(r.TeamLead),
		University:            strings.TrimSpace(r.University),
		Department:            strings.TrimSpace(r.Department),
		Phone:                 strings.TrimSpace(r.Phone),
		TeamSize:              r.TeamSize,
		ProjectTitle:          strings.TrimSpace(r.ProjectTitle),
		Category:              strings.TrimSpace(r.Category),
		Description:           strings.TrimSpace(r.Description),
		ProblemSolved:         strings.TrimSpace(r.ProblemSolved),
		TechStack:             strings.TrimSpace(r.TechStack),
		ProjectURL:            strings.TrimSpace(r.ProjectURL),
		VideoURL:              strings.TrimSpace(r.VideoURL),
		ProjectDocURL:         strings.TrimSpace(r.ProjectDocURL),
		AccommodationRequired: r.AccommodationRequired,
		SpecialRequirements:   strings.TrimSpace(r.SpecialRequirements),
	}
	if r.AccommodationRequired {
		p.AccommodationType = strings.TrimSpace(r.AccommodationType)
		p.AccommodationDuration = strings.TrimSpace(r.AccommodationDuration)
	}
	for _, m := range r.TeamMembers {
		p.TeamMembers = append(p.TeamMembers, model.TeamMember{
			Name:  strings.TrimSpace(m.Name),
			Email: strings.ToLower(strings.TrimSpace(m.Email)),
			Role:  strings.TrimSpace(m.Role),
		})
	}
	return p
}

// StatusResponse is what a participant sees on their dashboard.
type StatusResponse struct {
	ID              string       `json:"id"`
	TeamName        string       `json:"team_name"`
	ProjectTitle    string       `json:"project_title"`
	Status          model.Status `json:"status"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	RegisteredAt    time.Time    `json:"created_at"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`
}

func NewStatusResponse(p model.Participant) StatusResponse {
	return StatusResponse{
		ID:              p.ID,
		TeamName:        p.TeamName,
		ProjectTitle:    p.ProjectTitle,
		Status:          p.Status,
		RejectionReason: p.RejectionReason,
		RegisteredAt:    p.RegisteredAt,
		ReviewedAt:      p.ReviewedAt,
	}
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// BulkRequest targets IDs, or the current selection when Ids is empty.
type BulkRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}

type SelectionRequest struct {
	IDs []string `json:"ids"`
}

type SelectionResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

type ListResponse struct {
	Filter       FilterResponse      `json:"filter"`
	Participants []model.Participant `json:"participants"`
	Count        int                 `json:"count"`
}

type FilterResponse struct {
	Query    string       `json:"q,omitempty"`
	Status   model.Status `json:"status,omitempty"`
	Category string       `json:"category,omitempty"`
}

func NewListResponse(f registry.Filter, ps []model.Participant) ListResponse {
	return ListResponse{
		Filter:       FilterResponse{Query: f.Query, Status: f.Status, Category: f.Category},
		Participants: ps,
		Count:        len(ps),
	}
}

type BulkResponse struct {
	Affected []string `json:"affected"`
	Count    int      `json:"count"`
}

func NewBulkResponse(res registry.BulkResult) BulkResponse {
	return BulkResponse{Affected: res.Affected, Count: res.Count()}
}

// ReviewMessage is published after an admin decision and consumed by the notification worker.
type ReviewMessage struct {
	ParticipantID string       `json:"participant_id"`
	Email         string       `json:"email"`
	TeamName      string       `json:"team_name"`
	TeamLead      string       `json:"team_lead"`
	Status        model.Status `json:"status"`
	Reason        string       `json:"reason,omitempty"`
	Locale        string       `json:"locale,omitempty"`
}

func NewReviewMessage(p model.Participant, locale string) ReviewMessage {
	return ReviewMessage{
		ParticipantID: p.ID,
		Email:         p.Email,
		TeamName:      p.TeamName,
		TeamLead:      p.TeamLead,
		Status:        p.Status,
		Reason:        p.RejectionReason,
		Locale:        locale,
	}
}
