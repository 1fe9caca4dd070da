package registry

import (
	"strings"

	"codebeyond/internal/model"
)

// Filter is the admin panel's search box plus the status and category dropdowns.
type Filter struct {
	Query    string       `json:"query"`
	Status   model.Status `json:"status"`
	Category string       `json:"category"`
}

func (f Filter) Active() bool {
	return f.Query != "" || f.Status != "" || f.Category != ""
}

// Matches: query is a case-insensitive substring of team lead, email, project title,
// university or team name; status and category compare exactly.
func (f Filter) Matches(p model.Participant) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	for _, field := range []string{p.TeamLead, p.Email, p.ProjectTitle, p.University, p.TeamName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply returns the matching subsequence of all, preserving order.
func (f Filter) Apply(all []model.Participant) []model.Participant {
	out := make([]model.Participant, 0, len(all))
	for _, p := range all {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
