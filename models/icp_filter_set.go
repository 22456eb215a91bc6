package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/magnetlab/signal-pipeline/icp"
)

// ICPFilterSet is the per-workspace Ideal Customer Profile definition.
// Keyword lists are stored as PostgreSQL TEXT[] columns. At most one row
// exists per workspace; a workspace without a row matches everything.
type ICPFilterSet struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	WorkspaceID int64 `gorm:"not null;uniqueIndex:uk_icp_filter_sets_workspace_id" json:"workspace_id"`

	TitleKeywords     pq.StringArray `gorm:"type:text[]" json:"title_keywords"`
	IndustryKeywords  pq.StringArray `gorm:"type:text[]" json:"industry_keywords"`
	ExcludedCompanies pq.StringArray `gorm:"type:text[]" json:"excluded_companies"`
	CompanySizeMin    *int           `json:"company_size_min,omitempty"`
	CompanySizeMax    *int           `json:"company_size_max,omitempty"`
	RequiredSeniority *string        `gorm:"size:16" json:"required_seniority,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (ICPFilterSet) TableName() string { return "icp_filter_sets" }

// Criteria converts the stored row into the pure scoring representation.
func (s *ICPFilterSet) Criteria() icp.Filters {
	f := icp.Filters{
		TitleKeywords:     s.TitleKeywords,
		IndustryKeywords:  s.IndustryKeywords,
		ExcludedCompanies: s.ExcludedCompanies,
		CompanySizeMin:    s.CompanySizeMin,
		CompanySizeMax:    s.CompanySizeMax,
	}
	if s.RequiredSeniority != nil {
		level := icp.Seniority(*s.RequiredSeniority)
		if level.Valid() {
			f.RequiredSeniority = &level
		}
	}
	return f
}

// ICPFilterSetFilter represents filter criteria for filter set queries
type ICPFilterSetFilter struct {
	ID          *uint
	WorkspaceID *int64
}
