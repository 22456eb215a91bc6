package dto

import "time"

// ListLeadsRequest filters and paginates the workspace lead list
type ListLeadsRequest struct {
	ICPMatched      *bool   `json:"icp_matched" query:"icp_matched"`
	MinICPScore     *int    `json:"min_icp_score" query:"min_icp_score" validate:"omitempty,min=0,max=100"`
	Company         *string `json:"company" query:"company" validate:"omitempty,max=255"`
	PushedToOutbound *bool  `json:"pushed_to_outbound" query:"pushed_to_outbound"`
	Page            int     `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize        int     `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=200"`
}

// LeadDTO is the API representation of a signal lead
type LeadDTO struct {
	UUID             string     `json:"uuid"`
	ProfileURL       string     `json:"profile_url"`
	FullName         string     `json:"full_name"`
	Headline         string     `json:"headline"`
	JobTitle         string     `json:"job_title"`
	Company          string     `json:"company"`
	Location         string     `json:"location"`
	ICPScore         int        `json:"icp_score"`
	ICPMatched       bool       `json:"icp_matched"`
	FirstSeenAt      time.Time  `json:"first_seen_at"`
	LastSeenAt       time.Time  `json:"last_seen_at"`
	PushedToOutbound bool       `json:"pushed_to_outbound"`
	PushAttemptedAt  *time.Time `json:"push_attempted_at,omitempty"`
}

// ListLeadsResponse wraps a page of leads
type ListLeadsResponse struct {
	Leads    []LeadDTO `json:"leads"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// EventDTO is the API representation of one engagement event on a lead
type EventDTO struct {
	ID         int64     `json:"id"`
	SignalType string    `json:"signal_type"`
	Sentiment  *string   `json:"sentiment,omitempty"`
	Snippet    string    `json:"snippet,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListEventsResponse wraps the event timeline of a lead
type ListEventsResponse struct {
	Events []EventDTO `json:"events"`
}

// ICPFiltersDTO is the API representation of a workspace ICP filter set
type ICPFiltersDTO struct {
	TitleKeywords     []string `json:"title_keywords"`
	IndustryKeywords  []string `json:"industry_keywords"`
	CompanySizeMin    *int     `json:"company_size_min,omitempty"`
	CompanySizeMax    *int     `json:"company_size_max,omitempty"`
	RequiredSeniority *string  `json:"required_seniority,omitempty"`
	ExcludedCompanies []string `json:"excluded_companies"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// UpdateICPFiltersRequest replaces the workspace ICP filter set
type UpdateICPFiltersRequest struct {
	TitleKeywords     []string `json:"title_keywords" validate:"omitempty,dive,min=1,max=128"`
	IndustryKeywords  []string `json:"industry_keywords" validate:"omitempty,dive,min=1,max=128"`
	CompanySizeMin    *int     `json:"company_size_min" validate:"omitempty,min=1"`
	CompanySizeMax    *int     `json:"company_size_max" validate:"omitempty,min=1"`
	RequiredSeniority *string  `json:"required_seniority" validate:"omitempty,oneof=ic manager director vp c_level"`
	ExcludedCompanies []string `json:"excluded_companies" validate:"omitempty,dive,min=1,max=255"`
}
