package icp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJobTitle(t *testing.T) {
	tests := []struct {
		name      string
		profile   Profile
		wantTitle string
		wantOK    bool
	}{
		{
			name:      "structured title wins over headline",
			profile:   Profile{Title: "Head of Growth", Headline: "Something else entirely"},
			wantTitle: "Head of Growth",
			wantOK:    true,
		},
		{
			name:      "dash separated headline with company tail",
			profile:   Profile{Headline: "Jane Doe - VP of Sales at Acme"},
			wantTitle: "VP of Sales",
			wantOK:    true,
		},
		{
			name:      "pipe separated headline",
			profile:   Profile{Headline: "Founder & CEO at Magnet Labs | Building lead magnets"},
			wantTitle: "Founder & CEO",
			wantOK:    true,
		},
		{
			name:      "plain title without company",
			profile:   Profile{Headline: "Senior Software Engineer"},
			wantTitle: "Senior Software Engineer",
			wantOK:    true,
		},
		{
			name:    "no recognizable role token",
			profile: Profile{Headline: "Dreamer. Doer. Coffee enthusiast."},
			wantOK:  false,
		},
		{
			name:    "empty profile",
			profile: Profile{},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := ExtractJobTitle(tt.profile)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantTitle, title)
			} else {
				assert.Empty(t, title)
			}
		})
	}
}

func TestExtractCompany(t *testing.T) {
	tests := []struct {
		name        string
		profile     Profile
		wantCompany string
		wantOK      bool
	}{
		{
			name:        "structured company wins",
			profile:     Profile{Company: "Acme Corp", Headline: "VP of Sales at Initech"},
			wantCompany: "Acme Corp",
			wantOK:      true,
		},
		{
			name:        "at pattern in headline",
			profile:     Profile{Headline: "Jane Doe - VP of Sales at Acme"},
			wantCompany: "Acme",
			wantOK:      true,
		},
		{
			name:        "at-sign pattern",
			profile:     Profile{Headline: "Growth Marketer @ HubSpot"},
			wantCompany: "HubSpot",
			wantOK:      true,
		},
		{
			name:    "no employer in headline",
			profile: Profile{Headline: "Keynote speaker and author"},
			wantOK:  false,
		},
		{
			name:    "empty profile",
			profile: Profile{},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, ok := ExtractCompany(tt.profile)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCompany, company)
			}
		})
	}
}

func TestExtractSpecExample(t *testing.T) {
	p := Profile{Headline: "Jane Doe - VP of Sales at Acme"}

	title, ok := ExtractJobTitle(p)
	require.True(t, ok)
	assert.Contains(t, title, "VP of Sales")

	company, ok := ExtractCompany(p)
	require.True(t, ok)
	assert.Equal(t, "Acme", company)
}

func TestInferSeniority(t *testing.T) {
	tests := []struct {
		title  string
		want   Seniority
		wantOK bool
	}{
		{"CEO", SeniorityCLevel, true},
		{"Co-Founder & CTO", SeniorityCLevel, true},
		{"VP of Sales", SeniorityVP, true},
		{"Senior Vice President, Marketing", SeniorityVP, true},
		{"Director of Engineering", SeniorityDirector, true},
		{"Head of Growth", SeniorityDirector, true},
		{"Engineering Manager", SeniorityManager, true},
		{"Software Engineer", SeniorityIC, true},
		{"Data Analyst", SeniorityIC, true},
		{"", "", false},
		{"Passionate about life", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, ok := InferSeniority(tt.title)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
