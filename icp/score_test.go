package icp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func seniorityPtr(s Seniority) *Seniority { return &s }

func TestMatchesEmptyFilters(t *testing.T) {
	empty := Filters{}

	profiles := []Profile{
		{},
		{Headline: "VP of Sales at Acme"},
		{FullName: "No Headline", ProfileURL: "https://linkedin.com/in/nobody"},
	}

	for _, p := range profiles {
		assert.True(t, Matches(p, empty))
		assert.Equal(t, 100, Score(p, empty))
	}
}

func TestMatchesExcludedCompanyVeto(t *testing.T) {
	p := Profile{Headline: "Founder & CEO at Acme"}
	f := Filters{
		TitleKeywords:     []string{"founder"},
		ExcludedCompanies: []string{"acme"},
	}

	// Title keyword satisfied, but the excluded employer vetoes the match.
	assert.False(t, Matches(p, f))

	// Same profile without the veto matches.
	f.ExcludedCompanies = []string{"initech"}
	assert.True(t, Matches(p, f))
}

func TestMatchesAllCriteria(t *testing.T) {
	size := 40
	p := Profile{
		Headline:    "VP of Sales at Acme",
		Industry:    "B2B SaaS",
		CompanySize: &size,
	}
	f := Filters{
		TitleKeywords:     []string{"sales"},
		IndustryKeywords:  []string{"saas"},
		CompanySizeMin:    intPtr(10),
		CompanySizeMax:    intPtr(200),
		RequiredSeniority: seniorityPtr(SeniorityVP),
		ExcludedCompanies: []string{"initech"},
	}

	assert.True(t, Matches(p, f))
	assert.Equal(t, 100, Score(p, f))
}

func TestScoreMonotonic(t *testing.T) {
	size := 40
	p := Profile{
		Headline:    "VP of Sales at Acme",
		Industry:    "B2B SaaS",
		CompanySize: &size,
	}

	// Start with one satisfied criterion, then add more satisfied ones.
	// The score must never decrease.
	steps := []Filters{
		{TitleKeywords: []string{"sales"}},
		{TitleKeywords: []string{"sales"}, IndustryKeywords: []string{"saas"}},
		{TitleKeywords: []string{"sales"}, IndustryKeywords: []string{"saas"}, CompanySizeMin: intPtr(10)},
		{TitleKeywords: []string{"sales"}, IndustryKeywords: []string{"saas"}, CompanySizeMin: intPtr(10), RequiredSeniority: seniorityPtr(SeniorityVP)},
	}

	prev := 0
	for _, f := range steps {
		score := Score(p, f)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
	assert.Equal(t, 100, prev)
}

func TestScoreHighButExcluded(t *testing.T) {
	size := 40
	p := Profile{
		Headline:    "VP of Sales at Acme",
		Industry:    "B2B SaaS",
		CompanySize: &size,
	}
	f := Filters{
		TitleKeywords:     []string{"sales"},
		IndustryKeywords:  []string{"saas"},
		CompanySizeMin:    intPtr(10),
		ExcludedCompanies: []string{"acme"},
	}

	// Three of four criteria satisfied: high score, vetoed match.
	assert.Equal(t, 75, Score(p, f))
	assert.False(t, Matches(p, f))
}

func TestScoreHundredImpliesMatch(t *testing.T) {
	profiles := []Profile{
		{Headline: "Founder at Startup Co"},
		{Headline: "Jane Doe - VP of Sales at Acme"},
		{},
	}
	filters := []Filters{
		{},
		{TitleKeywords: []string{"founder"}},
		{TitleKeywords: []string{"founder"}, ExcludedCompanies: []string{"startup co"}},
		{RequiredSeniority: seniorityPtr(SeniorityVP)},
	}

	for _, p := range profiles {
		for _, f := range filters {
			if Score(p, f) == 100 {
				assert.True(t, Matches(p, f), "score 100 must imply a match")
			}
		}
	}
}

func TestScoreMalformedProfile(t *testing.T) {
	f := Filters{
		TitleKeywords:    []string{"founder"},
		CompanySizeMin:   intPtr(10),
		IndustryKeywords: []string{"saas"},
	}

	// A profile with nothing usable scores zero and does not match, but
	// never panics.
	assert.Equal(t, 0, Score(Profile{}, f))
	assert.False(t, Matches(Profile{}, f))
}

func TestFiltersIsEmpty(t *testing.T) {
	assert.True(t, Filters{}.IsEmpty())
	assert.False(t, Filters{TitleKeywords: []string{"founder"}}.IsEmpty())
	assert.False(t, Filters{CompanySizeMax: intPtr(50)}.IsEmpty())
	assert.False(t, Filters{RequiredSeniority: seniorityPtr(SeniorityIC)}.IsEmpty())
}
