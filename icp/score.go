package icp

import "strings"

// Filters is the per-workspace Ideal Customer Profile definition. An empty
// or unset criterion never excludes a profile; a completely empty Filters
// matches everything with a score of 100.
type Filters struct {
	TitleKeywords     []string   `json:"title_keywords,omitempty"`
	IndustryKeywords  []string   `json:"industry_keywords,omitempty"`
	ExcludedCompanies []string   `json:"excluded_companies,omitempty"`
	CompanySizeMin    *int       `json:"company_size_min,omitempty"`
	CompanySizeMax    *int       `json:"company_size_max,omitempty"`
	RequiredSeniority *Seniority `json:"required_seniority,omitempty"`
}

// IsEmpty reports whether no criterion is configured.
func (f Filters) IsEmpty() bool {
	return len(f.TitleKeywords) == 0 &&
		len(f.IndustryKeywords) == 0 &&
		len(f.ExcludedCompanies) == 0 &&
		f.CompanySizeMin == nil && f.CompanySizeMax == nil &&
		f.RequiredSeniority == nil
}

// criterion is one configured matching rule evaluated against a profile.
type criterion struct {
	configured bool
	satisfied  bool
}

// evaluate runs all five criteria. Unconfigured criteria come back with
// configured=false and are vacuously true for matching purposes.
func evaluate(p Profile, f Filters) []criterion {
	title, hasTitle := ExtractJobTitle(p)
	company, hasCompany := ExtractCompany(p)

	crits := make([]criterion, 0, 5)

	// Job title keywords: OR match against the extracted title.
	crits = append(crits, criterion{
		configured: len(f.TitleKeywords) > 0,
		satisfied:  hasTitle && anyKeywordMatches(title, f.TitleKeywords),
	})

	// Industry keywords: structured industry preferred, headline fallback.
	industryText := p.Industry
	if strings.TrimSpace(industryText) == "" {
		industryText = p.Headline
	}
	crits = append(crits, criterion{
		configured: len(f.IndustryKeywords) > 0,
		satisfied:  anyKeywordMatches(industryText, f.IndustryKeywords),
	})

	// Company size range: either bound may be open.
	sizeConfigured := f.CompanySizeMin != nil || f.CompanySizeMax != nil
	sizeSatisfied := false
	if sizeConfigured && p.CompanySize != nil {
		sizeSatisfied = (f.CompanySizeMin == nil || *p.CompanySize >= *f.CompanySizeMin) &&
			(f.CompanySizeMax == nil || *p.CompanySize <= *f.CompanySizeMax)
	}
	crits = append(crits, criterion{configured: sizeConfigured, satisfied: sizeSatisfied})

	// Required seniority: inferred from the extracted title.
	senioritySatisfied := false
	if f.RequiredSeniority != nil && hasTitle {
		if level, ok := InferSeniority(title); ok {
			senioritySatisfied = level == *f.RequiredSeniority
		}
	}
	crits = append(crits, criterion{configured: f.RequiredSeniority != nil, satisfied: senioritySatisfied})

	// Excluded companies: satisfied when the profile is NOT at an excluded
	// employer. An unknown employer cannot be excluded.
	excludedSatisfied := true
	if hasCompany {
		for _, excl := range f.ExcludedCompanies {
			if keywordMatches(company, excl) {
				excludedSatisfied = false
				break
			}
		}
	}
	crits = append(crits, criterion{configured: len(f.ExcludedCompanies) > 0, satisfied: excludedSatisfied})

	return crits
}

// Matches reports whether the profile satisfies every configured criterion.
// Matching any excluded company forces false regardless of the rest; with
// nothing configured every profile matches.
func Matches(p Profile, f Filters) bool {
	for _, c := range evaluate(p, f) {
		if c.configured && !c.satisfied {
			return false
		}
	}
	return true
}

// Score computes the 0-100 weighted match score. Each configured criterion
// contributes an equal share of 100; unconfigured criteria are excluded
// from the denominator. A score of 100 implies Matches is true. A profile
// can score high on soft criteria and still be vetoed by an excluded
// company, which is exactly what the dashboard surfaces as "82% match,
// but excluded".
func Score(p Profile, f Filters) int {
	configured, satisfied := 0, 0
	for _, c := range evaluate(p, f) {
		if !c.configured {
			continue
		}
		configured++
		if c.satisfied {
			satisfied++
		}
	}
	if configured == 0 {
		// No filter set configured means match everything.
		return 100
	}
	return satisfied * 100 / configured
}

// anyKeywordMatches reports whether any keyword matches the text.
func anyKeywordMatches(text string, keywords []string) bool {
	for _, kw := range keywords {
		if keywordMatches(text, kw) {
			return true
		}
	}
	return false
}

// keywordMatches is the case-insensitive substring match used by all
// keyword criteria, applied to normalized text so "founder" matches
// "Co-Founder & CEO" and "Acme" matches "Acme Corp".
func keywordMatches(text, keyword string) bool {
	kw := normalize(keyword)
	if kw == "" {
		return false
	}
	return strings.Contains(normalize(text), kw)
}
