package icp

import (
	"regexp"
	"strings"
)

// segmentRe splits a headline on the separators people put between the
// "who I am" and "where I work" parts: dashes, pipes and middle dots.
var segmentRe = regexp.MustCompile(`\s+[-–—|•·/]\s+`)

// companyRe captures the employer from a "Title at Company" style segment.
var companyRe = regexp.MustCompile(`(?i)(?:\bat\b|@)\s+(.+)$`)

// titleTokens are role words whose presence marks a headline segment as a
// job title. Matching is done on normalized text, so multi-word entries
// match as phrases and short entries match as whole words only.
var titleTokens = []string{
	"founder", "co-founder", "cofounder", "owner", "president",
	"ceo", "cto", "coo", "cfo", "cmo", "cro", "chief",
	"vp", "vice president", "svp", "evp",
	"director", "head",
	"manager", "lead", "principal", "partner",
	"engineer", "developer", "architect", "scientist",
	"consultant", "analyst", "designer", "strategist", "specialist",
	"recruiter", "advisor", "coach",
	"sales", "marketing", "growth", "product", "operations",
	"account executive", "sdr", "bdr",
}

// ExtractJobTitle returns the best-effort current job title for a profile.
// The structured title field wins when present; otherwise the headline is
// split into segments and the first segment carrying a recognizable role
// token is used, with any trailing "at Company" part removed. The second
// return value is false when no recognizable title was found.
func ExtractJobTitle(p Profile) (string, bool) {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t, true
	}

	headline := strings.TrimSpace(p.Headline)
	if headline == "" {
		return "", false
	}

	for _, segment := range segmentRe.Split(headline, -1) {
		candidate := strings.TrimSpace(segment)
		if candidate == "" {
			continue
		}
		// "VP of Sales at Acme" -> "VP of Sales"
		if loc := companyRe.FindStringIndex(candidate); loc != nil {
			candidate = strings.TrimSpace(candidate[:loc[0]])
		}
		if candidate == "" {
			continue
		}
		if containsTitleToken(candidate) {
			return candidate, true
		}
	}

	return "", false
}

// ExtractCompany returns the best-effort current employer for a profile.
// The structured company field wins; otherwise the headline is scanned for
// an "at Company" / "@ Company" tail. The second return value is false when
// no employer could be determined.
func ExtractCompany(p Profile) (string, bool) {
	if c := strings.TrimSpace(p.Company); c != "" {
		return c, true
	}

	headline := strings.TrimSpace(p.Headline)
	if headline == "" {
		return "", false
	}

	for _, segment := range segmentRe.Split(headline, -1) {
		if m := companyRe.FindStringSubmatch(strings.TrimSpace(segment)); m != nil {
			company := strings.Trim(strings.TrimSpace(m[1]), ".,;")
			if company != "" {
				return company, true
			}
		}
	}

	return "", false
}

// containsTitleToken reports whether the candidate carries any known role
// token as a whole word or phrase.
func containsTitleToken(candidate string) bool {
	normalized := " " + normalize(candidate) + " "
	for _, token := range titleTokens {
		if strings.Contains(normalized, " "+token+" ") {
			return true
		}
	}
	return false
}

// normalize lowercases and collapses anything that is not a letter, digit
// or hyphen to single spaces, so word-boundary checks are plain substring
// checks on space-padded text.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
