package icp

import "strings"

// Seniority buckets a job title into the coarse levels the ICP filter
// understands.
type Seniority string

const (
	SeniorityIC       Seniority = "ic"
	SeniorityManager  Seniority = "manager"
	SeniorityDirector Seniority = "director"
	SeniorityVP       Seniority = "vp"
	SeniorityCLevel   Seniority = "c_level"
)

// String returns the string representation of the seniority level
func (s Seniority) String() string {
	return string(s)
}

// Valid checks if the seniority level is valid
func (s Seniority) Valid() bool {
	switch s {
	case SeniorityIC, SeniorityManager, SeniorityDirector, SeniorityVP, SeniorityCLevel:
		return true
	default:
		return false
	}
}

var cLevelTokens = []string{
	"chief", "ceo", "cto", "coo", "cfo", "cmo", "cro", "ciso", "cpo",
	"founder", "co-founder", "cofounder", "owner", "president",
}

var vpTokens = []string{"vp", "svp", "evp", "vice president"}

var directorTokens = []string{"director", "head"}

var managerTokens = []string{"manager", "lead", "team lead"}

// InferSeniority buckets a free-text job title into a Seniority level.
// Higher levels win when a title carries several markers ("VP & GM",
// "Founder / CEO"). The second return value is false for an empty or
// unrecognizable title.
func InferSeniority(title string) (Seniority, bool) {
	normalized := " " + normalize(title) + " "
	if normalized == "  " {
		return "", false
	}

	hasAny := func(tokens []string) bool {
		for _, token := range tokens {
			if strings.Contains(normalized, " "+token+" ") {
				return true
			}
		}
		return false
	}

	switch {
	// VP before c-level: "vice president" must not hit the "president" token.
	case hasAny(vpTokens):
		return SeniorityVP, true
	case hasAny(cLevelTokens):
		return SeniorityCLevel, true
	case hasAny(directorTokens):
		return SeniorityDirector, true
	case hasAny(managerTokens):
		return SeniorityManager, true
	case containsTitleToken(title):
		return SeniorityIC, true
	default:
		return "", false
	}
}
