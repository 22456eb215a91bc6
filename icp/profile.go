// Package icp implements pure, side-effect-free evaluation of scraped
// LinkedIn profiles against a workspace's Ideal Customer Profile criteria.
// Nothing in this package performs I/O; scraped input is untrusted and all
// functions degrade to zero values instead of failing.
package icp

// Profile is the normalized view of a scraped LinkedIn profile as returned
// by the harvest API. Structured fields are best-effort: depending on the
// endpoint the scraper may only return a display name and a free-text
// headline, so every field may be empty.
type Profile struct {
	FullName    string
	Headline    string
	Title       string // structured current position title, when present
	Company     string // structured current employer, when present
	CompanySize *int
	Industry    string
	Location    string
	ProfileURL  string
}
