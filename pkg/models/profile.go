package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxRepos is the number of repositories considered per profile.
const MaxRepos = 5

var wordChar = regexp.MustCompile(`\w`)

// Repo describes one public repository submitted for analysis.
type Repo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsFork      bool   `json:"isFork"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Stars       int    `json:"stars"`
	Language    string `json:"language,omitempty"`
	ForksCount  int    `json:"forksCount"`
	IsArchived  bool   `json:"isArchived"`
	OpenIssues  int    `json:"openIssues"`
}

// Profile is the analysis request payload: a GitHub account plus up to
// MaxRepos repositories and a two-letter output language code.
type Profile struct {
	Username    string `json:"username"`
	Name        string `json:"name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	CreatedAt   string `json:"createdAt"`
	Location    string `json:"location,omitempty"`
	PublicRepos int    `json:"publicRepos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	Repos       []Repo `json:"repos"`
	Language    string `json:"language"`
}

// ValidationError aggregates every schema violation found in a payload.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid profile: " + strings.Join(e.Violations, "; ")
}

// Key returns the normalized cache key for this profile's subject.
func (p *Profile) Key() string {
	return strings.ToLower(p.Username)
}

// Validate checks the profile against the schema. It returns a
// *ValidationError listing all violations, or nil when the payload is valid.
func (p *Profile) Validate() error {
	var v []string

	v = append(v, usernameViolations(p.Username)...)
	if utf8.RuneCountInString(p.Name) > 48 {
		v = append(v, "name exceeds 48 characters")
	}
	if utf8.RuneCountInString(p.Bio) > 160 {
		v = append(v, "bio exceeds 160 characters")
	}
	if utf8.RuneCountInString(p.Location) > 48 {
		v = append(v, "location exceeds 48 characters")
	}
	if !validTimestamp(p.CreatedAt) {
		v = append(v, fmt.Sprintf("createdAt %q is not a valid timestamp", p.CreatedAt))
	}
	if p.PublicRepos < 0 {
		v = append(v, "publicRepos is negative")
	}
	if p.Followers < 0 {
		v = append(v, "followers is negative")
	}
	if p.Following < 0 {
		v = append(v, "following is negative")
	}
	if len(p.Repos) > MaxRepos {
		v = append(v, fmt.Sprintf("repos exceeds %d entries", MaxRepos))
	}
	for i := range p.Repos {
		v = append(v, p.Repos[i].violations(i)...)
	}
	if utf8.RuneCountInString(p.Language) != 2 {
		v = append(v, "language must be exactly 2 characters")
	}

	if len(v) > 0 {
		return &ValidationError{Violations: v}
	}
	return nil
}

func (r *Repo) violations(i int) []string {
	var v []string
	if utf8.RuneCountInString(r.Description) > 350 {
		v = append(v, fmt.Sprintf("repos[%d]: description exceeds 350 characters", i))
	}
	if !validTimestamp(r.CreatedAt) {
		v = append(v, fmt.Sprintf("repos[%d]: createdAt %q is not a valid timestamp", i, r.CreatedAt))
	}
	if !validTimestamp(r.UpdatedAt) {
		v = append(v, fmt.Sprintf("repos[%d]: updatedAt %q is not a valid timestamp", i, r.UpdatedAt))
	}
	if r.Stars < 0 {
		v = append(v, fmt.Sprintf("repos[%d]: stars is negative", i))
	}
	if r.Language != "" {
		if utf8.RuneCountInString(r.Language) > 48 {
			v = append(v, fmt.Sprintf("repos[%d]: language exceeds 48 characters", i))
		}
		if !wordChar.MatchString(r.Language) {
			v = append(v, fmt.Sprintf("repos[%d]: language contains no word character", i))
		}
	}
	if r.ForksCount < 0 {
		v = append(v, fmt.Sprintf("repos[%d]: forksCount is negative", i))
	}
	if r.OpenIssues < 0 {
		v = append(v, fmt.Sprintf("repos[%d]: openIssues is negative", i))
	}
	return v
}

// usernameViolations applies the GitHub login rules: 2-39 characters from
// [A-Za-z0-9-], with no leading or trailing hyphen.
func usernameViolations(name string) []string {
	var v []string
	if len(name) < 2 || len(name) > 39 {
		v = append(v, "username must be 2-39 characters")
	}
	for _, c := range name {
		if !isUsernameChar(c) {
			v = append(v, fmt.Sprintf("username contains invalid character %q", c))
			break
		}
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		v = append(v, "username may not start or end with a hyphen")
	}
	return v
}

func isUsernameChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-':
		return true
	}
	return false
}

func validTimestamp(s string) bool {
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
