package models

import "strings"

// Profile is the authenticated user's account profile as returned by
// the backend.
type Profile struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	DateJoined string `json:"date_joined"`
	AvatarURL  string `json:"avatar,omitempty"`
}

// DisplayName returns the best human-readable name for the profile.
func (p Profile) DisplayName() string {
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full != "" {
		return full
	}
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}

// Initial returns the single-character avatar fallback, uppercased.
func (p Profile) Initial() string {
	source := p.Email
	if p.FirstName != "" {
		source = p.FirstName
	}
	if source == "" {
		return "U"
	}
	return strings.ToUpper(string([]rune(source)[0]))
}
