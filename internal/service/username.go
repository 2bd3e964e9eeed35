package service

import (
	"regexp"
	"strconv"
	"strings"

	"coursecatalog/internal/identity"
)

// fallbackUsername is used when nothing usable survives sanitization.
const fallbackUsername = "user"

var disallowedUsernameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// DeriveUsername picks the base username for a new user: the provider
// username as given, else the lowercased local part of the primary email,
// else the lowercased first and last name joined.
func DeriveUsername(u identity.UserData) string {
	if u.Username != nil && strings.TrimSpace(*u.Username) != "" {
		return *u.Username
	}
	if email := u.PrimaryEmail(); email != "" {
		local, _, _ := strings.Cut(email, "@")
		return strings.ToLower(local)
	}
	var first, last string
	if u.FirstName != nil {
		first = *u.FirstName
	}
	if u.LastName != nil {
		last = *u.LastName
	}
	return strings.ToLower(first + last)
}

// SanitizeUsername strips every character outside [a-zA-Z0-9-_].
func SanitizeUsername(name string) string {
	name = disallowedUsernameChars.ReplaceAllString(name, "")
	if name == "" {
		return fallbackUsername
	}
	return name
}

// usernameCandidate returns base for attempt 0 and base-N afterwards.
func usernameCandidate(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt)
}
