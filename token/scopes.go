package token

import (
	"sort"
	"strings"
)

const (
	// ScopeProfile grants access to the basic profile.
	ScopeProfile = "profile"
	// ScopeEmail grants access to the email address.
	ScopeEmail = "email"
)

// ScopeSet is the set of OAuth scopes requested at sign-in.
//
// The mandatory profile and email scopes are toggled individually; custom
// scopes are unioned with them. The zero value requests nothing.
type ScopeSet struct {
	Profile bool
	Email   bool
	custom  map[string]struct{}
}

// NewScopeSet builds a set with the given default toggles and custom scopes.
func NewScopeSet(profile, email bool, custom ...string) ScopeSet {
	s := ScopeSet{Profile: profile, Email: email}
	for _, c := range custom {
		s.Add(c)
	}
	return s
}

// Add inserts a custom scope. Blank values and the two defaults are folded
// into the toggles.
func (s *ScopeSet) Add(scope string) {
	scope = strings.TrimSpace(scope)
	switch scope {
	case "":
		return
	case ScopeProfile:
		s.Profile = true
		return
	case ScopeEmail:
		s.Email = true
		return
	}
	if s.custom == nil {
		s.custom = make(map[string]struct{})
	}
	s.custom[scope] = struct{}{}
}

// Remove deletes a custom scope or disables a default.
func (s *ScopeSet) Remove(scope string) {
	switch scope {
	case ScopeProfile:
		s.Profile = false
	case ScopeEmail:
		s.Email = false
	default:
		delete(s.custom, scope)
	}
}

// HasProfileAccess reports whether the userinfo endpoint can return data.
func (s ScopeSet) HasProfileAccess() bool {
	return s.Profile || s.Email
}

// Len returns the number of requested scopes.
func (s ScopeSet) Len() int {
	return len(s.List())
}

// List returns the requested scopes: enabled defaults first, then custom
// scopes in sorted order.
func (s ScopeSet) List() []string {
	out := make([]string, 0, 2+len(s.custom))
	if s.Profile {
		out = append(out, ScopeProfile)
	}
	if s.Email {
		out = append(out, ScopeEmail)
	}
	custom := make([]string, 0, len(s.custom))
	for c := range s.custom {
		custom = append(custom, c)
	}
	sort.Strings(custom)
	return append(out, custom...)
}

// Clone returns an independent copy.
func (s ScopeSet) Clone() ScopeSet {
	out := ScopeSet{Profile: s.Profile, Email: s.Email}
	if len(s.custom) > 0 {
		out.custom = make(map[string]struct{}, len(s.custom))
		for c := range s.custom {
			out.custom[c] = struct{}{}
		}
	}
	return out
}

// RedirectScheme derives the custom URL scheme from a client id by reversing
// its dot-separated components: "com.example.app" becomes "app.example.com".
func RedirectScheme(clientID string) string {
	parts := strings.Split(clientID, ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}
