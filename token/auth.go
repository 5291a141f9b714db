package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDecode is returned when a token-endpoint response cannot be decoded.
var ErrDecode = errors.New("token response decode failed")

// TokenType is the access token type returned by the token endpoint.
type TokenType string

const (
	// TokenTypeBearer is the only token type issued for authorization-code grants.
	TokenTypeBearer TokenType = "Bearer"
)

// Auth is the token set of a signed-in user.
//
// Auth values are immutable once decoded: refreshes produce a new value via [Merge].
// An empty RefreshToken means the server did not issue one.
type Auth struct {
	AccessToken  string    `json:"access_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope"`
	TokenType    TokenType `json:"token_type"`
	IDToken      string    `json:"id_token"`
}

// tokenResponse is the wire shape of the token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    *int64 `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	IDToken      string `json:"id_token"`
}

// DecodeAuth decodes a token-endpoint response body.
//
// expires_in is a lifetime in seconds and is converted to an absolute expiry
// relative to now.
func DecodeAuth(data []byte, now time.Time) (*Auth, error) {
	var raw tokenResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if raw.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrDecode)
	}
	if raw.ExpiresIn == nil {
		return nil, fmt.Errorf("%w: missing expires_in", ErrDecode)
	}
	tokenType, err := parseTokenType(raw.TokenType)
	if err != nil {
		return nil, err
	}

	return &Auth{
		AccessToken:  raw.AccessToken,
		ExpiresAt:    now.Add(time.Duration(*raw.ExpiresIn) * time.Second),
		RefreshToken: raw.RefreshToken,
		Scope:        raw.Scope,
		TokenType:    tokenType,
		IDToken:      raw.IDToken,
	}, nil
}

func parseTokenType(v string) (TokenType, error) {
	if strings.EqualFold(v, string(TokenTypeBearer)) {
		return TokenTypeBearer, nil
	}
	return "", fmt.Errorf("%w: unsupported token_type %q", ErrDecode, v)
}

// Expired reports whether the access token is no longer usable at now.
// A positive leeway treats tokens as expired that early.
func (a *Auth) Expired(now time.Time, leeway time.Duration) bool {
	if a == nil {
		return true
	}
	return !now.Add(leeway).Before(a.ExpiresAt)
}

// HasRefreshToken reports whether a refresh token is present.
func (a *Auth) HasRefreshToken() bool {
	return a != nil && a.RefreshToken != ""
}

// Merge combines an existing token set with a freshly fetched one.
//
// The record with the later ExpiresAt wins every field, except that an absent
// refresh token falls back to the other record's. On equal expiry rhs wins.
func Merge(lhs, rhs Auth) Auth {
	latest, older := rhs, lhs
	if lhs.ExpiresAt.After(rhs.ExpiresAt) {
		latest, older = lhs, rhs
	}
	if latest.RefreshToken == "" {
		latest.RefreshToken = older.RefreshToken
	}
	return latest
}
