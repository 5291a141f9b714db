package token

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// User is the Google userinfo profile of the signed-in account.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	VerifiedEmail bool   `json:"verified_email,omitempty"`
	FullName      string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
	HostedDomain  string `json:"hd,omitempty"`
}

// DecodeUser decodes a userinfo response. A JSON null body yields (nil, nil).
func DecodeUser(data []byte) (*User, error) {
	var user *User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return user, nil
}

// Name returns the display name.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	return u.FullName
}

// PictureURL parses the profile picture location. It returns (nil, nil) when
// the profile has no picture.
func (u *User) PictureURL() (*url.URL, error) {
	if u == nil || u.Picture == "" {
		return nil, nil
	}
	return url.Parse(u.Picture)
}
