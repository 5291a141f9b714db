package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSignIn/token"
)

const (
	recordFormatVersionCurrent = 1
)

// CurrentSchemaVersion is the record format written by this package.
const CurrentSchemaVersion = recordFormatVersionCurrent

// ErrCorruptRecord is returned when a persisted record cannot be decoded.
var ErrCorruptRecord = errors.New("store: corrupt record")

// EncodeAuth serializes an Auth record with a leading format version byte.
func EncodeAuth(a *token.Auth) ([]byte, error) {
	if a == nil {
		return nil, errors.New("store: nil auth")
	}
	return encode(a)
}

// DecodeAuth parses a record produced by [EncodeAuth].
func DecodeAuth(data []byte) (*token.Auth, error) {
	var a token.Auth
	if err := decode(data, &a); err != nil {
		return nil, err
	}
	if a.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrCorruptRecord)
	}
	return &a, nil
}

// EncodeUser serializes a User record with a leading format version byte.
func EncodeUser(u *token.User) ([]byte, error) {
	if u == nil {
		return nil, errors.New("store: nil user")
	}
	return encode(u)
}

// DecodeUser parses a record produced by [EncodeUser].
func DecodeUser(data []byte) (*token.User, error) {
	var u token.User
	if err := decode(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, recordFormatVersionCurrent)
	return append(out, payload...), nil
}

func decode(data []byte, v any) error {
	if len(data) < 2 {
		return fmt.Errorf("%w: short record", ErrCorruptRecord)
	}
	switch data[0] {
	case recordFormatVersionCurrent:
	default:
		return fmt.Errorf("%w: unsupported format version %d", ErrCorruptRecord, data[0])
	}
	if err := json.Unmarshal(data[1:], v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}
