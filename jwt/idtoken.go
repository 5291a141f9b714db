package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidIDToken wraps every ID token rejection.
var ErrInvalidIDToken = errors.New("invalid id token")

// DefaultIssuers are the issuer values Google places in ID tokens.
var DefaultIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Config controls ID token validation.
//
// With no VerifyKeys the signature is not checked; the token is trusted
// because it arrived directly from the token endpoint over TLS. Claims are
// validated either way.
type Config struct {
	ClientID     string
	Issuers      []string
	VerifyKeys   map[string][]byte
	Leeway       time.Duration
	RequireIAT   bool
	MaxFutureIAT time.Duration
	// Now overrides the validation clock; nil uses time.Now.
	Now func() time.Time
}

// IDClaims are the OpenID Connect claims Google issues.
type IDClaims struct {
	Email           string `json:"email,omitempty"`
	EmailVerified   bool   `json:"email_verified,omitempty"`
	Name            string `json:"name,omitempty"`
	GivenName       string `json:"given_name,omitempty"`
	FamilyName      string `json:"family_name,omitempty"`
	Picture         string `json:"picture,omitempty"`
	Locale          string `json:"locale,omitempty"`
	HostedDomain    string `json:"hd,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
	Nonce           string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// Parser validates ID tokens. It is safe for concurrent use.
type Parser struct {
	config Config
	keys   map[string]*rsa.PublicKey
	now    func() time.Time
}

// NewParser validates cfg and parses any verification keys.
func NewParser(cfg Config) (*Parser, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 5*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	if len(cfg.Issuers) == 0 {
		cfg.Issuers = DefaultIssuers
	}

	keys := make(map[string]*rsa.PublicKey, len(cfg.VerifyKeys))
	for kid, pemBytes := range cfg.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("verify key map contains empty kid")
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid rsa verify key for kid %q: %w", kid, err)
		}
		keys[kid] = key
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Parser{config: cfg, keys: keys, now: now}, nil
}

// Verifies reports whether signatures are checked.
func (p *Parser) Verifies() bool {
	return len(p.keys) > 0
}

// Parse validates an ID token and returns its claims.
func (p *Parser) Parse(tokenStr string) (*IDClaims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidIDToken)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(p.config.Leeway))
	}
	if p.config.RequireIAT {
		options = append(options, jwt.WithIssuedAt())
	}
	if p.config.ClientID != "" {
		options = append(options, jwt.WithAudience(p.config.ClientID))
	}

	claims := &IDClaims{}
	if p.Verifies() {
		parser := jwt.NewParser(options...)
		token, err := parser.ParseWithClaims(tokenStr, claims, p.keyFunc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
		}
		if !token.Valid {
			return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, jwt.ErrTokenInvalidClaims)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
		}
		if err := jwt.NewValidator(options...).Validate(claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
		}
	}

	if !p.knownIssuer(claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, claims.Issuer)
	}
	if claims.IssuedAt != nil && p.config.MaxFutureIAT > 0 {
		maxAllowed := p.now().Add(p.config.MaxFutureIAT)
		if claims.IssuedAt.Time.After(maxAllowed) {
			return nil, fmt.Errorf("%w: iat too far in the future", ErrInvalidIDToken)
		}
	}

	return claims, nil
}

func (p *Parser) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("missing kid")
	}
	key, ok := p.keys[kid]
	if !ok {
		return nil, errors.New("unknown kid")
	}
	return key, nil
}

func (p *Parser) knownIssuer(iss string) bool {
	for _, want := range p.config.Issuers {
		if iss == want {
			return true
		}
	}
	return false
}
