// Package videocall mints short-lived access tokens for the video-visit
// provider. Tokens follow the provider's access-token format: an HS256 JWT
// signed with an API key secret, carrying identity and room grants.
package videocall

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "screening/pkg/domain-errors"
)

const (
	// ContentType is the provider's access-token header value.
	ContentType = "twilio-fpa;v=1"

	DefaultTTL     = time.Hour
	maxTTL         = 24 * time.Hour
	maxFieldLength = 128
)

// Credentials identify the provider account and signing key.
type Credentials struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
}

// Complete reports whether every credential is set.
func (c Credentials) Complete() bool {
	return c.AccountSID != "" && c.APIKeySID != "" && c.APIKeySecret != ""
}

// VideoGrant scopes a token to one room.
type VideoGrant struct {
	Room string `json:"room,omitempty"`
}

// Grants is the provider's grant block.
type Grants struct {
	Identity string      `json:"identity"`
	Video    *VideoGrant `json:"video,omitempty"`
}

// Claims is the JWT payload.
type Claims struct {
	Grants Grants `json:"grants"`
	jwt.RegisteredClaims
}

// Token is a minted access token.
type Token struct {
	JWT       string
	Identity  string
	Room      string
	ExpiresAt time.Time
}

// Minter signs access tokens.
type Minter struct {
	creds Credentials
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Minter)

func WithClock(now func() time.Time) Option {
	return func(m *Minter) {
		m.now = now
	}
}

// NewMinter returns a Minter. A non-positive ttl uses DefaultTTL; ttl is
// capped at 24h, the provider's maximum.
func NewMinter(creds Credentials, ttl time.Duration, opts ...Option) *Minter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Minter{creds: creds, ttl: min(ttl, maxTTL), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mint issues a token for identity scoped to room.
func (m *Minter) Mint(identity, room string) (*Token, error) {
	if !m.creds.Complete() {
		return nil, dErrors.New(dErrors.CodeUnavailable, "video calls are not configured")
	}
	identity, err := normalizeField("identity", identity)
	if err != nil {
		return nil, err
	}
	room, err = normalizeField("room", room)
	if err != nil {
		return nil, err
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Grants: Grants{
			Identity: identity,
			Video:    &VideoGrant{Room: room},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        m.creds.APIKeySID + "-" + strconv.FormatInt(now.Unix(), 10),
			Issuer:    m.creds.APIKeySID,
			Subject:   m.creds.AccountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	token.Header["cty"] = ContentType

	signed, err := token.SignedString([]byte(m.creds.APIKeySecret))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign video token")
	}
	return &Token{JWT: signed, Identity: identity, Room: room, ExpiresAt: expiresAt}, nil
}

// Parse verifies a token signed by this Minter and returns its claims.
func (m *Minter) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(m.creds.APIKeySecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.creds.APIKeySID),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid video token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid video token claims")
	}
	return claims, nil
}

func normalizeField(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", dErrors.New(dErrors.CodeValidation, name+" is required")
	}
	if len(value) > maxFieldLength {
		return "", dErrors.New(dErrors.CodeValidation, name+" must be at most "+strconv.Itoa(maxFieldLength)+" characters")
	}
	return value, nil
}
