package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims follows the Supabase access token layout so both providers issue
// tokens the same middleware can verify.
type Claims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role"` // "authenticated" for signed-in users
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

func (c *Claims) FullName() string {
	if c.UserMetadata == nil {
		return ""
	}
	s, _ := c.UserMetadata["full_name"].(string)
	return s
}

type TokenConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional
	TTL      time.Duration
}

var (
	ErrMissingSecret = errors.New("jwt secret is not set")
	ErrTokenIssuer   = errors.New("invalid token issuer")
	ErrTokenAudience = errors.New("invalid token audience")
	ErrTokenSubject  = errors.New("missing subject")
)

// ParseToken verifies an HS256 access token and returns its claims.
func ParseToken(cfg TokenConfig, raw string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if tok == nil || !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, ErrTokenIssuer
	}
	if cfg.Audience != "" {
		ok := false
		for _, aud := range claims.Audience {
			if aud == cfg.Audience {
				ok = true
				break
			}
		}
		if !ok {
			return nil, ErrTokenAudience
		}
	}
	if claims.Subject == "" {
		return nil, ErrTokenSubject
	}
	return claims, nil
}

// IssueToken signs an access token for u.
func IssueToken(cfg TokenConfig, u User, now time.Time) (string, time.Time, error) {
	if cfg.Secret == "" {
		return "", time.Time{}, ErrMissingSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:        u.Email,
		Role:         "authenticated",
		UserMetadata: map[string]any{"full_name": u.FullName},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
