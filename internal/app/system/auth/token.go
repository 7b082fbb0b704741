package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenConfig holds bearer-token signing parameters shared by the server
// and the tools that mint tokens for it.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenClaims is the payload carried by a bearer token. Role and Name are
// hints only; LoadSessionUser replaces them with the live user record when
// a UserFetcher is configured.
type TokenClaims struct {
	Subject   string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// ErrMissingToken is returned when no token was supplied.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// IssueToken signs an HS256 token for subject.
func IssueToken(cfg TokenConfig, subject, name, role string, now time.Time) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("token secret is empty")
	}
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("token subject is empty")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"iss":  cfg.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"name": name,
		"role": role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// ParseToken validates a token and returns its claims.
func ParseToken(token string, cfg TokenConfig) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		Subject:   subject,
		Name:      name,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}
