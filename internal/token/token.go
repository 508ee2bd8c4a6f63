// Package token issues and verifies the signed bearer tokens: mail
// confirmation, access and refresh. Tokens carry a subject, a class and an
// expiry, never a role.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oggyb/nameless/internal/config"
)

// Class scopes a token to one use. It travels in the aud claim.
type Class string

const (
	Mail    Class = "mail"
	Access  Class = "access"
	Refresh Class = "refresh"
)

var (
	ErrInvalid = errors.New("token invalid")
	ErrExpired = errors.New("token expired")
)

// Service signs every class with one key and algorithm; only the TTL differs.
type Service struct {
	key    []byte
	method jwt.SigningMethod
	ttl    map[Class]time.Duration
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service. Only HMAC algorithms are accepted.
func NewService(secret, algorithm string, mailTTL, accessTTL, refreshTTL time.Duration, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported algorithm %q", algorithm)
	}

	s := &Service{
		key:    []byte(secret),
		method: method,
		ttl:    map[Class]time.Duration{Mail: mailTTL, Access: accessTTL, Refresh: refreshTTL},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromConfig builds a Service from the JWT section of cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Service, error) {
	return NewService(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.MailTTL, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, opts...)
}

// TTL returns the configured lifetime of class.
func (s *Service) TTL(class Class) time.Duration { return s.ttl[class] }

// Issue signs a token of class for subject.
func (s *Service) Issue(class Class, subject string) (string, error) {
	ttl, ok := s.ttl[class]
	if !ok || ttl <= 0 {
		return "", fmt.Errorf("token: no ttl for class %q", class)
	}
	if subject == "" {
		return "", errors.New("token: empty subject")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{string(class)},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify returns the subject of a token of class.
//
// ErrExpired when the expiry has passed; ErrInvalid for everything else
// (bad signature, wrong algorithm or class, malformed payload, no subject).
func (s *Service) Verify(class Class, raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalid
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithAudience(string(class)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	case claims.Subject == "":
		return "", ErrInvalid
	}
	return claims.Subject, nil
}
