package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/token"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T, c *clock) *token.Service {
	t.Helper()
	s, err := token.NewService("secret", "HS256", time.Minute, 15*time.Minute, 24*time.Hour, token.WithClock(c.now))
	require.NoError(t, err)
	return s
}

func TestIssueVerify_PerClass(t *testing.T) {
	c := &clock{t: time.Now()}
	s := newService(t, c)

	for _, class := range []token.Class{token.Mail, token.Access, token.Refresh} {
		raw, err := s.Issue(class, "subject-1")
		require.NoError(t, err)

		sub, err := s.Verify(class, raw)
		require.NoError(t, err, class)
		assert.Equal(t, "subject-1", sub)
	}
}

func TestVerify_ClassMismatchIsInvalid(t *testing.T) {
	s := newService(t, &clock{t: time.Now()})

	raw, err := s.Issue(token.Refresh, "user-id")
	require.NoError(t, err)

	_, err = s.Verify(token.Access, raw)
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestVerify_Expired(t *testing.T) {
	c := &clock{t: time.Now()}
	s := newService(t, c)

	raw, err := s.Issue(token.Mail, "alice")
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)

	_, err = s.Verify(token.Mail, raw)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestVerify_Invalid(t *testing.T) {
	c := &clock{t: time.Now()}
	s := newService(t, c)

	raw, err := s.Issue(token.Access, "user-id")
	require.NoError(t, err)

	other, err := token.NewService("other-secret", "HS256", time.Minute, time.Minute, time.Minute, token.WithClock(c.now))
	require.NoError(t, err)
	_, err = other.Verify(token.Access, raw)
	assert.ErrorIs(t, err, token.ErrInvalid, "bad signature")

	_, err = s.Verify(token.Access, raw[:len(raw)-3]+"abc")
	assert.ErrorIs(t, err, token.ErrInvalid, "tampered")

	_, err = s.Verify(token.Access, "not-a-jwt")
	assert.ErrorIs(t, err, token.ErrInvalid, "malformed")

	_, err = s.Verify(token.Access, "")
	assert.ErrorIs(t, err, token.ErrInvalid, "empty")

	// signed with the right key but no subject
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{string(token.Access)},
		ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(token.Access, noSub)
	assert.ErrorIs(t, err, token.ErrInvalid, "missing subject")

	// right key, different HMAC algorithm
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-id",
		Audience:  jwt.ClaimStrings{string(token.Access)},
		ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(token.Access, hs512)
	assert.ErrorIs(t, err, token.ErrInvalid, "algorithm")
}

func TestNewService_RejectsBadSetup(t *testing.T) {
	_, err := token.NewService("", "HS256", time.Minute, time.Minute, time.Minute)
	assert.Error(t, err)

	_, err = token.NewService("k", "RS256", time.Minute, time.Minute, time.Minute)
	assert.Error(t, err)

	s, err := token.NewService("k", "HS256", 0, time.Minute, time.Minute)
	require.NoError(t, err)
	_, err = s.Issue(token.Mail, "x")
	assert.Error(t, err)
}
