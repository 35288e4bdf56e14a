package security_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tazhibayda/radiostation-service/internal/security"
)

type stubIDP struct {
	claims *security.IDClaims
	err    error
	panic  bool
}

func (s stubIDP) ParseAndVerify(context.Context, string) (*security.IDClaims, error) {
	if s.panic {
		panic("provider exploded")
	}
	return s.claims, s.err
}

func TestTokenVerifier_NeverFails(t *testing.T) {
	p := newIDP(t)
	f := security.NewFetcher(p.srv.URL, time.Hour, testIssuer, testAudience)
	v := security.NewTokenVerifier(f, zaptest.NewLogger(t))

	claim, ok := v.Verify(context.Background(), p.sign(t, "dj@example.com", nil))
	require.True(t, ok)
	assert.Equal(t, "dj@example.com", claim.Email)

	for _, tok := range []string{"", "   ", "abc", "a.b.c", "Bearer x", p.sign(t, "dj@example.com", expired)} {
		assert.NotPanics(t, func() {
			c, ok := v.Verify(context.Background(), tok)
			assert.False(t, ok, "token %q", tok)
			assert.Empty(t, c.Email)
		})
	}
}

func TestTokenVerifier_ProviderFailures(t *testing.T) {
	cases := map[string]security.IdentityProvider{
		"error":     stubIDP{err: errors.New("unreachable")},
		"nil claim": stubIDP{},
		"panic":     stubIDP{panic: true},
	}
	for name, idp := range cases {
		t.Run(name, func(t *testing.T) {
			v := security.NewTokenVerifier(idp, nil)
			assert.NotPanics(t, func() {
				_, ok := v.Verify(context.Background(), "tok")
				assert.False(t, ok)
			})
		})
	}

	var nilVerifier *security.TokenVerifier
	_, ok := nilVerifier.Verify(context.Background(), "tok")
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		tok    string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"BEARER   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Bearer    ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Token abc", "", false},
		{"abc", "", false},
	}
	for _, c := range cases {
		tok, ok := security.BearerToken(c.header)
		assert.Equal(t, c.ok, ok, c.header)
		assert.Equal(t, c.tok, tok, c.header)
	}
}
