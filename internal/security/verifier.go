package security

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tazhibayda/radiostation-service/internal/metrics"
)

// IdentityProvider checks an externally issued ID token.
type IdentityProvider interface {
	ParseAndVerify(ctx context.Context, token string) (*IDClaims, error)
}

// AuthClaim is the caller identity extracted from a verified bearer token.
// It lives for one request and is never stored.
type AuthClaim struct {
	Email   string
	Subject string
}

// TokenVerifier turns a bearer token into an AuthClaim on a best-effort basis:
// every failure, including a panicking provider, yields ok=false.
type TokenVerifier struct {
	idp IdentityProvider
	log *zap.Logger
}

func NewTokenVerifier(idp IdentityProvider, l *zap.Logger) *TokenVerifier {
	if l == nil {
		l = zap.NewNop()
	}
	return &TokenVerifier{idp: idp, log: l}
}

func (v *TokenVerifier) Verify(ctx context.Context, token string) (claim AuthClaim, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v.log.Warn("bearer verification panicked", zap.Any("panic", r))
			metrics.BearerVerifications.WithLabelValues("error").Inc()
			claim, ok = AuthClaim{}, false
		}
	}()

	if v == nil || v.idp == nil || strings.TrimSpace(token) == "" {
		metrics.BearerVerifications.WithLabelValues("absent").Inc()
		return AuthClaim{}, false
	}
	c, err := v.idp.ParseAndVerify(ctx, token)
	if err != nil || c == nil {
		v.log.Debug("bearer token rejected", zap.Error(err))
		metrics.BearerVerifications.WithLabelValues("rejected").Inc()
		return AuthClaim{}, false
	}
	metrics.BearerVerifications.WithLabelValues("ok").Inc()
	return AuthClaim{Email: c.Email, Subject: c.Subject}, true
}

// BearerToken extracts the token from an Authorization header value. Only the
// "Bearer" scheme is accepted.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
