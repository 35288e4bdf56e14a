package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are carried by the session tokens this service issues.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func newClaims(uid, email string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		UID: uid, Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   uid,
		},
	}
}

func MakeAccess(secret, uid, email string, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims(uid, email, ttl))
	return t.SignedString([]byte(secret))
}

func MakeAccessRS256(km *KeyManager, uid, email string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, newClaims(uid, email, ttl))
	token.Header["kid"] = km.Active.Kid
	return token.SignedString(km.Active.Private)
}

// Issuer mints session tokens, HS256 or RS256 depending on how it was built.
// RS256 verification keys are published through JWKS.
type Issuer struct {
	secret []byte
	keys   *KeyManager
	ttl    time.Duration
}

func NewHS256Issuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func NewRS256Issuer(km *KeyManager, ttl time.Duration) *Issuer {
	return &Issuer{keys: km, ttl: ttl}
}

func (i *Issuer) Issue(uid, email string) (string, error) {
	if i.keys != nil {
		return MakeAccessRS256(i.keys, uid, email, i.ttl)
	}
	return MakeAccess(string(i.secret), uid, email, i.ttl)
}

// JWKS publishes the verification keys; ok is false for HS256 issuers.
func (i *Issuer) JWKS() (JWKSet, bool) {
	if i.keys == nil {
		return JWKSet{}, false
	}
	return i.keys.JWKS(), true
}
