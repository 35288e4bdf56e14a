package security_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/radiostation-service/internal/security"
)

func writeTempRSA(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "rsa.pem")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k)}); err != nil {
		t.Fatal(err)
	}
	return k, path
}

func TestRS256_JWKSRoundTrip(t *testing.T) {
	_, activePath := writeTempRSA(t)
	km, err := security.NewKeyManager("kidA", activePath, "", "")
	if err != nil {
		t.Fatal(err)
	}

	tok, err := security.MakeAccessRS256(km, "u1", "u@example.com", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	keyfunc := func(tk *jwt.Token) (interface{}, error) {
		kid, _ := tk.Header["kid"].(string)
		if pk, ok := km.PublicByKid(kid); ok {
			return pk, nil
		}
		return nil, errors.New("no key by kid")
	}
	parsed, err := jwt.ParseWithClaims(tok, &security.Claims{}, keyfunc, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("invalid token: %v", err)
	}
	c := parsed.Claims.(*security.Claims)
	if c.UID != "u1" || c.Email != "u@example.com" {
		t.Fatalf("claims mismatch: %#v", c)
	}
}

func TestKeyManager_NextKeyPublished(t *testing.T) {
	_, activePath := writeTempRSA(t)
	_, nextPath := writeTempRSA(t)
	km, err := security.NewKeyManager("kidA", activePath, "kidN", nextPath)
	require.NoError(t, err)

	set := km.JWKS()
	require.Len(t, set.Keys, 2)
	for _, k := range set.Keys {
		pk, err := k.RSAPublicKey()
		require.NoError(t, err)
		want, ok := km.PublicByKid(k.Kid)
		require.True(t, ok)
		assert.True(t, want.Equal(pk))
	}
}

func TestLoadPrivateKeyPEM_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := security.LoadPrivateKeyPEM(filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not pem"), 0o600))
	_, err = security.LoadPrivateKeyPEM(garbage)
	assert.Error(t, err)

	other := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(other, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}}), 0o600))
	_, err = security.LoadPrivateKeyPEM(other)
	assert.ErrorContains(t, err, "unsupported key type")
}

func parseHS(secret, tok string) (*security.Claims, error) {
	c := &security.Claims{}
	_, err := jwt.ParseWithClaims(tok, c, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return c, err
}

// parseWithJWKS verifies the way a downstream service would: only through
// the published key set.
func parseWithJWKS(set security.JWKSet, tok string) (*security.Claims, error) {
	c := &security.Claims{}
	_, err := jwt.ParseWithClaims(tok, c, func(tk *jwt.Token) (interface{}, error) {
		kid, _ := tk.Header["kid"].(string)
		for _, k := range set.Keys {
			if k.Kid == kid {
				return k.RSAPublicKey()
			}
		}
		return nil, errors.New("unknown kid")
	}, jwt.WithValidMethods([]string{"RS256"}))
	return c, err
}

func TestIssuer_HS256(t *testing.T) {
	iss := security.NewHS256Issuer("s3cret", time.Minute)
	tok, err := iss.Issue("u1", "dj@example.com")
	require.NoError(t, err)

	c, err := parseHS("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, "u1", c.Subject)
	assert.Equal(t, "dj@example.com", c.Email)

	_, err = parseHS("other", tok)
	assert.Error(t, err)

	_, ok := iss.JWKS()
	assert.False(t, ok)
}

func TestIssuer_HS256Expired(t *testing.T) {
	iss := security.NewHS256Issuer("s3cret", -time.Minute)
	tok, err := iss.Issue("u1", "dj@example.com")
	require.NoError(t, err)
	_, err = parseHS("s3cret", tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssuer_RS256(t *testing.T) {
	_, activePath := writeTempRSA(t)
	km, err := security.NewKeyManager("kidA", activePath, "", "")
	require.NoError(t, err)
	iss := security.NewRS256Issuer(km, time.Minute)

	tok, err := iss.Issue("u2", "fm@example.com")
	require.NoError(t, err)

	set, ok := iss.JWKS()
	require.True(t, ok)
	require.Len(t, set.Keys, 1)
	assert.Equal(t, "kidA", set.Keys[0].Kid)

	c, err := parseWithJWKS(set, tok)
	require.NoError(t, err)
	assert.Equal(t, "fm@example.com", c.Email)

	// an HS256 token must not pass as RS256
	hs, err := security.MakeAccess("s3cret", "u2", "fm@example.com", time.Minute)
	require.NoError(t, err)
	_, err = parseWithJWKS(set, hs)
	assert.Error(t, err)
}
