package security

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDClaims are the claims read from an identity-provider ID token
// (Firebase / Google securetoken style).
type IDClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

var errKidNotFound = errors.New("kid not found in JWKS")

// Fetcher verifies RS256 ID tokens against a provider's published JWKS.
// Keys are cached for TTL and refetched when expired or when an unknown kid
// shows up, at most once per MinRefresh. Inside that window unknown kids are
// answered from the cache.
type Fetcher struct {
	JWKSURL    string
	TTL        time.Duration
	MinRefresh time.Duration
	Issuer     string
	Audience   string

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expAt     time.Time
	lastFetch time.Time

	// serialises fetches so a burst of unknown kids costs one request
	refreshMu sync.Mutex

	http *http.Client
}

func NewFetcher(jwksURL string, ttl time.Duration, issuer, audience string) *Fetcher {
	return &Fetcher{
		JWKSURL:    jwksURL,
		TTL:        ttl,
		MinRefresh: 30 * time.Second,
		Issuer:     issuer,
		Audience:   audience,
		keys:       make(map[string]*rsa.PublicKey),
		http:       &http.Client{Timeout: 5 * time.Second},
	}
}

func (f *Fetcher) refresh(ctx context.Context) error {
	f.mu.Lock()
	f.lastFetch = time.Now()
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.JWKSURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks fetch: status %d", resp.StatusCode)
	}

	var doc JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("jwks decode: %w", err)
	}
	tmp := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		pk, err := k.RSAPublicKey()
		if err != nil {
			continue
		}
		tmp[k.Kid] = pk
	}
	f.mu.Lock()
	f.keys = tmp
	f.expAt = time.Now().Add(f.TTL)
	f.mu.Unlock()
	return nil
}

// lookup reports the cached key for kid, whether the cache is still within
// TTL, and whether a fetch happened within MinRefresh.
func (f *Fetcher) lookup(kid string) (pk *rsa.PublicKey, fresh, throttled bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	now := time.Now()
	pk = f.keys[kid]
	fresh = now.Before(f.expAt)
	throttled = !f.lastFetch.IsZero() && now.Sub(f.lastFetch) < f.MinRefresh
	return pk, fresh, throttled
}

func (f *Fetcher) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	pk, fresh, throttled := f.lookup(kid)
	if pk != nil && (fresh || throttled) {
		return pk, nil
	}
	if throttled {
		return nil, errKidNotFound
	}

	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()
	// another caller may have fetched while we waited
	pk, fresh, throttled = f.lookup(kid)
	if pk != nil && (fresh || throttled) {
		return pk, nil
	}
	if throttled {
		return nil, errKidNotFound
	}
	if err := f.refresh(ctx); err != nil {
		return nil, err
	}
	if pk, _, _ = f.lookup(kid); pk != nil {
		return pk, nil
	}
	return nil, errKidNotFound
}

func (f *Fetcher) ParseAndVerify(ctx context.Context, tokenStr string) (*IDClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, parts, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil || len(parts) != 3 {
		return nil, errors.New("bad token")
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("no kid")
	}
	pub, err := f.getKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	}
	if f.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(f.Issuer))
	}
	if f.Audience != "" {
		opts = append(opts, jwt.WithAudience(f.Audience))
	}
	claims := &IDClaims{}
	if _, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return pub, nil
	}, opts...); err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, errors.New("token has no email")
	}
	return claims, nil
}
