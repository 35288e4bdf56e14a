package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tazhibayda/radiostation-service/internal/auth"
	"github.com/tazhibayda/radiostation-service/internal/domain"
	httpapi "github.com/tazhibayda/radiostation-service/internal/http"
	"github.com/tazhibayda/radiostation-service/internal/repo"
	"github.com/tazhibayda/radiostation-service/internal/security"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
}

func (m *memUsers) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return repo.ErrEmailExists
	}
	u.ID = primitive.NewObjectID()
	m.byEmail[u.Email] = *u
	return nil
}

// memStations mimics insertOne/updateOne(upsert) on a slice.
type memStations struct {
	mu    sync.Mutex
	docs  []domain.Station
	err   error
	panic bool
	// afterList runs once the snapshot is taken, outside the lock.
	afterList func()
}

func (m *memStations) ListStations(context.Context) ([]domain.Station, error) {
	m.mu.Lock()
	if m.panic {
		m.mu.Unlock()
		panic("cursor exploded")
	}
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	out := make([]domain.Station, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *memStations) InsertStation(_ context.Context, st domain.Station) (*repo.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	oid := primitive.NewObjectID()
	doc := domain.Station{"_id": oid}
	for k, v := range st {
		doc[k] = v
	}
	m.docs = append(m.docs, doc)
	return &repo.InsertResult{Acknowledged: true, InsertedID: oid}, nil
}

func (m *memStations) UpsertStation(_ context.Context, st domain.Station) (*repo.UpsertResult, error) {
	key, ok := st.Key()
	if !ok {
		return nil, repo.ErrMissingStationID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.docs {
		if fmt.Sprint(d["id"]) == fmt.Sprint(key) {
			for k, v := range st.Fields() {
				d[k] = v
			}
			return &repo.UpsertResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	oid := primitive.NewObjectID()
	doc := st.Fields()
	doc["_id"] = oid
	m.docs = append(m.docs, doc)
	return &repo.UpsertResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: oid}, nil
}

func (m *memStations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type memCache struct {
	mu          sync.Mutex
	lists       map[int64][]domain.Station
	ver         int64
	getErr      error
	invalidated int
}

func (c *memCache) Get(context.Context) ([]domain.Station, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	list, ok := c.lists[c.ver]
	return list, c.ver, ok, nil
}

func (c *memCache) Set(_ context.Context, ver int64, list []domain.Station) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lists == nil {
		c.lists = map[int64][]domain.Station{}
	}
	c.lists[ver] = list
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ver++
	c.invalidated++
	return nil
}

type published struct {
	Key   string
	Event any
	ReqID string
}

type recordingPub struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPub) Publish(_ context.Context, key string, event any, reqID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{Key: key, Event: event, ReqID: reqID})
	return p.err
}

func (p *recordingPub) Close() error { return nil }

func (p *recordingPub) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Key)
	}
	return out
}

func (p *recordingPub) last() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgs[len(p.msgs)-1]
}

// stubVerifier accepts exactly one token.
type stubVerifier struct {
	good  string
	email string
	calls int
	mu    sync.Mutex
}

func (v *stubVerifier) Verify(_ context.Context, tok string) (security.AuthClaim, bool) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	if tok == v.good {
		return security.AuthClaim{Email: v.email, Subject: "uid-1"}, true
	}
	return security.AuthClaim{}, false
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

const testSecret = "test-secret"

func parseSession(tok string) (*security.Claims, error) {
	c := &security.Claims{}
	_, err := jwt.ParseWithClaims(tok, c, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return c, err
}

type testEnv struct {
	T        *testing.T
	Users    *memUsers
	Stations *memStations
	Cache    *memCache
	Pub      *recordingPub
	Verifier *stubVerifier
	Issuer   *security.Issuer
	Handler  *httpapi.Handler
	Router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memUsers{byEmail: map[string]domain.User{}}
	iss := security.NewHS256Issuer(testSecret, time.Hour)
	svc := auth.NewService(users, security.NewHasher(bcrypt.MinCost), iss)

	env := &testEnv{
		T:        t,
		Users:    users,
		Stations: &memStations{},
		Cache:    &memCache{},
		Pub:      &recordingPub{},
		Verifier: &stubVerifier{good: "good-token", email: "dj@example.com"},
		Issuer:   iss,
	}
	env.Handler = httpapi.NewHandler(svc, env.Stations, env.Cache, env.Pub, iss, zap.NewNop())
	env.Handler.Health["mongo"] = pingerFunc(func(context.Context) error { return nil })
	env.Router = httpapi.NewRouter(env.Handler, env.Verifier, "")
	return env
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

var errDB = errors.New("server selection timeout")
