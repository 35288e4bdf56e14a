package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/radiostation-service/internal/auth"
	"github.com/tazhibayda/radiostation-service/internal/domain"
	"github.com/tazhibayda/radiostation-service/internal/helper"
	"github.com/tazhibayda/radiostation-service/internal/log"
	"github.com/tazhibayda/radiostation-service/internal/metrics"
	"github.com/tazhibayda/radiostation-service/internal/queue"
	"github.com/tazhibayda/radiostation-service/internal/repo"
	"github.com/tazhibayda/radiostation-service/internal/security"
)

const banner = "radio station directory"

type StationStore interface {
	ListStations(ctx context.Context) ([]domain.Station, error)
	InsertStation(ctx context.Context, st domain.Station) (*repo.InsertResult, error)
	UpsertStation(ctx context.Context, st domain.Station) (*repo.UpsertResult, error)
}

// StationCache holds the station listing. Implementations must tolerate a
// nil receiver; *repo.StationCache does.
type StationCache interface {
	Get(ctx context.Context) ([]domain.Station, int64, bool, error)
	Set(ctx context.Context, ver int64, list []domain.Station) error
	Invalidate(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// KeySource publishes the session-token verification keys, if any.
type KeySource interface {
	JWKS() (security.JWKSet, bool)
}

type Handler struct {
	Auth     *auth.Service
	Stations StationStore
	Cache    StationCache
	Events   queue.Publisher
	Keys     KeySource
	Health   map[string]Pinger
	Log      *zap.Logger
}

func NewHandler(svc *auth.Service, stations StationStore, cache StationCache, pub queue.Publisher, keys KeySource, l *zap.Logger) *Handler {
	if pub == nil {
		pub = queue.NewNoop()
	}
	if cache == nil {
		cache = (*repo.StationCache)(nil)
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Handler{
		Auth:     svc,
		Stations: stations,
		Cache:    cache,
		Events:   pub,
		Keys:     keys,
		Health:   map[string]Pinger{},
		Log:      l,
	}
}

func (h *Handler) logger(c *gin.Context) *zap.Logger {
	return log.WithDD(c.Request.Context(), h.Log, zap.String("request_id", c.GetString(requestIDKey)))
}

// publish sends the event in the background; a broker failure never reaches the client.
func (h *Handler) publish(c *gin.Context, key string, event any) {
	ctx := context.WithoutCancel(c.Request.Context())
	reqID := c.GetString(requestIDKey)
	l := h.logger(c)
	go func() {
		if err := h.Events.Publish(ctx, key, event, reqID); err != nil {
			l.Warn("publish event", zap.String("key", key), zap.Error(err))
		}
	}()
}

type credentialsReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Banner godoc
// @Summary Service banner
// @Tags meta
// @Produce plain
// @Success 200 {string} string
// @Router / [get]
func (h *Handler) Banner(c *gin.Context) {
	c.String(http.StatusOK, banner)
}

// Register godoc
// @Summary Register user
// @Description Creates an account and returns a session token. Extra body fields are ignored.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body credentialsReq true "email and password"
// @Success 201 {object} auth.Result
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /register [post]
func (h *Handler) Register(c *gin.Context) {
	var in credentialsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var res *auth.Result
	err := withSpan(c.Request.Context(), "auth.register", func(ctx context.Context) error {
		var err error
		res, err = h.Auth.Register(ctx, auth.Credentials{Email: in.Email, Password: in.Password})
		return err
	})
	if err != nil {
		h.authError(c, "register", in.Email, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()
	h.logger(c).Info("user registered", zap.String("email_h", helper.Hash8(res.User.Email)))
	h.publish(c, queue.KeyUserRegistered, queue.UserRegistered{
		UserID: res.User.ID, Email: res.User.Email, At: time.Now().UTC(),
	})
	c.JSON(http.StatusCreated, res)
}

// Login godoc
// @Summary Login
// @Description Credentials come from a JSON body when one is sent, otherwise from the query string.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body credentialsReq false "email and password"
// @Param email query string false "email"
// @Param password query string false "password"
// @Success 200 {object} auth.Result
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /login [get]
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var in credentialsReq
	if c.Request.ContentLength != 0 && c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&in); err != nil {
			metrics.AuthAttempts.WithLabelValues("login", "bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	if in.Email == "" {
		in.Email = c.Query("email")
	}
	if in.Password == "" {
		in.Password = c.Query("password")
	}

	var res *auth.Result
	err := withSpan(c.Request.Context(), "auth.login", func(ctx context.Context) error {
		var err error
		res, err = h.Auth.Login(ctx, auth.Credentials{Email: in.Email, Password: in.Password})
		return err
	})
	if err != nil {
		h.authError(c, "login", in.Email, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	h.publish(c, queue.KeyUserLoggedIn, queue.UserLoggedIn{
		UserID: res.User.ID, Email: res.User.Email, At: time.Now().UTC(),
	})
	c.JSON(http.StatusOK, res)
}

// authError maps auth failures onto the response. Unknown accounts and wrong
// passwords share ErrInvalidCredentials and therefore one response.
func (h *Handler) authError(c *gin.Context, flow, email string, err error) {
	l := h.logger(c).With(zap.String("flow", flow), zap.String("email_h", helper.Hash8(email)))
	switch {
	case errors.Is(err, auth.ErrDuplicateAccount):
		metrics.AuthAttempts.WithLabelValues(flow, "duplicate").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": auth.ErrDuplicateAccount.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.AuthAttempts.WithLabelValues(flow, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": auth.ErrInvalidCredentials.Error()})
	case errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, auth.ErrPasswordTooLong):
		metrics.AuthAttempts.WithLabelValues(flow, "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		metrics.AuthAttempts.WithLabelValues(flow, "error").Inc()
		l.Error("auth flow failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ListStations godoc
// @Summary List stations
// @Tags stations
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /radioStations [get]
func (h *Handler) ListStations(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list     []domain.Station
		ver      int64
		hit      bool
		cacheErr error
	)
	_ = withSpan(ctx, "cache.stations.get", func(ctx context.Context) error {
		list, ver, hit, cacheErr = h.Cache.Get(ctx)
		if cacheErr != nil {
			h.logger(c).Warn("station cache read", zap.Error(cacheErr))
		}
		return cacheErr
	})
	if hit {
		c.Header("X-Cache", "hit")
		c.JSON(http.StatusOK, list)
		return
	}

	list, err := h.Stations.ListStations(ctx)
	if err != nil {
		h.logger(c).Error("list stations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	// without a version the write could shadow a newer listing
	if cacheErr == nil {
		if err := h.Cache.Set(ctx, ver, list); err != nil {
			h.logger(c).Warn("station cache write", zap.Error(err))
		}
	}
	c.Header("X-Cache", "miss")
	c.JSON(http.StatusOK, list)
}

func bindStation(c *gin.Context) (domain.Station, bool) {
	var st domain.Station
	if err := c.ShouldBindJSON(&st); err != nil || st == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return nil, false
	}
	return st, true
}

// CreateStation godoc
// @Summary Create station
// @Description A bearer token is checked when present; anonymous callers are accepted.
// @Tags stations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body map[string]interface{} true "station document"
// @Success 200 {object} repo.InsertResult
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /radioStation [post]
func (h *Handler) CreateStation(c *gin.Context) {
	st, ok := bindStation(c)
	if !ok {
		return
	}
	id := auth.IdentityFrom(c.Request.Context())
	key, _ := st.Key()

	res, err := h.Stations.InsertStation(c.Request.Context(), st)
	if err != nil {
		h.logger(c).Error("insert station", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.invalidate(c)

	by := "anonymous"
	if !id.IsAnonymous() {
		by = helper.Hash8(id.Email())
	}
	h.logger(c).Info("station created", zap.Any("inserted_id", res.InsertedID), zap.String("by", by))
	h.publish(c, queue.KeyStationCreated, queue.StationCreated{
		InsertedID: res.InsertedID, StationID: key, By: id.Email(), At: time.Now().UTC(),
	})
	c.JSON(http.StatusOK, res)
}

// UpsertStation godoc
// @Summary Insert or update station by id
// @Tags stations
// @Accept json
// @Produce json
// @Param payload body map[string]interface{} true "station document with id"
// @Success 200 {object} repo.UpsertResult
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /radioStations [put]
func (h *Handler) UpsertStation(c *gin.Context) {
	st, ok := bindStation(c)
	if !ok {
		return
	}
	key, ok := st.Key()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	res, err := h.Stations.UpsertStation(c.Request.Context(), st)
	if errors.Is(err, repo.ErrMissingStationID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if err != nil {
		h.logger(c).Error("upsert station", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.invalidate(c)

	h.publish(c, queue.KeyStationUpserted, queue.StationUpserted{
		StationID: key, Inserted: res.UpsertedCount > 0, Modified: res.ModifiedCount, At: time.Now().UTC(),
	})
	c.JSON(http.StatusOK, res)
}

func (h *Handler) invalidate(c *gin.Context) {
	if err := h.Cache.Invalidate(c.Request.Context()); err != nil {
		h.logger(c).Warn("station cache invalidate", zap.Error(err))
	}
}

// JWKS godoc
// @Summary Session token verification keys
// @Tags auth
// @Produce json
// @Success 200 {object} security.JWKSet
// @Failure 404 {object} map[string]string
// @Router /.well-known/jwks.json [get]
func (h *Handler) JWKS(c *gin.Context) {
	if h.Keys == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	set, ok := h.Keys.JWKS()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, set)
}

// Healthz godoc
// @Summary Dependency health
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	status, code := "ok", http.StatusOK
	deps := gin.H{}
	for name, p := range h.Health {
		if err := p.Ping(c.Request.Context()); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "deps": deps})
}
