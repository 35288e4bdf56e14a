package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

// NewRouter wires the public API. traceService enables Datadog request spans
// when non-empty.
func NewRouter(h *Handler, v BearerVerifier, traceService string) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(h.Log))
	if traceService != "" {
		r.Use(gintrace.Middleware(traceService))
	}
	r.Use(RequestID(), Metrics(), Logger(h.Log), CORS())

	r.GET("/", h.Banner)
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/.well-known/jwks.json", h.JWKS)

	r.POST("/register", h.Register)
	r.GET("/login", h.Login)
	r.POST("/login", h.Login)

	r.GET("/radioStations", h.ListStations)
	r.POST("/radioStation", OptionalAuth(v), h.CreateStation)
	r.PUT("/radioStations", h.UpsertStation)
	return r
}
