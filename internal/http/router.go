package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"healthmate/internal/observability"
	"healthmate/internal/service"
)

// RouterOptions agrupa los ajustes transversales del router.
type RouterOptions struct {
	CORSOrigins     []string
	ChatRequireAuth bool
	MaxBodyBytes    int64
	// Prom y Gatherer habilitan /metrics y la instrumentacion HTTP.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	// TracingService activa otelgin con ese nombre de servicio.
	TracingService string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	chatH *ChatHandler,
	analysisH *AnalysisHandler,
	healthH *HealthHandler,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()

	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery())
	if opts.TracingService != "" {
		r.Use(otelgin.Middleware(opts.TracingService))
	}
	if opts.Prom != nil {
		r.Use(opts.Prom.GinHandleMiddleware())
	}
	r.Use(corsMiddleware(opts.CORSOrigins), securityHeadersMiddleware(), maxBodyBytesMiddleware(opts.MaxBodyBytes))

	r.GET("/healthz", healthH.Healthz)
	r.GET("/readyz", healthH.Readyz)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := JWTAuthMiddleware(jwtSvc)
	// guarded antepone el JWT a las rutas de chat y analisis si esta habilitado.
	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if opts.ChatRequireAuth {
			return []gin.HandlerFunc{authMW, h}
		}
		return []gin.HandlerFunc{h}
	}

	api := r.Group("/api")
	api.POST("/register", userH.Register)
	api.POST("/login", userH.Login)
	api.GET("/me", authMW, userH.Me)
	api.POST("/gemini-analyze", guarded(analysisH.Analyze)...)

	chats := api.Group("/chat")
	chats.POST("/save", guarded(chatH.Save)...)
	chats.GET("/history/:userId", guarded(chatH.History)...)
	chats.GET("/list/:userId", guarded(chatH.List)...)

	// Ruta historica usada por el frontend original.
	r.POST("/chat/save", guarded(chatH.Save)...)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Not found")
	})

	return r
}
