package handlers

import (
	"time"

	"mediscan/docs"
	"mediscan/internal/logger"
	"mediscan/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultMaxUploadBytes = 10 << 20

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	allowedOrigins []string
	maxUploadBytes int64
}

// Option customizes a Handler.
type Option func(*Handler)

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

// WithMaxUploadBytes caps the size of an uploaded image.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.corsMiddleware())
	router.MaxMultipartMemory = h.maxUploadBytes

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Session snapshots over WebSocket; the token may come as ?token=.
	router.GET("/ws", h.sessionMiddleware, h.wsConnect)

	return router
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(h.allowedOrigins) == 0 || (len(h.allowedOrigins) == 1 && h.allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.allowedOrigins
	}
	return cors.New(cfg)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/session", h.createSession)

		gated := auth.Group("", h.sessionMiddleware)
		gated.GET("/state", h.getState)
		// Body example: {"page":"signup"}
		gated.POST("/navigate", h.navigateGate)
		gated.POST("/sign-up", h.signUp)
		gated.POST("/sign-in", h.signIn)
		gated.POST("/logout", h.logout)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.sessionMiddleware)
	{
		api.POST("/navigate", h.navigate)
		api.POST("/risk", h.predictRisk)
		api.GET("/activity", h.getActivity)
		h.registerChatRoutes(api)
		h.registerImageRoutes(api)
	}
}

func (h *Handler) registerChatRoutes(api *gin.RouterGroup) {
	chat := api.Group("/chat")
	{
		chat.POST("", h.chat)
		chat.DELETE("", h.clearChat)
		chat.POST("/translate", h.translateChat)
		chat.GET("/speech", h.speakChat)
		chat.GET("/transcript", h.chatTranscript)
	}
}

func (h *Handler) registerImageRoutes(api *gin.RouterGroup) {
	image := api.Group("/image")
	{
		image.POST("", h.analyzeImage)
		image.DELETE("", h.clearImage)
		image.POST("/translate", h.translateImage)
		image.GET("/speech", h.speakImage)
		image.GET("/result", h.imageResult)
	}
}
