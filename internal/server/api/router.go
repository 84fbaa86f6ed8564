// Package api is the HTTP transport: a gin router translating requests into
// orchestrator calls and orchestrator outcomes into status codes.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/ratelimit"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports entity store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Users          *services.UserService
	Files          *services.FileService
	Folders        *services.FolderService
	Health         Pinger
	Logger         logging.Logger
	MaxUploadBytes int64
	// Limiter guards login and registration; nil disables it.
	Limiter *ratelimit.Limiter
}

type Handler struct {
	users          *services.UserService
	files          *services.FileService
	folders        *services.FolderService
	health         Pinger
	logger         logging.Logger
	maxUploadBytes int64
}

// NewRouter builds the gin engine serving the REST API.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger.With("module", "http")
	h := &Handler{
		users:          opts.Users,
		files:          opts.Files,
		folders:        opts.Folders,
		health:         opts.Health,
		logger:         logger,
		maxUploadBytes: opts.MaxUploadBytes,
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders(common.AuthorizationHeaderName)
	corsCfg.AddExposeHeaders("Content-Disposition")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Healthz)

	limit := func(mark string) gin.HandlerFunc {
		if opts.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return opts.Limiter.Middleware(mark)
	}

	api := r.Group("/api")
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limit("register"), h.Register)
		authGroup.POST("/login", limit("login"), h.Login)
		authGroup.GET("/me", JWTAuth(h.users, logger), h.Me)
	}

	api.GET("/files/public/:key", h.OpenPublic)

	files := api.Group("/files", JWTAuth(h.users, logger))
	{
		files.POST("", MaxBodyBytes(h.maxUploadBytes), h.Upload)
		files.GET("", h.ListFiles)
		files.GET("/shared", h.ListSharedFiles)
		files.GET("/:id", h.GetFile)
		files.GET("/:id/download", h.Download)
		files.DELETE("/:id", h.DeleteFile)
		files.POST("/:id/share", h.ShareFile)
		files.POST("/:id/public-link", h.CreatePublicLink)
	}

	folders := api.Group("/folders", JWTAuth(h.users, logger))
	{
		folders.POST("", h.CreateFolder)
		folders.GET("", h.ListFolders)
		folders.DELETE("/:id", h.DeleteFolder)
		folders.POST("/:id/share", h.ShareFolder)
	}

	return r
}

// fail maps an orchestrator error to a response. Absence and denial share
// notFoundMsg.
func (h *Handler) fail(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, common.ErrNoAccess), errors.Is(err, common.ErrorNotFound):
		RespError(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, common.ErrDuplicateEmail), errors.Is(err, common.ErrDuplicateUsername):
		RespError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		unauthorized(c)
	case errors.Is(err, common.ErrFolderCycle), errors.Is(err, common.ErrFolderTooDeep):
		RespError(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		RespError(c, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		h.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		RespError(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	RespSuccess(c, gin.H{"status": "ok"})
}
