package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// TokenResolver maps a bearer token to its user.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// JWTAuth rejects requests without a valid bearer token, stores the
// resolved user in the gin context and tags the request's log records with
// its id.
func JWTAuth(users TokenResolver, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader(common.AuthorizationHeaderName), " ")
		if !ok || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
			unauthorized(c)
			return
		}

		user, err := users.ResolveToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				unauthorized(c)
				return
			}
			logger.Error(c.Request.Context(), "token resolution failed", "error", err)
			RespError(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.Set(userContextKey, user)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "user_id", user.ID))
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", common.BearerScheme)
	RespError(c, http.StatusUnauthorized, "invalid authentication credentials")
}

// currentUser returns the user stored by JWTAuth.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}

// RequestLogger logs one line per request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// MaxBodyBytes caps the request body at limit bytes; 0 disables the cap.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
