package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tadeyemo32/strategai-backend/logger"
	"github.com/tadeyemo32/strategai-backend/models"
	"github.com/tadeyemo32/strategai-backend/services"
)

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET, POST, DELETE, OPTIONS"
)

// CORSMiddleware echoes the request Origin when it is allow-listed and
// falls back to the first entry otherwise. Preflights stop here.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	origins := append([]string(nil), allowed...)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", pickOrigin(origins, c.GetHeader("Origin")))
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			c.Abort()
			return
		}
		c.Next()
	}
}

func pickOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == origin {
			return origin
		}
	}
	if len(allowed) == 0 {
		return ""
	}
	return allowed[0]
}

// AuthMiddleware resolves the Bearer token to a user id and stores it under
// "userID". Rejections use failStatus; resolver outages are 500s.
func AuthMiddleware(sessions services.SessionResolver, failStatus int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, sessions)
		if err != nil {
			status := http.StatusInternalServerError
			if isAuthError(err) {
				status = failStatus
			}
			c.AbortWithStatusJSON(status, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func authenticate(c *gin.Context, sessions services.SessionResolver) (string, error) {
	token, err := services.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return "", err
	}
	return sessions.ResolveUser(c.Request.Context(), token)
}

func isAuthError(err error) bool {
	return errors.Is(err, services.ErrMissingAuthHeader) || errors.Is(err, services.ErrNotAuthenticated)
}

// RequestLogger writes one access line per request to the shared logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := logger.Log.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("[HTTP]")
			return
		}
		entry.Info("[HTTP]")
	}
}
