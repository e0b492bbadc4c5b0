package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/auth"
)

const userIDKey = "userID"

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// resolveUser verifies the bearer token and ensures the user row exists.
// An absent header yields ("", nil).
func (h *handler) resolveUser(c *gin.Context) (string, error) {
	token := auth.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		return "", nil
	}
	claims, err := auth.ParseToken(token, h.cfg.JWTSecret)
	if err != nil {
		return "", err
	}
	u, err := h.svc.Users.Ensure(c.Request.Context(), claims.UserID, claims.Email)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (h *handler) requireAuth(c *gin.Context) {
	id, err := h.resolveUser(c)
	if err == nil && id == "" {
		err = common.ErrAuthenticationRequired
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(userIDKey, id)
	c.Next()
}

// optionalAuth attaches the user when a valid token is present and lets the
// handler decide what anonymous callers may do.
func (h *handler) optionalAuth(c *gin.Context) {
	id, err := h.resolveUser(c)
	if err != nil {
		h.log.Debug(c.Request.Context(), "optional auth failed", "error", err)
	}
	if id != "" {
		c.Set(userIDKey, id)
	}
	c.Next()
}

// RequestLogger logs one line per request.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if id := currentUser(c); id != "" {
			args = append(args, "user_id", id)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "http request", args...)
			return
		}
		log.Info(c.Request.Context(), "http request", args...)
	}
}

// CORS allows the configured browser origins. "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
		}
		allowed[strings.ToLower(o)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if !wildcard && !allowed[strings.ToLower(origin)] {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
			return
		}

		header := c.Writer.Header()
		header.Set("Vary", "Origin")
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Paddle-Signature")
		header.Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
