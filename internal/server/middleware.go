package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/campusmatch/campusmatch/internal/auth"
	"github.com/campusmatch/campusmatch/internal/db"
	svcErr "github.com/campusmatch/campusmatch/internal/errors"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxUser   = "user"
)

// abortWithError maps a service error to an HTTP response and stops the
// chain.
func abortWithError(c *gin.Context, err error) {
	status, msg := svcErr.Map(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// requireAuth validates the Bearer token and stores the caller's identity in
// the request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, svcErr.ErrUnauthorized)
			return
		}

		claims, err := auth.Parse(s.cfg.JWT.Secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortWithError(c, svcErr.ErrUnauthorized)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// requireActive loads the caller's account and rejects pending or suspended
// users. Swipe, chat and discovery routes sit behind this; auth-only routes
// (profile, logout) do not.
func (s *Server) requireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.accounts.RequireActive(c.Request.Context(), c.GetString(ctxUserID))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}

// requireAdmin gates moderation routes on the token's role claim.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != db.RoleAdmin {
			abortWithError(c, svcErr.ErrForbidden)
			return
		}
		c.Next()
	}
}

// currentUser returns the account loaded by requireActive.
func currentUser(c *gin.Context) *db.User {
	return c.MustGet(ctxUser).(*db.User)
}

// requestLogger emits one structured log line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.appCtx.Logger.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}

// rateLimit applies a per-IP token bucket. Limiters are pruned periodically
// to keep the map from growing without bound.
func rateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	every := rate.Every(time.Minute / time.Duration(requestsPerMinute))

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			for ip, l := range limiters {
				if l.Tokens() >= float64(burst) {
					delete(limiters, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(every, burst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
