package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// Admin secret headers. "password" is what the existing admin panel sends.
const (
	HeaderAdminPassword  = "X-Admin-Password"
	HeaderLegacyPassword = "password"

	ContextKeyAdmin = "is_admin"
)

// Authorizer validates the shared admin secret.
type Authorizer interface {
	Authorize(secret string) error
}

// AdminMiddleware gates admin routes behind the shared secret and rate
// limits invalid attempts per client IP.
type AdminMiddleware struct {
	authorizer  Authorizer
	rateLimiter *InvalidAuthRateLimiter
}

// NewAdminMiddleware constructs a new AdminMiddleware.
func NewAdminMiddleware(authorizer Authorizer, rateLimiter *InvalidAuthRateLimiter) *AdminMiddleware {
	if rateLimiter == nil {
		rateLimiter = NewInvalidAuthRateLimiter(DefaultInvalidAuthLimit, DefaultInvalidAuthWindow)
	}
	return &AdminMiddleware{
		authorizer:  authorizer,
		rateLimiter: rateLimiter,
	}
}

// Handle returns a Gin middleware function that rejects requests without a
// valid admin secret before any handler runs.
func (m *AdminMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if m.rateLimiter.Blocked(ip) {
			utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		secret := c.GetHeader(HeaderAdminPassword)
		if secret == "" {
			secret = c.GetHeader(HeaderLegacyPassword)
		}

		if err := m.authorizer.Authorize(secret); err != nil {
			m.handleAuthError(c, err)
			return
		}

		c.Set(ContextKeyAdmin, true)
		c.Next()
	}
}

func (m *AdminMiddleware) handleAuthError(c *gin.Context, err error) {
	// Apply rate limit for invalid auth attempts
	if !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}

	if !errors.Is(err, utils.ErrUnauthorized) {
		utils.RespondError(c, err)
		c.Abort()
		return
	}
	utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: invalid admin password")
	c.Abort()
}
