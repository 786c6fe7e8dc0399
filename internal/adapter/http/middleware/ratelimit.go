package middleware

import (
	"fmt"
	"strconv"
	"time"

	redisStore "money-tracker/internal/adapter/storage/redis"
	"money-tracker/pkg/apperror"
	"money-tracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// Rate limit groups.
const (
	GroupAuthLogin    = "auth_login"
	GroupAuthRegister = "auth_register"
	GroupAPI          = "api"
)

// RateLimitRules returns the per-minute limits of every endpoint group.
// A non-positive value disables limiting for that group.
func RateLimitRules(authPerMinute, apiPerMinute int) map[string]RateLimitRule {
	rules := make(map[string]RateLimitRule)
	if authPerMinute > 0 {
		rules[GroupAuthLogin] = RateLimitRule{Limit: int64(authPerMinute), Window: time.Minute}
		rules[GroupAuthRegister] = RateLimitRule{Limit: int64(authPerMinute), Window: time.Minute}
	}
	if apiPerMinute > 0 {
		rules[GroupAPI] = RateLimitRule{Limit: int64(apiPerMinute), Window: time.Minute}
	}
	return rules
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
// A nil store disables limiting.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", extractIdentifier(c), group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier keys authenticated requests by user and anonymous ones
// by client IP.
func extractIdentifier(c *gin.Context) string {
	if id, ok := UserID(c); ok {
		return "user:" + id.String()
	}
	return "ip:" + c.ClientIP()
}
