// Package middleware carries the gin handlers that put the guard layer in
// front of the gateway's HTTP surface: per-client rate limiting, single-user
// enforcement, request IDs, and a masked diagnostics endpoint.
package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/audit"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/ecode"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/net/resp"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/ratelimit"
)

// RateLimit limits each client IP under the given key namespace. Denied
// requests get 429 with Retry-After and the X-RateLimit-* headers, and are
// recorded in the audit log.
func RateLimit(limiter *ratelimit.Keyed, namespace string, rule ratelimit.Rule, log *audit.Logger) gin.HandlerFunc {
	return limitWith(func(c *gin.Context, key string) (ratelimit.Result, error) {
		return limiter.Check(key, rule)
	}, namespace, rule, log)
}

// RateLimitDistributed is RateLimit on a shared store, for deployments where
// several gateway processes split one budget.
func RateLimitDistributed(limiter *ratelimit.Distributed, namespace string, rule ratelimit.Rule, log *audit.Logger) gin.HandlerFunc {
	return limitWith(func(c *gin.Context, key string) (ratelimit.Result, error) {
		return limiter.Check(c.Request.Context(), key, rule)
	}, namespace, rule, log)
}

func limitWith(check func(*gin.Context, string) (ratelimit.Result, error), namespace string, rule ratelimit.Rule, log *audit.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := namespace + ":" + c.ClientIP()
		res, err := check(c, key)
		if err != nil {
			// A broken limiter must not take requests down with it.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatFloat(rule.Max, 'f', -1, 64))
		c.Header("X-RateLimit-Remaining", strconv.FormatFloat(math.Floor(res.Remaining), 'f', -1, 64))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if res.Allowed {
			c.Next()
			return
		}

		retryAfter := int64(math.Ceil(res.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))

		if log != nil {
			log.Log(audit.EventRateLimited, map[string]any{
				"key":        key,
				"retryAfter": retryAfter,
			})
		}

		resp.Fail(c.Writer, &resp.Exception{
			Status:  http.StatusTooManyRequests,
			Code:    ecode.TooManyRequest,
			Message: ecode.Text(ecode.TooManyRequest),
		})
		c.Abort()
	}
}
