package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters caps how many limiters we keep before discarding the map;
// a pack server sees a handful of clients, this is purely a safety valve.
const clientLimiterCap = 1024

// RateLimit applies a per-client token bucket, keyed by client IP. Pack
// opens are cheap to compute but each one triggers a save, so the limit
// really protects the storage driver.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			if len(limiters) >= clientLimiterCap {
				limiters = make(map[string]*rate.Limiter)
			}
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many pack opens, slow down",
				"code":  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
