package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit allows max requests per client IP within the given window.
func RateLimit(window time.Duration, max int) gin.HandlerFunc {
	if max <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	type visitor struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var mu sync.Mutex
	visitors := make(map[string]*visitor)
	limit := rate.Every(window / time.Duration(max))

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(limit, max)}
			visitors[ip] = v
		}
		v.lastSeen = time.Now()

		// Opportunistic pruning keeps the map from growing without bound.
		if len(visitors) > 1024 {
			cutoff := time.Now().Add(-3 * window)
			for ip, v := range visitors {
				if v.lastSeen.Before(cutoff) {
					delete(visitors, ip)
				}
			}
		}
		mu.Unlock()

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
