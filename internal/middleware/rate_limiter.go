package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// Idle is how long a client's bucket is kept after its last request.
	Idle time.Duration
}

// RateLimiter applies one token bucket per client IP.
type RateLimiter struct {
	config  RateLimiterConfig
	clients *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Idle <= 0 {
		config.Idle = 10 * time.Minute
	}
	return &RateLimiter{
		config:  config,
		clients: cache.New(config.Idle, 2*config.Idle),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.clients.Get(key); ok {
		rl.clients.SetDefault(key, v)
		return v.(*rate.Limiter)
	}

	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	// Add fails when another request created the bucket first.
	if err := rl.clients.Add(key, l, cache.DefaultExpiration); err != nil {
		if v, ok := rl.clients.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.Response{
				IsSuccess: false,
				Message:   "Too many requests.",
			})
			return
		}
		c.Next()
	}
}
