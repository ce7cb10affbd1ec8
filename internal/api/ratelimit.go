package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	idleClientTTL     = 5 * time.Minute
	maxTrackedClients = 10000
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one token bucket per client IP.
type clientLimiters struct {
	mu      sync.Mutex
	rps     int
	clients map[string]*clientLimiter
}

func (l *clientLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.clients[ip]; ok {
		c.lastSeen = now
		return c.limiter
	}
	if len(l.clients) >= maxTrackedClients {
		l.evictIdle(now)
	}
	c := &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.rps), l.rps), lastSeen: now}
	l.clients[ip] = c
	return c.limiter
}

func (l *clientLimiters) evictIdle(now time.Time) {
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > idleClientTTL {
			delete(l.clients, ip)
		}
	}
}

// RateLimitMiddleware allows rps requests per second, with a burst of rps, to
// each client IP.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	limiters := &clientLimiters{rps: rps, clients: make(map[string]*clientLimiter)}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
