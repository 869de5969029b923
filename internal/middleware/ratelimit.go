package middleware

import (
	"net/http"
	"sync"

	"github.com/GoOrderly/orderlygate/internal/config"
	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// PartnerLimiters hands out one token bucket per partner id.
type PartnerLimiters struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	qps      rate.Limit
	burst    int
}

func NewPartnerLimiters(cfg config.RateLimitConfig) *PartnerLimiters {
	qps := cfg.QPS
	if qps <= 0 {
		qps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(qps) * 2
	}
	return &PartnerLimiters{
		limiters: make(map[int64]*rate.Limiter),
		qps:      rate.Limit(qps),
		burst:    burst,
	}
}

func (p *PartnerLimiters) Get(partnerID int64) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.limiters[partnerID]; ok {
		return l
	}
	l := rate.NewLimiter(p.qps, p.burst)
	p.limiters[partnerID] = l
	return l
}

// RateLimitMiddleware must run after AuthMiddleware.
func RateLimitMiddleware(limiters *PartnerLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		partnerVal, exists := c.Get(ContextPartnerKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		partner := partnerVal.(*model.Partner)

		if !limiters.Get(partner.ID).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
