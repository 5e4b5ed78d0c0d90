// Package resilience provides protective middleware.
package resilience

import (
	"math"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
	apierrors "github.com/kart-io/ginsvc/pkg/utils/errors"
)

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	maxClients int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter from opts.
func NewRateLimiter(opts mwopts.RateLimitOptions) *RateLimiter {
	maxClients := opts.MaxClients
	if maxClients <= 0 {
		maxClients = 10000
	}
	return &RateLimiter{
		limit:      rate.Limit(opts.RequestsPerSecond),
		burst:      opts.Burst,
		maxClients: maxClients,
		buckets:    make(map[string]*rate.Limiter),
	}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

func (l *RateLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		// 超出上限时整体重建，避免无界增长
		if len(l.buckets) >= l.maxClients {
			l.buckets = make(map[string]*rate.Limiter)
		}
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	return b
}

// retryAfter returns whole seconds until one token is available.
func (l *RateLimiter) retryAfter() int {
	if l.limit <= 0 {
		return 1
	}
	return int(math.Ceil(1 / float64(l.limit)))
}

// RateLimitWithOptions returns a middleware that rejects clients exceeding
// their budget with ErrTooManyRequests through the error path.
func RateLimitWithOptions(opts mwopts.RateLimitOptions) gin.HandlerFunc {
	l := NewRateLimiter(opts)
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(l.retryAfter()))
			common.AbortWithError(c, apierrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
