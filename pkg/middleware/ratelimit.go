package middleware

import (
	"sync"
	"time"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ThrottleConfig defines configuration for request pacing
type ThrottleConfig struct {
	// Rate is the number of requests allowed per Per for one key
	Rate int

	// Per is the time window for Rate; zero means one second
	Per time.Duration

	// KeyFunc selects the bucket for a request. Defaults to the client IP
	// stored by ClientIPMiddleware, or one shared bucket when it is absent.
	KeyFunc func(req *request.Request) string

	// MaxKeys bounds the number of buckets kept; the least recently used
	// bucket is evicted beyond it. Zero means DefaultMaxKeys.
	MaxKeys int
}

// DefaultMaxKeys is the bucket bound used when ThrottleConfig.MaxKeys is zero
const DefaultMaxKeys = 10000

// Throttler paces requests per key using Uber's leaky-bucket rate limiter.
// Since a middleware cannot reject a request, Throttler delays it instead.
//
// Unlike every other part of dispatch, Handle blocks: the calling goroutine
// sleeps until the request's bucket allows it through, so a throttled
// request holds its goroutine and delays the rest of its chain.
//
// Buckets live in an LRU cache of MaxKeys entries. An evicted key starts
// again with a fresh bucket.
type Throttler struct {
	config   ThrottleConfig
	logger   *zap.Logger
	limiters *lru.Cache // string -> ratelimit.Limiter
	mu       sync.Mutex
}

// NewThrottler creates a Throttler. A non-positive Rate is treated as 1.
func NewThrottler(config ThrottleConfig, logger *zap.Logger) *Throttler {
	if config.Rate < 1 {
		config.Rate = 1
	}
	if config.Per <= 0 {
		config.Per = time.Second
	}
	if config.MaxKeys <= 0 {
		config.MaxKeys = DefaultMaxKeys
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// lru.New only fails for a non-positive size
	limiters, _ := lru.New(config.MaxKeys)
	return &Throttler{config: config, logger: logger, limiters: limiters}
}

// getLimiter gets or creates the limiter for key
func (t *Throttler) getLimiter(key string) ratelimit.Limiter {
	if limiter, ok := t.limiters.Get(key); ok {
		return limiter.(ratelimit.Limiter)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring lock
	if limiter, ok := t.limiters.Get(key); ok {
		return limiter.(ratelimit.Limiter)
	}

	limiter := ratelimit.New(t.config.Rate, ratelimit.Per(t.config.Per), ratelimit.WithoutSlack)
	t.limiters.Add(key, limiter)
	return limiter
}

// key returns the bucket key for req
func (t *Throttler) key(req *request.Request) string {
	if t.config.KeyFunc != nil {
		return t.config.KeyFunc(req)
	}
	if ip := ClientIP(req); ip != "" {
		return ip
	}
	return "global"
}

// Handle implements common.Middleware. It always returns common.Next.
func (t *Throttler) Handle(req *request.Request, res *response.Response) common.Signal {
	key := t.key(req)

	start := time.Now()
	t.getLimiter(key).Take()

	if waited := time.Since(start); waited > time.Millisecond {
		t.logger.Debug("Request throttled",
			zap.String("key", key),
			zap.Duration("waited", waited),
			zap.String("request", req.String()),
		)
	}
	return common.Next
}
