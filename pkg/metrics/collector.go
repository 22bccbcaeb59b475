// Package metrics collects Prometheus metrics for requests served by a router tree.
package metrics

import (
	"bytes"
	"strconv"
	"time"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

// startTimeKey is the local holding the request start time in Unix nanoseconds
const startTimeKey = "metrics.start_time"

// textContentType is the content type of the Prometheus text exposition format
const textContentType = "text/plain; version=0.0.4; charset=utf-8"

// Collector records request counts, latencies and response sizes.
type Collector struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	sizes    prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func NewCollector(registerer prometheus.Registerer, namespace, subsystem string) (*Collector, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of requests by method and status",
		}, []string{"method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "response_size_bytes",
			Help:      "Response body size in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}

	for _, collector := range []prometheus.Collector{c.requests, c.latency, c.sizes} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Middleware returns the Before/After pair that records each request.
// Attach it to the root so that every matched request is observed once.
// The After unit alone still counts requests and sizes; latency needs both.
func (c *Collector) Middleware() []common.Phased {
	start := common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		req.SetLocal(startTimeKey, strconv.FormatInt(time.Now().UnixNano(), 10))
		return common.Next
	})

	observe := common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		method := req.Method().String()
		c.requests.WithLabelValues(method, strconv.Itoa(res.EffectiveStatus())).Inc()
		c.sizes.Observe(float64(len(res.Body())))

		if raw, ok := req.Local(startTimeKey); ok {
			if nanos, err := strconv.ParseInt(raw, 10, 64); err == nil {
				c.latency.WithLabelValues(method).Observe(time.Since(time.Unix(0, nanos)).Seconds())
			}
		}
		return common.Next
	})

	return []common.Phased{common.Pre(start), common.Post(observe)}
}

// Handler returns a handler that renders every metric family from gatherer
// in the text exposition format. A nil gatherer uses prometheus.DefaultGatherer.
func Handler(gatherer prometheus.Gatherer, logger *zap.Logger) common.HandlerFunc {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(req *request.Request, res *response.Response) {
		families, err := gatherer.Gather()
		if err != nil {
			logger.Error("Failed to gather metrics", zap.Error(err))
			res.SetStatus(500)
			return
		}

		var buf bytes.Buffer
		for _, family := range families {
			if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
				logger.Error("Failed to encode metrics",
					zap.String("family", family.GetName()),
					zap.Error(err),
				)
				res.SetStatus(500)
				return
			}
		}

		res.SetHeader("Content-Type", textContentType)
		res.SetBody(buf.Bytes())
	}
}
