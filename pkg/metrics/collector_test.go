package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"github.com/Suhaibinator/NRouter/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

func newRequest(method request.Method, target string) *request.Request {
	return request.New(method, target, "HTTP/1.1", nil, nil)
}

// TestCollectorCountsRequests tests counting through a router tree
func TestCollectorCountsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := NewCollector(registry, "nrouter", "http")
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	users := router.New().
		Get(func(req *request.Request, res *response.Response) {
			res.SetBody([]byte("users"))
		}).
		Post(func(req *request.Request, res *response.Response) {
			res.SetStatus(201)
		})

	root := router.New().Use(collector.Middleware()...)
	if err := root.UseRouter("users", users); err != nil {
		t.Fatalf("UseRouter returned error: %v", err)
	}

	for _, call := range []struct {
		method request.Method
		target string
	}{
		{request.MethodGet, "/users"},
		{request.MethodGet, "/users"},
		{request.MethodPost, "/users"},
		{request.MethodGet, "/users/missing"},
		{request.MethodGet, "/elsewhere"},
	} {
		root.Serve(newRequest(call.method, call.target), response.New())
	}

	if got := testutil.ToFloat64(collector.requests.WithLabelValues("GET", "200")); got != 2 {
		t.Errorf("Expected 2 GET 200 requests, got %v", got)
	}
	if got := testutil.ToFloat64(collector.requests.WithLabelValues("POST", "201")); got != 1 {
		t.Errorf("Expected 1 POST 201 request, got %v", got)
	}
	if got := testutil.ToFloat64(collector.requests.WithLabelValues("GET", "404")); got != 1 {
		t.Errorf("Expected 1 GET 404 request, got %v", got)
	}
	// Root misses never reach the root's middleware
	if count := testutil.CollectAndCount(collector.requests); count != 3 {
		t.Errorf("Expected 3 label combinations, got %d", count)
	}

	var metric dto.Metric
	if err := collector.sizes.Write(&metric); err != nil {
		t.Fatalf("Failed to read histogram: %v", err)
	}
	if got := metric.GetHistogram().GetSampleCount(); got != 4 {
		t.Errorf("Expected 4 size observations, got %d", got)
	}
	if got := metric.GetHistogram().GetSampleSum(); got != 10 {
		t.Errorf("Expected total size 10, got %v", got)
	}
}

func TestNewCollectorDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := NewCollector(registry, "dup", ""); err != nil {
		t.Fatalf("First NewCollector returned error: %v", err)
	}

	_, err := NewCollector(registry, "dup", "")
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		t.Errorf("Expected AlreadyRegisteredError, got %v", err)
	}
}

// TestHandler tests the text exposition output
func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := NewCollector(registry, "test", "")
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	req := newRequest(request.MethodGet, "/metrics")
	res := response.New()
	units := collector.Middleware()
	for _, unit := range units {
		unit.Middleware.Handle(req, res)
	}

	res = response.New()
	Handler(registry, zap.NewNop())(req, res)

	if res.EffectiveStatus() != 200 {
		t.Errorf("Expected status 200, got %d", res.EffectiveStatus())
	}
	if res.Header("Content-Type") != textContentType {
		t.Errorf("Expected Content-Type %q, got %q", textContentType, res.Header("Content-Type"))
	}

	body := string(res.Body())
	for _, want := range []string{
		"# TYPE test_requests_total counter",
		`test_requests_total{method="GET",status="200"} 1`,
		"test_request_duration_seconds_count",
		"test_response_size_bytes_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q, got:\n%s", want, body)
		}
	}
}

type failingGatherer struct{}

func (failingGatherer) Gather() ([]*dto.MetricFamily, error) {
	return nil, errors.New("gather failed")
}

func TestHandlerGatherError(t *testing.T) {
	res := response.New()
	Handler(failingGatherer{}, nil)(newRequest(request.MethodGet, "/metrics"), res)

	if res.Status() != 500 {
		t.Errorf("Expected status 500, got %d", res.Status())
	}
	if len(res.Body()) != 0 {
		t.Errorf("Expected empty body, got %q", res.Body())
	}
}
