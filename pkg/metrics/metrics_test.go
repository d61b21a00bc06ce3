package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type CollectorSuite struct {
	suite.Suite
	collector *Collector
}

func (s *CollectorSuite) SetupTest() {
	s.collector = NewCollector()
}

func (s *CollectorSuite) TestRecordToolCall() {
	s.Run("records successful tool calls", func() {
		ctx := context.Background()
		s.collector.RecordToolCall(ctx, "worklocal_get_resource", 100*time.Millisecond, nil)
		s.collector.RecordToolCall(ctx, "worklocal_get_resource", 200*time.Millisecond, nil)
		s.collector.RecordToolCall(ctx, "worklocal_health_check", 50*time.Millisecond, nil)

		s.Equal(2.0, testutil.ToFloat64(s.collector.toolCalls.WithLabelValues("worklocal_get_resource")))
		s.Equal(1.0, testutil.ToFloat64(s.collector.toolCalls.WithLabelValues("worklocal_health_check")))
		s.Equal(0, testutil.CollectAndCount(s.collector.toolCallErrors), "Should have no errors")
	})
	s.Run("records tool call errors", func() {
		s.collector.RecordToolCall(context.Background(), "worklocal_delete_resource", time.Millisecond, errors.New("resource_id is required"))
		s.Equal(1.0, testutil.ToFloat64(s.collector.toolCallErrors.WithLabelValues("worklocal_delete_resource")))
	})
}

func (s *CollectorSuite) TestRecordAPIRequest() {
	ctx := context.Background()
	s.collector.RecordAPIRequest(ctx, "get_resource", http.MethodGet, 200, 50*time.Millisecond)
	s.collector.RecordAPIRequest(ctx, "get_resource", http.MethodGet, 404, 30*time.Millisecond)
	s.collector.RecordAPIRequest(ctx, "delete_resource", http.MethodDelete, 0, time.Second)

	s.Run("labels by status code", func() {
		s.Equal(1.0, testutil.ToFloat64(s.collector.apiRequests.WithLabelValues("get_resource", "GET", "200")))
		s.Equal(1.0, testutil.ToFloat64(s.collector.apiRequests.WithLabelValues("get_resource", "GET", "404")))
	})
	s.Run("labels transport failures as error", func() {
		s.Equal(1.0, testutil.ToFloat64(s.collector.apiRequests.WithLabelValues("delete_resource", "DELETE", "error")))
	})
	s.Run("observes durations per operation", func() {
		s.Equal(2, testutil.CollectAndCount(s.collector.apiRequestDuration))
	})
}

func (s *CollectorSuite) TestHandler() {
	s.collector.RecordAPIRequest(context.Background(), "health_check", http.MethodGet, 200, time.Millisecond)
	recorder := httptest.NewRecorder()
	s.collector.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, recorder.Code)
	body, err := io.ReadAll(recorder.Body)
	s.Require().NoError(err)
	s.Contains(string(body), `worklocal_mcp_api_requests_total{code="200",method="GET",operation="health_check"} 1`)
	s.Contains(string(body), "go_goroutines")
}

func (s *CollectorSuite) TestDefault() {
	s.Same(Default(), Default())
}

func TestCollector(t *testing.T) {
	suite.Run(t, new(CollectorSuite))
}
