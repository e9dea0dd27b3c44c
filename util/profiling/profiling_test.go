package profiling

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_events_total", Help: "Test events"})
	registry.MustRegister(counter)
	counter.Inc()

	server := httptest.NewServer(Handler(registry))
	defer server.Close()

	response, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	body, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		t.Fatalf("ReadAll: %+v", err)
	}
	if !strings.Contains(string(body), "test_events_total 1") {
		t.Fatalf("Expected the registered counter in %q", body)
	}

	response, err = http.Get(server.URL + "/debug/pprof/")
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("Expected pprof to be served, got status %d", response.StatusCode)
	}
}
