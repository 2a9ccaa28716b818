package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetServiceUp(t *testing.T) {
	SetServiceUp("http", true)
	if got := testutil.ToFloat64(ServiceUp.WithLabelValues("http")); got != 1 {
		t.Errorf("service_up{http} = %v, want 1", got)
	}

	SetServiceUp("http", false)
	if got := testutil.ToFloat64(ServiceUp.WithLabelValues("http")); got != 0 {
		t.Errorf("service_up{http} = %v, want 0", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	CommandsTotal.WithLabelValues("SET-MODE", "applied").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wifid_commands_total") {
		t.Error("metrics output missing wifid_commands_total")
	}
}

func TestTimerObserveDuration(t *testing.T) {
	timer := NewTimer()
	timer.ObserveDuration(PollDuration)

	if n := testutil.CollectAndCount(PollDuration); n != 1 {
		t.Errorf("CollectAndCount(PollDuration) = %d, want 1", n)
	}
}
