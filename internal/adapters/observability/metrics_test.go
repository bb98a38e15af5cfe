package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qrate/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per family so counters are exported
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveModeration("comment")
	observability.ObserveAuth("login", "ok")
	observability.ObserveRateLimited("/api/v1/auth/login")
	observability.Recorder{}.AuthEvent("verify", "failed")
	observability.Recorder{}.ModerationRejected("review")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"qrate_http_requests_total",
		`qrate_moderation_rejections_total{field="comment"}`,
		`qrate_auth_events_total{op="login",outcome="ok"}`,
		"qrate_rate_limited_total",
		`qrate_auth_events_total{op="verify",outcome="failed"}`,
		`qrate_moderation_rejections_total{field="review"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestLabelErr(t *testing.T) {
	if got := observability.LabelErr(nil); got != "none" {
		t.Fatalf("got %q", got)
	}
	if got := observability.LabelErr(errors.New("x")); got != "*errors.errorString" {
		t.Fatalf("got %q", got)
	}
}
