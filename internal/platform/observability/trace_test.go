package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jacoubbakhouche/foufou-api/internal/platform/requestctx"
)

func TestTraceMiddlewarePropagatesCloudTraceHeader(t *testing.T) {
	const traceID = "105445aa7843bc8bf206b12000100000"

	var seen requestctx.TraceInfo
	var hadTrace bool
	handler := TraceMiddleware("demo-project")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, hadTrace = requestctx.Trace(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/regions", nil)
	req.Header.Set("X-Cloud-Trace-Context", traceID+"/1;o=1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !hadTrace {
		t.Fatalf("expected trace info on the request context")
	}
	if seen.TraceID != traceID {
		t.Fatalf("expected trace id %s, got %s", traceID, seen.TraceID)
	}
	if !seen.Sampled {
		t.Fatalf("expected sampled trace")
	}
	if seen.ProjectID != "demo-project" {
		t.Fatalf("expected project id on trace info, got %q", seen.ProjectID)
	}

	got := rr.Header().Get("X-Cloud-Trace-Context")
	if got == "" {
		t.Fatalf("expected trace header echoed on the response")
	}
	if want := traceID + "/"; len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("expected response header to carry trace id %s, got %s", traceID, got)
	}
}

func TestTraceMiddlewareMalformedHeaderStillServes(t *testing.T) {
	called := false
	handler := TraceMiddleware("demo-project")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Cloud-Trace-Context", "not-a-trace")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected the wrapped handler to run")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
