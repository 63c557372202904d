package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeChecker struct {
	name        string
	err         error
	sawDeadline bool
}

func (c *fakeChecker) Name() string { return c.name }

func (c *fakeChecker) Check(ctx context.Context) error {
	_, c.sawDeadline = ctx.Deadline()
	return c.err
}

func TestReadyAllHealthy(t *testing.T) {
	h := NewHandler(0)
	src := &fakeChecker{name: "document-source"}
	h.RegisterChecker(src)

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !src.sawDeadline {
		t.Error("checker ran without a deadline")
	}
}

func TestReadyFailingDependency(t *testing.T) {
	h := NewHandler(time.Second)
	h.RegisterChecker(&fakeChecker{name: "document-source", err: errors.New("connection refused")})
	h.RegisterChecker(&fakeChecker{name: "other"})

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestLiveIgnoresDependencies(t *testing.T) {
	h := NewHandler(time.Second)
	h.RegisterChecker(&fakeChecker{name: "document-source", err: errors.New("down")})

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest("GET", "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
