package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hylla/prioritas/internal/adapters/server/common"
	"github.com/hylla/prioritas/internal/adapters/storage/sqlite"
	"github.com/hylla/prioritas/internal/app"
)

func newTestDeps(t *testing.T) Dependencies {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	counter := 0
	idGen := func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	service := app.NewService(repo, idGen, time.Now, app.ServiceConfig{})
	return Dependencies{Ideas: common.NewAppServiceAdapter(service)}
}

func TestNewHandler_HealthAndAPIRoutes(t *testing.T) {
	handler, err := NewHandler(Config{}, newTestDeps(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	for _, target := range []string{"/healthz", "/readyz"} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
		if recorder.Code != http.StatusOK {
			t.Fatalf("%s status = %d", target, recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), `"status":"ok"`) {
			t.Fatalf("%s body = %q", target, recorder.Body.String())
		}
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("/api/projects status = %d, body %s", recorder.Code, recorder.Body.String())
	}
}

func TestNewHandler_RequiresIdeaService(t *testing.T) {
	if _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected error for missing idea service")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in       string
		fallback string
		want     string
	}{
		{"", "/api", "/api"},
		{"api", "/api", "/api"},
		{"/api/", "/api", "/api"},
		{"  /custom  ", "/api", "/custom"},
	}
	for _, tc := range cases {
		if got := normalizeEndpoint(tc.in, tc.fallback); got != tc.want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	deps := newTestDeps(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, deps)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
