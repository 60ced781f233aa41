package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantCode   int
		wantStatus string
	}{
		{
			name:       "no_checks",
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "all_healthy",
			checks: map[string]CheckFunc{
				"events": func(context.Context) (bool, string) { return true, "connected" },
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "one_unhealthy",
			checks: map[string]CheckFunc{
				"events":  func(context.Context) (bool, string) { return true, "" },
				"storage": func(context.Context) (bool, string) { return false, "write failed" },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(0, "test")
			for name, c := range tt.checks {
				s.RegisterCheck(name, c)
			}

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
			var st Status
			if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if st.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", st.Status, tt.wantStatus)
			}
			if len(st.Checks) != len(tt.checks) {
				t.Errorf("checks = %d, want %d", len(st.Checks), len(tt.checks))
			}
		})
	}
}

func TestServer_ReadyAndLive(t *testing.T) {
	s := NewServer(0, "test")
	s.RegisterCheck("events", func(context.Context) (bool, string) { return false, "" })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "alive" {
		t.Errorf("live = %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_Handle(t *testing.T) {
	s := NewServer(0, "test")
	s.Handle("/ledger", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]int64{"key-sell": 300})
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}

	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["key-sell"] != 300 {
		t.Errorf("body = %v", body)
	}
}
