package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_JSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/offers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "1", "echo": in["partner"]})
	}))
	defer srv.Close()

	c, err := New(WithBaseURL(srv.URL+"/"), WithHeaders(map[string]string{"Authorization": "Bearer k"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out struct {
		ID   string `json:"id"`
		Echo string `json:"echo"`
	}
	resp, err := c.NewRequest().
		SetBody(map[string]string{"partner": "p1"}).
		SetResult(&out).
		Post(context.Background(), "/offers")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if out.ID != "1" || out.Echo != "p1" {
		t.Errorf("result = %+v", out)
	}
}

func TestClient_QueryEscaping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "A Clean Garage&x" {
			t.Errorf("query name = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.NewRequest().SetQueryParam("name", "A Clean Garage&x").Get(context.Background(), "items"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestClient_StatusError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{"bad_request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"too_many_requests", http.StatusTooManyRequests, true},
		{"bad_gateway", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			c, err := New(WithBaseURL(srv.URL))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_, err = c.NewRequest().Delete(context.Background(), "/friends/1")

			var serr *StatusError
			if !errors.As(err, &serr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if serr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", serr.StatusCode, tt.status)
			}
			if serr.Temporary() != tt.temporary {
				t.Errorf("Temporary = %v, want %v", serr.Temporary(), tt.temporary)
			}
		})
	}
}
