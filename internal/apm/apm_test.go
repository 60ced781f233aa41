package apm

import (
	"context"
	"errors"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]string
		wantErr bool
	}{
		{"empty", "", map[string]string{}, false},
		{"single", "x-team=abc", map[string]string{"x-team": "abc"}, false},
		{"multiple", "a=1, b=2", map[string]string{"a": "1", "b": "2"}, false},
		{"missing_equals", "a", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeaders(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestNewTraceProvider_Empty(t *testing.T) {
	tp, err := NewTraceProvider(context.Background(), Settings{Provider: EmptyProvider})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestNewTraceProvider_Unknown(t *testing.T) {
	if _, err := NewTraceProvider(context.Background(), Settings{Provider: "jaeger"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestSpan_FinishWithError(t *testing.T) {
	_, span := NewTracer("test").StartSpanFromContext(context.Background(), "op")
	err := errors.New("boom")
	// No-op provider: must not panic.
	span.Finish(&err)
}
