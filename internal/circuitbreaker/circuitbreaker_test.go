package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
)

var errRemote = errors.New("remote failure")

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("bridge")
	cfg.ConsecutiveFailures = 3
	cfg.Timeout = time.Hour

	var transitions []gobreaker.State
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		transitions = append(transitions, to)
	}

	cb := New[int](cfg)
	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(func() (int, error) { return 0, errRemote }); !errors.Is(err, errRemote) {
			t.Fatalf("call %d: expected remote error, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open state, got %v", cb.State())
	}

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	if apperror.GetCode(err) != apperror.CodeCircuitOpen {
		t.Errorf("expected CodeCircuitOpen, got %v", err)
	}

	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Errorf("expected a single transition to open, got %v", transitions)
	}
}

func TestCircuitBreaker_IsSuccessfulIgnoresCallerErrors(t *testing.T) {
	errCaller := errors.New("bad request")

	cfg := DefaultConfig("bridge")
	cfg.ConsecutiveFailures = 1
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errCaller)
	}

	cb := New[string](cfg)
	for i := 0; i < 5; i++ {
		if _, err := cb.Execute(func() (string, error) { return "", errCaller }); !errors.Is(err, errCaller) {
			t.Fatalf("expected caller error to pass through, got %v", err)
		}
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected breaker to stay closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_PassesResults(t *testing.T) {
	cb := New[string](DefaultConfig("bridge"))

	got, err := cb.Execute(func() (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
	if cb.Name() != "bridge" {
		t.Errorf("expected name bridge, got %q", cb.Name())
	}
}
