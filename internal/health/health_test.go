package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "test passed",
		}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestErrorCheck(t *testing.T) {
	failing := func(ctx context.Context) error { return errors.New("disk full") }
	passing := func(ctx context.Context) error { return nil }

	tests := []struct {
		name     string
		optional bool
		fn       func(ctx context.Context) error
		want     Status
	}{
		{"passing", false, passing, StatusHealthy},
		{"failing required", false, failing, StatusUnhealthy},
		{"failing optional", true, failing, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ErrorCheck("history", tt.optional, tt.fn).Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v", result.Status, tt.want)
			}
			if tt.want != StatusHealthy && result.Message != "disk full" {
				t.Errorf("Message = %q, want 'disk full'", result.Message)
			}
		})
	}
}

func TestRegistry_Check(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
		healthy  bool
	}{
		{"empty", map[string]Status{}, StatusHealthy, true},
		{"all healthy", map[string]Status{"a": StatusHealthy, "b": StatusHealthy}, StatusHealthy, true},
		{"degraded", map[string]Status{"a": StatusHealthy, "b": StatusDegraded}, StatusDegraded, true},
		{"unhealthy wins", map[string]Status{"a": StatusDegraded, "b": StatusUnhealthy}, StatusUnhealthy, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("recordpad", "1.2.3")
			for name, status := range tt.statuses {
				status := status
				registry.RegisterFunc(name, func(ctx context.Context) CheckResult {
					return CheckResult{Status: status}
				})
			}

			report := registry.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if report.Healthy() != tt.healthy {
				t.Errorf("Healthy() = %v, want %v", report.Healthy(), tt.healthy)
			}
			if len(report.Checks) != len(tt.statuses) {
				t.Errorf("len(Checks) = %d, want %d", len(report.Checks), len(tt.statuses))
			}
			if report.Service != "recordpad" || report.Version != "1.2.3" {
				t.Errorf("unexpected identity %s %s", report.Service, report.Version)
			}
		})
	}
}

func TestRegistry_ChecksSortedAndNamed(t *testing.T) {
	registry := NewRegistry("recordpad", "dev")
	registry.RegisterFunc("zeta", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })
	registry.RegisterFunc("alpha", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })

	report := registry.Check(context.Background())
	if report.Checks[0].Name != "alpha" || report.Checks[1].Name != "zeta" {
		t.Errorf("expected sorted names, got %s, %s", report.Checks[0].Name, report.Checks[1].Name)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	registry := NewRegistry("recordpad", "dev")
	var calls int32
	for _, name := range []string{"a", "b", "c", "d"} {
		registry.RegisterFunc(name, func(ctx context.Context) CheckResult {
			atomic.AddInt32(&calls, 1)
			time.Sleep(50 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	registry.CheckWithTimeout(time.Second)
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("checks did not run concurrently: %v", elapsed)
	}
	if atomic.LoadInt32(&calls) != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}
