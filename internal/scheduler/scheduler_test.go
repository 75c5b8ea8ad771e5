package scheduler

import (
	"testing"
	"time"

	"github.com/gestorzap/botengine/internal/store"
)

func TestSchedulerAddJob(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	// Should add a valid cron job without error
	if err := s.AddJob("* * * * *", func() {}); err != nil {
		t.Errorf("Expected no error adding job, got %v", err)
	}
}

func TestSchedulerAddJobInvalidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("not a cron expr", func() {}); err == nil {
		t.Errorf("Expected error for invalid cron expression")
	}
}

func TestSchedulerAddSessionExpiry(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	st := store.NewInMemoryStore()
	if err := s.AddSessionExpiry(st, 10*time.Minute); err != nil {
		t.Errorf("Expected no error adding session expiry job, got %v", err)
	}
	// Zero TTL falls back to the default instead of failing.
	if err := s.AddSessionExpiry(st, 0); err != nil {
		t.Errorf("Expected no error with zero TTL, got %v", err)
	}
}
