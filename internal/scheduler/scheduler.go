// Package scheduler provides cron-based background jobs for the bot engine.
//
// Its main job is expiring stale sessions so abandoned conversations do not
// hold the one-active-session slot for a contact forever.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gestorzap/botengine/internal/store"
)

// DefaultExpiryInterval is the cron expression for the session expiry sweep.
const DefaultExpiryInterval = "*/5 * * * *"

// DefaultSessionTTL applies to tenants without a configured session TTL.
const DefaultSessionTTL = 30 * time.Minute

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	// Use standard 5-field cron parser (min, hour, dom, month, dow) and enable recovery
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	return err
}

// AddSessionExpiry schedules the periodic sweep that completes sessions idle
// longer than the TTL. A zero ttl falls back to DefaultSessionTTL.
func (s *Scheduler) AddSessionExpiry(st store.Store, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return s.AddJob(DefaultExpiryInterval, func() {
		n, err := st.ExpireStaleSessions(time.Now().Add(-ttl))
		if err != nil {
			slog.Error("Session expiry sweep failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("Expired stale sessions", "count", n, "ttl", ttl)
		}
	})
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
