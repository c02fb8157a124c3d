// Package scheduler runs periodic maintenance for the HTTP server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/store"
)

// DefaultSweepInterval is how often expired subscriptions are downgraded.
const DefaultSweepInterval = time.Hour

// Scheduler owns the background jobs.
type Scheduler struct {
	cron     *gocron.Scheduler
	profiles store.ProfileRepo
	tokens   store.TokenRepo
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// New returns a Scheduler. A non-positive interval uses
// DefaultSweepInterval.
func New(profiles store.ProfileRepo, tokens store.TokenRepo, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		profiles: profiles,
		tokens:   tokens,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Start schedules the expiry sweep and runs it immediately.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(s.interval).Do(s.sweep); err != nil {
		return fmt.Errorf("schedule expiry sweep: %w", err)
	}
	s.cron.StartAsync()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts all jobs.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, _, err := s.Sweep(ctx); err != nil {
		s.log.Error("expiry sweep failed", zap.Error(err))
	}
}

// Sweep downgrades lapsed premium profiles and purges expired token
// revocations.
func (s *Scheduler) Sweep(ctx context.Context) (expired, purged int64, err error) {
	now := s.now()
	expired, err = s.profiles.ExpireSubscriptions(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	purged, err = s.tokens.Purge(ctx, now)
	if err != nil {
		return expired, 0, err
	}
	if expired > 0 || purged > 0 {
		s.log.Info("expiry sweep",
			zap.Int64("subscriptions_expired", expired),
			zap.Int64("tokens_purged", purged))
	}
	return expired, purged, nil
}
