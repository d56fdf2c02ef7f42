package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dealer_sync/config"
	"dealer_sync/models"
)

// Syncer is the job the scheduler fires.
type Syncer interface {
	Sync(ctx context.Context, trigger models.RunTrigger) (*models.Snapshot, error)
}

// SnapshotChecker tells whether a snapshot has already been written.
type SnapshotChecker interface {
	Exists() bool
}

// Scheduler owns the periodic sync timer. It is started once at process boot
// and stopped at shutdown.
type Scheduler struct {
	cfg    config.SchedulerConfig
	syncer Syncer
	store  SnapshotChecker
	cron   *cron.Cron

	ctx       context.Context
	bootstrap sync.WaitGroup
}

func New(cfg config.SchedulerConfig, syncer Syncer, store SnapshotChecker) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		syncer: syncer,
		store:  store,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(log.Default())),
		)),
	}
}

// Interval is the fixed period between scheduled syncs when no cron expression is set.
func (s *Scheduler) Interval() time.Duration {
	return time.Duration(s.cfg.IntervalHours) * time.Hour
}

// Start registers the sync job and starts the timer. When no snapshot exists
// yet, one sync is fired immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	if s.cfg.Cron != "" {
		log.Printf("[scheduler] starting with cron: %s", s.cfg.Cron)
		if _, err := s.cron.AddFunc(s.cfg.Cron, func() { s.run(models.TriggerSchedule) }); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	} else {
		if s.Interval() <= 0 {
			return fmt.Errorf("invalid sync interval: %d hours", s.cfg.IntervalHours)
		}
		log.Printf("[scheduler] starting with interval: %s", s.Interval())
		s.cron.Schedule(cron.Every(s.Interval()), cron.FuncJob(func() { s.run(models.TriggerSchedule) }))
	}
	s.cron.Start()

	if !s.store.Exists() {
		log.Println("[scheduler] no snapshot yet, running initial sync")
		s.bootstrap.Add(1)
		go func() {
			defer s.bootstrap.Done()
			s.run(models.TriggerBootstrap)
		}()
	}

	return nil
}

// Stop halts the timer and waits for any running sync to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.bootstrap.Wait()
	log.Println("[scheduler] stopped")
}

// Next reports when the next scheduled sync fires, or zero when none is registered.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// run fires one sync. Errors and panics are logged and never escape.
func (s *Scheduler) run(trigger models.RunTrigger) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[scheduler] %s sync panicked: %v", trigger, r)
		}
	}()

	// Shutdown must not abort a sync halfway: a cancelled fetch would
	// overwrite the snapshot with an empty inventory.
	ctx := context.Background()
	if s.ctx != nil {
		ctx = context.WithoutCancel(s.ctx)
	}

	snap, err := s.syncer.Sync(ctx, trigger)
	if err != nil {
		log.Printf("[scheduler] %s sync error: %v", trigger, err)
		return
	}
	log.Printf("[scheduler] %s sync complete: %d cars", trigger, snap.Count)
}
