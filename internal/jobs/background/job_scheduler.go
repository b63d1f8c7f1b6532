package background

import (
	"context"
	"fmt"
	"time"

	"invoicehub/internal/config"
	"invoicehub/internal/logger"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const expirySweepJob = "payment-link-expiry-sweep"

// LinkExpirer expires proformas whose payment link has lapsed.
type LinkExpirer interface {
	ExpireOverdueLinks(ctx context.Context, now time.Time, batch int) (int, error)
}

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	expirer   LinkExpirer
	interval  time.Duration
	batch     int
	now       func() time.Time
	log       zerolog.Logger
}

// NewJobScheduler creates a scheduler with the expiry sweep registered.
func NewJobScheduler(expirer LinkExpirer, cfg config.JobsConfig) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		expirer:   expirer,
		interval:  cfg.ExpirySweepInterval,
		batch:     cfg.ExpirySweepBatch,
		now:       time.Now,
		log:       logger.WithComponent("scheduler"),
	}
	if js.interval <= 0 {
		js.interval = 15 * time.Minute
	}
	if js.batch <= 0 {
		js.batch = 100
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info().Dur("interval", js.interval).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler.
func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.sweep),
		gocron.WithName(expirySweepJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", expirySweepJob, err)
	}
	return nil
}

func (js *JobScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), js.interval)
	defer cancel()
	if _, err := js.SweepExpiredLinks(ctx); err != nil {
		js.log.Error().Err(err).Msg("payment link expiry sweep failed")
	}
}

// SweepExpiredLinks runs one expiry pass and returns how many invoices moved
// to expired.
func (js *JobScheduler) SweepExpiredLinks(ctx context.Context) (int, error) {
	start := js.now()
	expired, err := js.expirer.ExpireOverdueLinks(ctx, start, js.batch)
	if err != nil {
		return expired, err
	}
	if expired > 0 {
		js.log.Info().Int("expired", expired).Dur("took", time.Since(start)).Msg("expired overdue payment links")
	}
	return expired, nil
}
