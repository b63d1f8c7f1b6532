package main

import (
	"context"

	"invoicehub/internal/jobs"
	"invoicehub/internal/logger"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued invoice emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		company, err := loadCompany(cfg)
		if err != nil {
			return err
		}
		mailer, err := newMailer(cfg, company)
		if err != nil {
			return err
		}

		concurrency := cfg.Jobs.WorkerConcurrency
		if concurrency <= 0 {
			concurrency = 5
		}
		log := logger.WithComponent("worker")
		srv := asynq.NewServer(redisConnOpt(cfg.Redis), asynq.Config{
			Concurrency: concurrency,
			Queues:      jobs.WorkerQueues(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("task_type", task.Type()).Msg("Task failed")
			}),
		})

		log.Info().Int("concurrency", concurrency).Msg("Worker starting")
		// Run blocks until SIGTERM or SIGINT.
		return srv.Run(jobs.NewServeMux(mailer))
	},
}
