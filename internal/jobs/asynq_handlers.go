package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/hibiken/asynq"
)

// Task type definitions
const (
	TypeShareInvoice = "email:share_invoice"
)

const (
	shareInvoiceQueue    = "emails"
	shareInvoiceRetries  = 5
	shareInvoiceDeadline = 2 * time.Minute
)

// NewShareInvoiceTask creates a new invoice email task
func NewShareInvoiceTask(req models.ShareInvoiceRequest) (*asynq.Task, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeShareInvoice, data,
		asynq.Queue(shareInvoiceQueue),
		asynq.MaxRetry(shareInvoiceRetries),
		asynq.Timeout(shareInvoiceDeadline),
	), nil
}

// Enqueuer is the part of asynq.Client used to queue tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EmailQueue defers invoice emails to the worker process.
type EmailQueue struct {
	client Enqueuer
}

func NewEmailQueue(client Enqueuer) *EmailQueue {
	return &EmailQueue{client: client}
}

// Enqueue queues req and reports the task id.
func (q *EmailQueue) Enqueue(ctx context.Context, req models.ShareInvoiceRequest) (*models.EmailResult, error) {
	task, err := NewShareInvoiceTask(req)
	if err != nil {
		return nil, common.Internal("Failed to queue email", err)
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, common.Internal("Failed to queue email", err)
	}
	log := logger.WithComponent("jobs")
	log.Info().
		Str("task_id", info.ID).
		Str("invoice_number", req.InvoiceNumber).
		Msg("invoice email queued")
	return &models.EmailResult{Success: true, TaskID: info.ID, Queued: true}, nil
}

// ShareInvoiceHandler delivers queued invoice emails.
type ShareInvoiceHandler struct {
	mailer services.Mailer
}

func NewShareInvoiceHandler(mailer services.Mailer) *ShareInvoiceHandler {
	return &ShareInvoiceHandler{mailer: mailer}
}

// ProcessTask implements asynq.Handler. Malformed or invalid payloads are not
// retried.
func (h *ShareInvoiceHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var req models.ShareInvoiceRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		return fmt.Errorf("failed to unmarshal share invoice payload: %v: %w", err, asynq.SkipRetry)
	}

	log := logger.WithComponent("jobs")
	result, err := h.mailer.SendInvoice(ctx, req)
	if err != nil {
		if common.IsKind(err, common.KindValidation) {
			return fmt.Errorf("invalid share invoice payload: %v: %w", err, asynq.SkipRetry)
		}
		log.Warn().Err(err).Str("invoice_number", req.InvoiceNumber).Msg("invoice email delivery failed")
		return err
	}

	log.Info().Str("invoice_number", req.InvoiceNumber).Str("message_id", result.MessageID).Msg("queued invoice email delivered")
	return nil
}

// NewServeMux routes worker tasks to their handlers.
func NewServeMux(mailer services.Mailer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeShareInvoice, NewShareInvoiceHandler(mailer))
	return mux
}

// WorkerQueues weights the worker's queues.
func WorkerQueues() map[string]int {
	return map[string]int{shareInvoiceQueue: 6, "default": 3}
}
