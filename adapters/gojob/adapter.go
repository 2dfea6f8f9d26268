package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-social-link/core"
)

// JobIDRefreshProfiles identifies the recurring profile-refresh sweep on the
// queue.
const JobIDRefreshProfiles = "social.profiles.refresh"

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// Normalize enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) Normalize(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// NewRefreshProfilesMessage builds the queue message for one refresh sweep.
// The idempotency key collapses duplicate schedules of the same sweep.
func NewRefreshProfilesMessage(idempotencyKey string) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          JobIDRefreshProfiles,
		Parameters:     map[string]any{},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy("drop"),
	}
}

type RefreshEnqueuer struct {
	enqueuer queue.Enqueuer
}

func NewRefreshEnqueuer(enqueuer queue.Enqueuer) *RefreshEnqueuer {
	return &RefreshEnqueuer{enqueuer: enqueuer}
}

// EnqueueRefresh schedules one profile-refresh sweep.
func (e *RefreshEnqueuer) EnqueueRefresh(ctx context.Context, idempotencyKey string) error {
	if e == nil || e.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	return e.enqueuer.Enqueue(ctx, NewRefreshProfilesMessage(idempotencyKey))
}

// RefreshWorker consumes profile-refresh deliveries and runs the sweep
// through the linking service.
type RefreshWorker struct {
	service core.LinkingService
	logger  core.Logger
	policy  RetryPolicy
}

type RefreshWorkerOption func(*RefreshWorker)

func WithWorkerLogger(logger core.Logger) RefreshWorkerOption {
	return func(w *RefreshWorker) {
		if w == nil || logger == nil {
			return
		}
		w.logger = logger
	}
}

func WithWorkerRetryPolicy(policy RetryPolicy) RefreshWorkerOption {
	return func(w *RefreshWorker) {
		if w == nil {
			return
		}
		w.policy = policy
	}
}

func NewRefreshWorker(service core.LinkingService, opts ...RefreshWorkerOption) (*RefreshWorker, error) {
	if service == nil {
		return nil, fmt.Errorf("gojob: linking service is required")
	}
	w := &RefreshWorker{
		service: service,
		logger:  glog.Nop(),
		policy: RetryPolicy{
			MaxAttempts:     5,
			MaxDelay:        time.Minute,
			DeadLetterOnMax: true,
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Handle runs one delivery to completion: ack on success, policy-bounded
// nack on failure. Unknown job ids are dead-lettered, never retried.
func (w *RefreshWorker) Handle(ctx context.Context, delivery queue.Delivery, attempt int) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("gojob: refresh worker is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}

	msg := delivery.Message()
	if msg == nil || msg.JobID != JobIDRefreshProfiles {
		jobID := ""
		if msg != nil {
			jobID = msg.JobID
		}
		return delivery.Nack(ctx, queue.NackOptions{
			Requeue:    false,
			DeadLetter: true,
			Reason:     fmt.Sprintf("unexpected job id %q", jobID),
		})
	}

	report, err := w.service.RefreshProfiles(ctx)
	if err != nil {
		w.logger.WithContext(ctx).Error("profile refresh sweep failed",
			"job_id", msg.JobID,
			"attempt", attempt,
			"error", err,
		)
		return delivery.Nack(ctx, w.policy.Normalize(queue.NackOptions{
			Requeue: true,
			Delay:   time.Duration(attempt+1) * time.Second,
			Reason:  err.Error(),
		}, attempt))
	}

	w.logger.WithContext(ctx).Info("profile refresh sweep completed",
		"job_id", msg.JobID,
		"refreshed", report.Refreshed,
		"unchanged", report.Unchanged,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return delivery.Ack(ctx)
}
