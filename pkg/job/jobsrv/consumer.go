package jobsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/asyncx"
	"github.com/Abraxas-365/trainforge/pkg/errx"
	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/logx"
	"github.com/Abraxas-365/trainforge/pkg/metricx"
	"github.com/Abraxas-365/trainforge/pkg/notifx"
	"github.com/Abraxas-365/trainforge/pkg/queuex"
	"github.com/Abraxas-365/trainforge/pkg/trainer"
)

// Consumer pulls execution requests from the queue, drives each through the
// lifecycle and invokes the training backend. Delivery is at-least-once: a
// message is acknowledged only after its job has been written to a terminal
// state (or recognized as unprocessable), so every crash window resolves to
// a redelivery and the guarded transitions absorb the duplicates.
type Consumer struct {
	svc      *Service
	queue    queuex.Queue
	runner   trainer.Runner
	metrics  *metricx.Metrics
	notifier *notifx.Client
	opts     ConsumerOptions

	mu      sync.Mutex
	running bool
}

// NewConsumer creates the consumption loop. The notifier and metrics are
// optional; pass nil to disable them.
func NewConsumer(svc *Service, queue queuex.Queue, runner trainer.Runner, notifier *notifx.Client, metrics *metricx.Metrics, options ...ConsumerOption) *Consumer {
	opts := defaultConsumerOptions()
	for _, o := range options {
		o(&opts)
	}
	return &Consumer{
		svc:      svc,
		queue:    queue,
		runner:   runner,
		metrics:  metrics,
		notifier: notifier,
		opts:     opts,
	}
}

// Start begins consuming. It blocks until ctx is cancelled, then drains
// in-flight executions up to the shutdown timeout.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errAlreadyRunning()
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	logx.Infof("consumer: starting %d workers", c.opts.Concurrency)

	var wg sync.WaitGroup
	for i := 0; i < c.opts.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.workerLoop(ctx, id)
		}(i)
	}

	<-ctx.Done()
	logx.Info("consumer: shutting down workers...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("consumer: all workers stopped")
	case <-time.After(c.opts.ShutdownTimeout):
		logx.Warn("consumer: shutdown timed out, unacked deliveries will be redelivered")
	}

	return nil
}

func (c *Consumer) workerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		deliveries, err := c.queue.Receive(ctx, c.opts.MaxMessages, c.opts.WaitTime)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.WithError(err).Warnf("consumer: worker %d receive error", id)
			time.Sleep(c.opts.PollInterval)
			continue
		}

		for _, d := range deliveries {
			c.process(ctx, d)
		}
	}
}

// process drives one delivery through run → terminal write → ack. Crashing
// anywhere before the ack is safe: the delivery comes back and the guarded
// transitions make the replay converge on the same terminal record.
func (c *Consumer) process(ctx context.Context, d queuex.Delivery) {
	// Shutdown must not abort a delivery already pulled off the queue. The
	// worker loop stops receiving on cancellation; work in flight keeps its
	// own run timeout and finishes the terminal write and ack during the
	// drain window in Start.
	ctx = context.WithoutCancel(ctx)

	req, err := job.DecodeExecutionRequest(d.Body)
	if err != nil {
		// Unparseable payloads can never succeed. Surface loudly, then ack
		// so the message stops cycling.
		logx.WithError(err).WithField("message_id", d.MessageID).
			Error("consumer: poison message, acking without processing")
		c.metrics.PoisonMessage()
		c.ack(ctx, d)
		return
	}

	log := logx.WithFields(logx.Fields{
		"job_id":     req.JobID,
		"message_id": d.MessageID,
	})

	if err := c.svc.MarkRunning(ctx, req.JobID, d.MessageID); err != nil {
		switch {
		case errx.IsCode(err, job.CodeNotFound):
			// The record store is authoritative; a delivery for a job it has
			// never heard of cannot be reconciled by redelivering.
			log.WithError(err).Error("consumer: delivery references unknown job, acking")
			c.metrics.PoisonMessage()
			c.ack(ctx, d)
			return
		case errx.IsCode(err, job.CodeInvalidTransition):
			// The job already reads terminal, most likely a redelivery of
			// finished work. Execution still proceeds; the terminal write
			// below is where duplicates are absorbed.
			log.WithError(err).Warn("consumer: job already terminal before run")
		default:
			// Store outage. Leave the delivery unacked so it comes back once
			// the store recovers.
			log.WithError(err).Error("consumer: mark-running failed, leaving delivery for redelivery")
			return
		}
	}

	c.metrics.JobStarted()
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, c.opts.RunTimeout)
	result, runErr := c.runner.Run(runCtx, req.TargetName, req.ResourceLocator, req.Parameters)
	cancel()

	elapsed := time.Since(start).Seconds()
	c.metrics.JobFinished()

	if runErr != nil {
		c.finishFailed(ctx, d, req, runErr, elapsed, log)
		return
	}
	c.finishCompleted(ctx, d, req, result, elapsed, log)
}

func (c *Consumer) finishCompleted(ctx context.Context, d queuex.Delivery, req *job.ExecutionRequest, result *trainer.Result, elapsed float64, log *logx.Entry) {
	if err := c.svc.MarkCompleted(ctx, req.JobID); err != nil {
		if !errx.IsCode(err, job.CodeInvalidTransition) {
			log.WithError(err).Error("consumer: mark-completed failed, leaving delivery for redelivery")
			return
		}
		// The record already reads failed; the redelivered success loses.
		log.WithError(err).Warn("consumer: success discarded, job already failed")
	}

	c.metrics.JobCompleted(elapsed)
	summary := "training finished"
	if result != nil && result.Summary != "" {
		summary = result.Summary
	}
	log.WithField("summary", summary).Info("consumer: job completed")

	c.notifyOutcome(req.JobID)
	c.ack(ctx, d)
}

func (c *Consumer) finishFailed(ctx context.Context, d queuex.Delivery, req *job.ExecutionRequest, runErr error, elapsed float64, log *logx.Entry) {
	diag := buildDiagnostic(req, d.MessageID, runErr)

	if err := c.svc.MarkFailed(ctx, req.JobID, diag); err != nil {
		if !errx.IsCode(err, job.CodeInvalidTransition) {
			log.WithError(err).Error("consumer: mark-failed failed, leaving delivery for redelivery")
			return
		}
		// The record already reads completed; the redelivered failure loses.
		log.WithError(err).Warn("consumer: failure discarded, job already completed")
	}

	c.metrics.JobFailed(elapsed)
	log.WithError(runErr).Warn("consumer: job failed")

	c.notifyOutcome(req.JobID)
	c.ack(ctx, d)
}

// ack removes the delivery from the queue. An ack failure is tolerated: the
// record store is authoritative and the eventual redelivery resolves as a
// duplicate terminal write, which the lifecycle absorbs.
func (c *Consumer) ack(ctx context.Context, d queuex.Delivery) {
	if err := c.queue.Ack(ctx, d); err != nil {
		logx.WithError(err).WithField("message_id", d.MessageID).
			Warn("consumer: ack failed, delivery will come back as a duplicate")
	}
}

// notifyOutcome emails the owner about the terminal state. Best effort and
// off the hot path; a notification failure never affects the job record.
func (c *Consumer) notifyOutcome(jobID string) {
	if c.notifier == nil {
		return
	}
	asyncx.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		j, err := c.svc.repo.Get(ctx, jobID)
		if err != nil {
			logx.WithError(err).WithField("job_id", jobID).
				Warn("consumer: could not load job for notification")
			return
		}
		if err := c.notifier.NotifyOutcome(ctx, j); err != nil {
			logx.WithError(err).WithField("job_id", jobID).
				Warn("consumer: outcome notification failed")
		}
	})
}

// buildDiagnostic assembles the error_log written on failure. It carries
// enough of the request to debug the run without the original message.
func buildDiagnostic(req *job.ExecutionRequest, messageID string, runErr error) string {
	params := "{}"
	if len(req.Parameters) > 0 {
		if b, err := json.Marshal(req.Parameters); err == nil {
			params = string(b)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "error: %v\n", runErr)
	fmt.Fprintf(&b, "target_name: %s\n", req.TargetName)
	fmt.Fprintf(&b, "resource_locator: %s\n", req.ResourceLocator)
	fmt.Fprintf(&b, "parameters: %s\n", params)
	fmt.Fprintf(&b, "delivery_message_id: %s\n", messageID)
	fmt.Fprintf(&b, "time: %s", time.Now().UTC().Format(time.RFC3339))
	return b.String()
}
