package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/queue"
	"github.com/joseph-ayodele/resume-analyzer/internal/retry"
	"github.com/joseph-ayodele/resume-analyzer/internal/status"
)

// The terminal error recorded when the retry budget for a rate-limited
// stage runs out.
const reasonRateLimit = "rate_limit"

// Worker consumes stage messages from both queues and drives the chain.
// Deliveries are acknowledged only after the stage finishes, so a worker
// crash returns the message to the queue once the visibility timeout
// elapses.
type Worker struct {
	Extract     *ExtractStage
	Analyze     *AnalyzeStage
	Report      *ReportStage
	Records     status.RecordStore
	Publisher   queue.Publisher
	Retry       retry.Policy
	Concurrency int
	Logger      *slog.Logger
}

// Run consumes the extraction and analysis queues until the context is
// cancelled. Each queue gets Concurrency goroutines draining a shared
// delivery channel.
func (w *Worker) Run(ctx context.Context, broker *queue.RabbitMQ, visibility time.Duration) error {
	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	var wg sync.WaitGroup
	for _, name := range []string{constants.QueueExtraction, constants.QueueAnalysis} {
		if err := broker.DeclareQueue(name, visibility); err != nil {
			return err
		}
		deliveries, err := broker.Consume(name, concurrency)
		if err != nil {
			return err
		}
		for i := 0; i < concurrency; i++ {
			wg.Add(1)
			go func(ch <-chan amqp.Delivery) {
				defer wg.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case d, ok := <-ch:
						if !ok {
							return
						}
						w.handleDelivery(ctx, d)
					}
				}
			}(deliveries)
		}
	}

	w.Logger.Info("worker.started", "concurrency", concurrency)
	wg.Wait()
	return ctx.Err()
}

// handleDelivery runs one stage message to completion and acknowledges it.
// Only an undecodable body is rejected outright; every decoded message is
// acked after processing, with failures recorded on the job rather than
// redelivered.
func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	msg, err := DecodeMessage(d.Body)
	if err != nil {
		w.Logger.Error("worker.message.invalid", "error", err)
		_ = d.Nack(false, false)
		return
	}

	w.process(ctx, msg)
	_ = d.Ack(false)
}

func (w *Worker) process(ctx context.Context, msg Message) {
	// Provider calls made on behalf of this job log the task id as req_id.
	ctx = common.WithRequestID(ctx, msg.TaskID)
	logger := w.Logger.With("task_id", msg.TaskID, "stage", string(msg.Stage))

	rec, err := w.Records.Get(ctx, msg.TaskID)
	if err != nil {
		// The record may have expired; run the stage anyway so artifacts
		// still land, but nothing is trackable.
		logger.Warn("worker.record.missing", "error", err)
		rec = status.NewRecord(msg.TaskID, msg.FileID, msg.FileName)
	}

	w.setStage(ctx, rec, msg.Stage, constants.TaskStateStarted, "")

	next, report, err := w.runStage(ctx, msg)
	switch {
	case err == nil:
		if report != nil {
			rec.Result = report
		}
		w.setStage(ctx, rec, msg.Stage, constants.TaskStateSuccess, "")
		if next != nil {
			if err := publish(ctx, w.Publisher, *next); err != nil {
				logger.Error("worker.publish_next.failed", "error", err)
				w.setStage(ctx, rec, next.Stage, constants.TaskStateFailure, err.Error())
			}
		}

	case errors.Is(err, common.ErrRateLimited):
		w.reschedule(ctx, rec, msg, logger)

	default:
		logger.Error("worker.stage.failed", "error", err)
		w.setStage(ctx, rec, msg.Stage, constants.TaskStateFailure, err.Error())
	}
}

func (w *Worker) runStage(ctx context.Context, msg Message) (*Message, *status.FinalReport, error) {
	switch msg.Stage {
	case constants.StageExtract:
		next, err := w.Extract.Run(ctx, msg)
		return next, nil, err
	case constants.StageAnalyze:
		next, err := w.Analyze.Run(ctx, msg)
		return next, nil, err
	case constants.StageReport:
		report, err := w.Report.Run(ctx, msg)
		return nil, report, err
	default:
		return nil, nil, fmt.Errorf("unknown stage %q", msg.Stage)
	}
}

// reschedule applies the retry policy to a rate-limited stage: either the
// message goes back on its own queue after a backoff delay, or the budget
// is spent and the job fails.
func (w *Worker) reschedule(ctx context.Context, rec *status.Record, msg Message, logger *slog.Logger) {
	decision := w.Retry.Decide(msg.Attempts)
	if !decision.Retry {
		logger.Error("worker.rate_limit.exhausted", "attempts", msg.Attempts)
		w.setStage(ctx, rec, msg.Stage, constants.TaskStateFailure, reasonRateLimit)
		return
	}

	msg.Attempts++
	logger.Warn("worker.rate_limit.retry",
		"attempt", msg.Attempts,
		"delay_ms", decision.Delay.Milliseconds())
	w.setStage(ctx, rec, msg.Stage, constants.TaskStateRetry, "")
	if err := publishDelayed(ctx, w.Publisher, msg, decision.Delay); err != nil {
		logger.Error("worker.reschedule.failed", "error", err)
		w.setStage(ctx, rec, msg.Stage, constants.TaskStateFailure, err.Error())
	}
}

func (w *Worker) setStage(ctx context.Context, rec *status.Record, stage constants.Stage, state constants.TaskState, errMsg string) {
	rec.SetStage(stage, state, errMsg)
	if err := w.Records.Save(ctx, rec); err != nil {
		w.Logger.Error("worker.record.save_failed", "task_id", rec.TaskID, "error", err)
	}
}
