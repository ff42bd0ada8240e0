package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/artifact"
	"github.com/joseph-ayodele/resume-analyzer/internal/queue"
	"github.com/joseph-ayodele/resume-analyzer/internal/status"
)

// Submission is an upload accepted by the API, with optional per-job model
// parameters.
type Submission struct {
	FileName    string
	PDF         []byte
	Model       string
	Temperature *float32
	Threshold   int
	Criteria    *analysis.Criteria
	JDPrompt    string
}

// Receipt identifies an accepted job.
type Receipt struct {
	TaskID   string `json:"task_id"`
	FileID   string `json:"file_id"`
	FileName string `json:"filename"`
}

// Orchestrator accepts uploads and kicks off the processing chain. It stores
// the raw PDF, creates the job record and publishes the first stage message.
type Orchestrator struct {
	Store     artifact.Store
	Records   status.RecordStore
	Publisher queue.Publisher
	TTL       time.Duration
	Logger    *slog.Logger
}

// NewFileID returns a fresh 128-bit hex file identifier.
func NewFileID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return hex.EncodeToString(b[:])
}

// Submit stores the PDF, creates a pending job record and enqueues the
// extraction stage. The artifact write happens before the publish so a
// worker can never observe a message without its input.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	taskID := uuid.NewString()
	fileID := NewFileID()

	if err := o.Store.Put(ctx, fileID, artifact.KindPDF, 1, sub.PDF, o.TTL); err != nil {
		return Receipt{}, fmt.Errorf("store pdf artifact: %w", err)
	}

	rec := status.NewRecord(taskID, fileID, sub.FileName)
	if err := o.Records.Save(ctx, rec); err != nil {
		return Receipt{}, fmt.Errorf("save job record: %w", err)
	}

	msg := Message{
		Stage:       constants.StageExtract,
		TaskID:      taskID,
		FileID:      fileID,
		FileName:    sub.FileName,
		Model:       sub.Model,
		Temperature: sub.Temperature,
		Threshold:   sub.Threshold,
		Criteria:    sub.Criteria,
		JDPrompt:    sub.JDPrompt,
	}
	if err := publish(ctx, o.Publisher, msg); err != nil {
		return Receipt{}, err
	}

	o.Logger.Info("pipeline.submit.ok",
		"task_id", taskID,
		"file_id", fileID,
		"file_name", sub.FileName,
		"size_bytes", len(sub.PDF))

	return Receipt{TaskID: taskID, FileID: fileID, FileName: sub.FileName}, nil
}

func publish(ctx context.Context, pub queue.Publisher, msg Message) error {
	body, err := msg.Encode()
	if err != nil {
		return err
	}
	headers := amqp.Table{
		queue.HeaderStage:    string(msg.Stage),
		queue.HeaderAttempts: int32(msg.Attempts),
	}
	if err := pub.Publish(ctx, msg.Stage.Queue(), body, headers); err != nil {
		return fmt.Errorf("publish %s message: %w", msg.Stage, err)
	}
	return nil
}

func publishDelayed(ctx context.Context, pub queue.Publisher, msg Message, delay time.Duration) error {
	body, err := msg.Encode()
	if err != nil {
		return err
	}
	headers := amqp.Table{
		queue.HeaderStage:    string(msg.Stage),
		queue.HeaderAttempts: int32(msg.Attempts),
	}
	if err := pub.PublishDelayed(ctx, msg.Stage.Queue(), body, headers, delay); err != nil {
		return fmt.Errorf("republish %s message: %w", msg.Stage, err)
	}
	return nil
}
