package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/artifact"
	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
	"github.com/joseph-ayodele/resume-analyzer/internal/queue"
	"github.com/joseph-ayodele/resume-analyzer/internal/retry"
	"github.com/joseph-ayodele/resume-analyzer/internal/status"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	technicalJSON = `{"technicalSummary":"solid backend engineer","skillMatch":["go","sql"],"experienceLevel":"senior","overallScore":82}`
	semanticJSON  = `{"semanticSummary":"clear narrative","keyThemes":["ownership"],"overallSentiment":"positive"}`
	psychoJSON    = `{"psychologicalTraits":["conscientious"],"risks":[],"trends":["growth"]}`
	summaryJSON   = `{"summary":"Strong candidate overall.","score":81}`
)

type stubClient struct {
	responses []string
	err       error
	calls     int
}

func (c *stubClient) CreateCompletion(_ context.Context, _ string, _ float32, _ []llm.Message) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if c.calls >= len(c.responses) {
		return "", errors.New("no more stub responses")
	}
	resp := c.responses[c.calls]
	c.calls++
	return resp, nil
}

type stubExtractor struct {
	text string
	err  error
}

func (e *stubExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return e.text, e.err
}

type published struct {
	queueName string
	msg       Message
	delay     time.Duration
}

type stubPublisher struct {
	sent []published
	err  error
}

func (p *stubPublisher) Publish(_ context.Context, queueName string, body []byte, _ amqp.Table) error {
	if p.err != nil {
		return p.err
	}
	msg, err := DecodeMessage(body)
	if err != nil {
		return err
	}
	p.sent = append(p.sent, published{queueName: queueName, msg: msg})
	return nil
}

func (p *stubPublisher) PublishDelayed(_ context.Context, queueName string, body []byte, _ amqp.Table, delay time.Duration) error {
	if p.err != nil {
		return p.err
	}
	msg, err := DecodeMessage(body)
	if err != nil {
		return err
	}
	p.sent = append(p.sent, published{queueName: queueName, msg: msg, delay: delay})
	return nil
}

type testRig struct {
	store   *artifact.MemoryStore
	records *status.MemoryRecordStore
	pub     *stubPublisher
	worker  *Worker
}

func newRig(client llm.Client, extractor *stubExtractor, policy retry.Policy) *testRig {
	store := artifact.NewMemoryStore()
	records := status.NewMemoryRecordStore()
	pub := &stubPublisher{}
	worker := &Worker{
		Extract: &ExtractStage{Store: store, Extractor: extractor, TTL: time.Hour, Logger: discard},
		Analyze: &AnalyzeStage{
			Store:       store,
			Service:     analysis.NewService(discard),
			Client:      client,
			Model:       "llama-3.1-8b-instant",
			Temperature: 0.2,
			TTL:         time.Hour,
			Logger:      discard,
		},
		Report:    &ReportStage{Store: store, TTL: time.Hour, Logger: discard},
		Records:   records,
		Publisher: pub,
		Retry:     policy,
		Logger:    discard,
	}
	return &testRig{store: store, records: records, pub: pub, worker: worker}
}

func submitted(t *testing.T, rig *testRig) Message {
	t.Helper()
	orch := &Orchestrator{
		Store:     rig.store,
		Records:   rig.records,
		Publisher: rig.pub,
		TTL:       time.Hour,
		Logger:    discard,
	}
	receipt, err := orch.Submit(context.Background(), Submission{
		FileName: "resume.pdf",
		PDF:      []byte("%PDF-1.4 fake"),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if receipt.TaskID == "" || len(receipt.FileID) != 32 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if len(rig.pub.sent) != 1 {
		t.Fatalf("expected 1 publish after submit, got %d", len(rig.pub.sent))
	}
	first := rig.pub.sent[0]
	if first.queueName != constants.QueueExtraction {
		t.Fatalf("first message queued on %q", first.queueName)
	}
	rig.pub.sent = nil
	return first.msg
}

func TestSubmitCreatesPendingRecord(t *testing.T) {
	rig := newRig(&stubClient{}, &stubExtractor{}, retry.Default)
	msg := submitted(t, rig)

	rec, err := rig.records.Get(context.Background(), msg.TaskID)
	if err != nil {
		t.Fatalf("Get record: %v", err)
	}
	if len(rec.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(rec.Stages))
	}
	for _, st := range rec.Stages {
		if st.State != constants.TaskStatePending {
			t.Fatalf("stage %s not pending: %s", st.Stage, st.State)
		}
	}
	if _, err := rig.store.Get(context.Background(), msg.FileID, artifact.KindPDF, 1); err != nil {
		t.Fatalf("pdf artifact missing: %v", err)
	}
}

func TestChainRunsToCompletion(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{responses: []string{technicalJSON, semanticJSON, psychoJSON, summaryJSON}}
	rig := newRig(client, &stubExtractor{text: "ten years of Go experience"}, retry.Default)

	msg := submitted(t, rig)
	for i := 0; i < 3; i++ {
		rig.worker.process(ctx, msg)
		if len(rig.pub.sent) == 0 {
			break
		}
		next := rig.pub.sent[len(rig.pub.sent)-1]
		rig.pub.sent = nil
		msg = next.msg
	}

	rec, err := rig.records.Get(ctx, msg.TaskID)
	if err != nil {
		t.Fatalf("Get record: %v", err)
	}
	for _, st := range rec.Stages {
		if st.State != constants.TaskStateSuccess {
			t.Fatalf("stage %s = %s, want SUCCESS", st.Stage, st.State)
		}
	}
	if rec.Result == nil || rec.Result.Summary == nil {
		t.Fatalf("result not attached: %+v", rec.Result)
	}
	if rec.Result.Score != 81 {
		t.Fatalf("score = %d, want 81", rec.Result.Score)
	}

	view := status.Resolve(rec)
	if view.State != constants.TaskStateSuccess || view.Progress != 100 {
		t.Fatalf("view = %+v, want finished", view)
	}

	var final status.FinalReport
	if err := artifact.GetJSON(ctx, rig.store, msg.FileID, artifact.KindFinal, 1, &final); err != nil {
		t.Fatalf("final artifact missing: %v", err)
	}
	if final.FileID != msg.FileID {
		t.Fatalf("final report file id = %q, want %q", final.FileID, msg.FileID)
	}
}

func TestExtractFailureHaltsChain(t *testing.T) {
	ctx := context.Background()
	rig := newRig(&stubClient{}, &stubExtractor{err: errors.New("no extractable text found in PDF")}, retry.Default)

	msg := submitted(t, rig)
	rig.worker.process(ctx, msg)

	if len(rig.pub.sent) != 0 {
		t.Fatalf("failed stage still published %d messages", len(rig.pub.sent))
	}
	rec, _ := rig.records.Get(ctx, msg.TaskID)
	view := status.Resolve(rec)
	if view.State != constants.TaskStateFailure || view.Progress != 100 {
		t.Fatalf("view = %+v, want terminal failure", view)
	}
	if view.Error == "" {
		t.Fatal("expected failure detail on view")
	}
}

func TestRateLimitReschedulesWithBackoff(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{err: common.ErrRateLimited}
	policy := retry.Policy{MaxRetries: 2, BaseDelay: 5 * time.Second, MaxDelay: time.Minute}
	rig := newRig(client, &stubExtractor{text: "some text"}, policy)

	msg := submitted(t, rig)
	rig.worker.process(ctx, msg) // extract succeeds, publishes analyze
	next := rig.pub.sent[0]
	if next.queueName != constants.QueueAnalysis {
		t.Fatalf("analyze queued on %q", next.queueName)
	}
	rig.pub.sent = nil
	msg = next.msg

	// First two runs hit the rate limit and go back on the queue.
	wantDelays := []time.Duration{5 * time.Second, 10 * time.Second}
	for i, want := range wantDelays {
		rig.worker.process(ctx, msg)
		if len(rig.pub.sent) != 1 {
			t.Fatalf("attempt %d: expected delayed republish, got %d publishes", i, len(rig.pub.sent))
		}
		got := rig.pub.sent[0]
		if got.delay != want {
			t.Fatalf("attempt %d: delay = %v, want %v", i, got.delay, want)
		}
		if got.msg.Attempts != i+1 {
			t.Fatalf("attempt %d: attempts = %d, want %d", i, got.msg.Attempts, i+1)
		}
		rec, _ := rig.records.Get(ctx, msg.TaskID)
		if view := status.Resolve(rec); view.State != constants.TaskStateRetry {
			t.Fatalf("attempt %d: view state = %s, want RETRY", i, view.State)
		}
		rig.pub.sent = nil
		msg = got.msg
	}

	// Budget spent: terminal failure with the rate-limit reason.
	rig.worker.process(ctx, msg)
	if len(rig.pub.sent) != 0 {
		t.Fatalf("exhausted job still published %d messages", len(rig.pub.sent))
	}
	rec, _ := rig.records.Get(ctx, msg.TaskID)
	view := status.Resolve(rec)
	if view.State != constants.TaskStateFailure {
		t.Fatalf("view state = %s, want FAILURE", view.State)
	}
	if view.Error != reasonRateLimit {
		t.Fatalf("view error = %q, want %q", view.Error, reasonRateLimit)
	}
}

func TestAggregationFailureFailsAnalyzeStage(t *testing.T) {
	ctx := context.Background()
	// Aggregation gets prose instead of JSON and degrades to status 500.
	client := &stubClient{responses: []string{technicalJSON, semanticJSON, psychoJSON, "no JSON here"}}
	rig := newRig(client, &stubExtractor{text: "some text"}, retry.Default)

	msg := submitted(t, rig)
	rig.worker.process(ctx, msg)
	next := rig.pub.sent[0]
	rig.pub.sent = nil
	rig.worker.process(ctx, next.msg)

	if len(rig.pub.sent) != 0 {
		t.Fatalf("failed analyze stage still published %d messages", len(rig.pub.sent))
	}
	rec, _ := rig.records.Get(ctx, msg.TaskID)
	view := status.Resolve(rec)
	if view.State != constants.TaskStateFailure {
		t.Fatalf("view state = %s, want FAILURE", view.State)
	}
	if !strings.Contains(view.Error, "aggregation failed") {
		t.Fatalf("view error = %q", view.Error)
	}
}

type stubAcknowledger struct {
	acked  int
	nacked int
}

func (a *stubAcknowledger) Ack(_ uint64, _ bool) error     { a.acked++; return nil }
func (a *stubAcknowledger) Nack(_ uint64, _, _ bool) error { a.nacked++; return nil }
func (a *stubAcknowledger) Reject(_ uint64, _ bool) error  { a.nacked++; return nil }

func TestHandleDeliveryAcksAfterProcessing(t *testing.T) {
	rig := newRig(&stubClient{}, &stubExtractor{text: "text"}, retry.Default)
	msg := submitted(t, rig)
	body, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	ack := &stubAcknowledger{}
	rig.worker.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body})
	if ack.acked != 1 || ack.nacked != 0 {
		t.Fatalf("acked=%d nacked=%d, want 1/0", ack.acked, ack.nacked)
	}
}

func TestHandleDeliveryRejectsGarbage(t *testing.T) {
	rig := newRig(&stubClient{}, &stubExtractor{}, retry.Default)
	ack := &stubAcknowledger{}
	rig.worker.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("not json")})
	if ack.nacked != 1 || ack.acked != 0 {
		t.Fatalf("acked=%d nacked=%d, want 0/1", ack.acked, ack.nacked)
	}
}

func TestMessageNextResetsAttempts(t *testing.T) {
	msg := Message{Stage: constants.StageExtract, TaskID: "t", FileID: "f", Attempts: 3}
	next := msg.Next(constants.StageAnalyze)
	if next.Stage != constants.StageAnalyze || next.Attempts != 0 {
		t.Fatalf("next = %+v", next)
	}
	if next.TaskID != "t" || next.FileID != "f" {
		t.Fatalf("ids not carried: %+v", next)
	}
}

var _ queue.Publisher = (*stubPublisher)(nil)
