package artifact

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
)

func TestKeyFormat(t *testing.T) {
	got := Key("abc123", KindText, 1)
	want := "resume:abc123:text:v1"
	if got != want {
		t.Fatalf("unexpected key: got %q, want %q", got, want)
	}
	if k := Key("abc123", Analysis("full"), 1); k != "resume:abc123:analysis:full:v1" {
		t.Fatalf("unexpected analysis key: %q", k)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("%PDF-1.4 fake bytes")
	if err := s.Put(ctx, "f1", KindPDF, 1, payload, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "f1", KindPDF, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %q", got)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := s.Put(ctx, "f1", KindText, 1, []byte("resume text"), time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(time.Hour + time.Second)
	_, err := s.Get(ctx, "f1", KindText, 1)
	if !errors.Is(err, common.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing after expiry, got %v", err)
	}

	// Expired and never-written must be indistinguishable.
	_, err2 := s.Get(ctx, "f2", KindText, 1)
	if !errors.Is(err2, common.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing for absent key, got %v", err2)
	}
}

func TestMemoryStoreOverwriteResetsExpiry(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := s.Put(ctx, "f1", KindText, 1, []byte("old"), time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	now = now.Add(50 * time.Second)
	if err := s.Put(ctx, "f1", KindText, 1, []byte("new"), time.Minute); err != nil {
		t.Fatalf("second put: %v", err)
	}

	now = now.Add(30 * time.Second) // past the first deadline, inside the second
	got, err := s.Get(ctx, "f1", KindText, 1)
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("expected overwritten payload, got %q", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type report struct {
		Summary string `json:"summary"`
		Score   int    `json:"score"`
	}
	in := report{Summary: "solid candidate", Score: 82}
	if err := PutJSON(ctx, s, "f1", KindFinal, 1, in, 0); err != nil {
		t.Fatalf("put json: %v", err)
	}

	var out report
	if err := GetJSON(ctx, s, "f1", KindFinal, 1, &out); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
}
