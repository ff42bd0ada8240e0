package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTTL bounds how long an artifact outlives its write.
const DefaultTTL = time.Hour

// Artifact kinds. Per-job analysis results use Analysis(name).
const (
	KindPDF   = "cv_pdf"
	KindText  = "text"
	KindFinal = "final"
)

// Analysis returns the kind under which a named analysis result is stored.
func Analysis(name string) string {
	return "analysis:" + name
}

// Key builds the deterministic store key. Stages only ever need the file_id;
// the rest of the key is fixed by convention.
func Key(fileID, kind string, version int) string {
	return fmt.Sprintf("resume:%s:%s:v%d", fileID, kind, version)
}

// Store passes data between pipeline stages and caches final results.
// Every write is a full replace that resets the entry's expiry. A Get after
// expiry is indistinguishable from a Get of a key never written; both return
// common.ErrArtifactMissing.
type Store interface {
	Put(ctx context.Context, fileID, kind string, version int, payload []byte, ttl time.Duration) error
	Get(ctx context.Context, fileID, kind string, version int) ([]byte, error)
}

// PutJSON marshals v and stores it under the given key.
func PutJSON(ctx context.Context, s Store, fileID, kind string, version int, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", kind, err)
	}
	return s.Put(ctx, fileID, kind, version, b, ttl)
}

// GetJSON loads the key and unmarshals it into v.
func GetJSON(ctx context.Context, s Store, fileID, kind string, version int, v any) error {
	b, err := s.Get(ctx, fileID, kind, version)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal artifact %s: %w", kind, err)
	}
	return nil
}
