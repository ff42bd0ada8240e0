package extract

import "context"

// TextExtractor is the interface the extract stage depends on.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}
