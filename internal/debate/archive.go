package debate

import (
	"context"
	"time"
)

// Record is a topic's final state handed to an Archive.
type Record struct {
	Topic      Snapshot      `json:"topic"`
	Messages   []ChatMessage `json:"messages"`
	ArchivedAt time.Time     `json:"archivedAt"`
}

// Archive stores transcripts that outlive the process.
type Archive interface {
	SaveTranscript(ctx context.Context, record Record) error
}
