package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Publisher delivers serialized entries to an external stream (Kafka in
// production). Implementations must be safe for use from a single goroutine.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// mirrorPayload is the JSON structure published downstream. All fields are
// flat strings for consumer friendliness; details keep their typed shape.
type mirrorPayload struct {
	ID        string          `json:"id"`
	Actor     string          `json:"actor,omitempty"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	Timestamp string          `json:"timestamp"`
	PrevHash  string          `json:"prev_hash,omitempty"`
	Hash      string          `json:"hash"`
}

// MirrorWorker drains the recorder's mirror channel and publishes each entry.
// The chain store is the source of truth; a publish failure is logged and the
// entry dropped rather than blocking appends or corrupting ordering.
type MirrorWorker struct {
	publisher Publisher
	inbox     <-chan *Entry
	logger    *slog.Logger
}

func NewMirrorWorker(publisher Publisher, inbox <-chan *Entry, logger *slog.Logger) *MirrorWorker {
	return &MirrorWorker{publisher: publisher, inbox: inbox, logger: logger}
}

func (w *MirrorWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-w.inbox:
			if err := w.publish(ctx, entry); err != nil {
				w.logger.ErrorContext(ctx, "audit mirror publish failed",
					"entry_id", entry.ID.String(),
					"action", string(entry.Action),
					"error", err.Error(),
				)
			}
		}
	}
}

func (w *MirrorWorker) publish(ctx context.Context, entry *Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	payload := mirrorPayload{
		ID:        entry.ID.String(),
		Action:    string(entry.Action),
		Details:   details,
		Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
		PrevHash:  entry.PrevHash,
		Hash:      entry.Hash,
	}
	if entry.Actor != nil {
		payload.Actor = entry.Actor.String()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// Key by vault when scoped so per-vault ordering survives partitioning.
	key := entry.ID.String()
	if vaultID, ok := entry.VaultID(); ok {
		key = vaultID.String()
	}
	return w.publisher.Publish(ctx, key, body)
}
