package worker

import (
	"context"
	"fmt"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/mirror"
	"hisab/internal/store"
)

// MirrorWorker keeps an external table mirror in sync with the record store.
// Change messages only signal that something changed; the worker always
// re-reads the full table and replaces the mirror, so a lost or reordered
// message is repaired by the next one.
type MirrorWorker struct {
	store  *store.Store
	mirror mirror.TableWriter
}

func NewMirrorWorker(s *store.Store, m mirror.TableWriter) *MirrorWorker {
	return &MirrorWorker{store: s, mirror: m}
}

// HandleChange processes a single table change message from AMQP.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"op", msg.Op,
		"index", msg.Index)

	if err := w.Resync(ctx); err != nil {
		return fmt.Errorf("resync after %s: %w", msg.Op, err)
	}
	return nil
}

// Resync reads the full table and replaces the mirror with it. It is also
// called at startup and on a timer to recover from missed messages.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	rows := w.store.Load(ctx)

	if err := w.mirror.Replace(ctx, rows); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}

	slog.InfoContext(ctx, "Mirror resynced", "rows", len(rows))
	return nil
}
