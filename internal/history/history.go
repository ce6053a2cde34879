package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/loykin/warden/internal/supervisor"
)

// Event is a lifecycle audit record: one public supervisor operation and its
// outcome, with the status cached at that point.
type Event struct {
	Op         string    `json:"op"`
	OK         bool      `json:"ok"`
	Status     string    `json:"status"`
	PID        int       `json:"pid"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink is a destination for lifecycle events (audit/analytics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// sendTimeout bounds a single sink write so a slow backend cannot stall the
// supervisor's operation path.
const sendTimeout = 2 * time.Second

// NewObserver adapts a Sink into a supervisor.Observer. Sink errors are
// logged and dropped; auditing must never fail a lifecycle operation.
func NewObserver(sink Sink, log *slog.Logger) supervisor.Observer {
	if log == nil {
		log = slog.Default()
	}
	return func(op supervisor.Op, ok bool, status supervisor.Status, pid int) {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		e := Event{
			Op:         string(op),
			OK:         ok,
			Status:     status.String(),
			PID:        pid,
			OccurredAt: time.Now(),
		}
		if err := sink.Send(ctx, e); err != nil {
			log.Warn("history sink send failed", "op", e.Op, "error", err)
		}
	}
}
