package notify

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Emitter appends user-facing messages to the notifications table. Writes
// are advisory: a failed insert is logged and dropped, never retried and
// never surfaced to the operation that triggered it.
type Emitter struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewEmitter(pool *pgxpool.Pool, logger *slog.Logger) *Emitter {
	return &Emitter{pool: pool, logger: logger}
}

// Emit records a notification for the account. Fire-and-forget.
func (e *Emitter) Emit(ctx context.Context, accountID int64, kind, title, body string) {
	const insertSQL = `
		INSERT INTO notifications (account_id, kind, title, body, read)
		VALUES ($1, $2, $3, $4, false)
	`
	if _, err := e.pool.Exec(ctx, insertSQL, accountID, kind, title, body); err != nil {
		e.logger.Warn("notification write failed",
			"account_id", accountID,
			"kind", kind,
			"error", err,
		)
	}
}
