package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

// LogSink writes ledger events to the structured log. It is the audit sink
// when no Mongo database is configured.
type LogSink struct {
	log zerolog.Logger
}

var _ ports.AuditSink = LogSink{}

func NewLogSink(log zerolog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Record(_ context.Context, ev domain.LedgerEvent) error {
	s.log.Info().
		Str("user_id", ev.UserID).
		Str("kind", string(ev.Kind)).
		Int64("amount", ev.Amount).
		Int64("balance", ev.Balance).
		Str("tx_id", ev.TransactionID).
		Time("at", ev.At).
		Msg("ledger event")
	return nil
}
