package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
	"github.com/lumina-ai/studio/internal/pkg/metrics"
)

// StateObserver is notified of every paid-operation state change.
type StateObserver func(feature domain.Feature, userID string, state domain.OperationState)

// PaidRunner holds what RunPaid needs: the balance to debit and refund
// against, a logger, and an optional observer.
type PaidRunner struct {
	balance ports.Balance
	log     zerolog.Logger
	observe StateObserver
}

func NewPaidRunner(balance ports.Balance, log zerolog.Logger) *PaidRunner {
	return &PaidRunner{balance: balance, log: log}
}

// WithObserver registers fn to receive state changes.
func (r *PaidRunner) WithObserver(fn StateObserver) *PaidRunner {
	r.observe = fn
	return r
}

// RunPaid charges price to userID and then runs op.
//
//	idle ──debit fails──▶ blocked          (op never runs)
//	idle ──debit ok────▶ in_flight ──ok──▶ settled_success
//	                               └─err─▶ refund ─▶ settled_failure
//
// The refund is exactly price and happens before the error is returned, so a
// caller never observes a failure while still missing coins. It runs on a
// context detached from ctx's cancellation: a client that went away is still
// refunded.
func RunPaid[T any](ctx context.Context, r *PaidRunner, feature domain.Feature, userID string, price int64, op func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := r.balance.Debit(ctx, userID, price); err != nil {
		r.transition(feature, userID, domain.OpBlocked)
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return zero, err
		}
		return zero, fmt.Errorf("%s: debit: %w", feature, err)
	}

	r.transition(feature, userID, domain.OpInFlight)
	start := time.Now()
	out, err := op(ctx)
	metrics.ImageBackendDuration.WithLabelValues(string(feature)).Observe(time.Since(start).Seconds())

	if err != nil {
		if rerr := r.balance.Credit(context.WithoutCancel(ctx), userID, price); rerr != nil {
			r.log.Error().Err(rerr).Str("user_id", userID).Str("feature", string(feature)).Int64("amount", price).Msg("refund failed")
		}
		r.transition(feature, userID, domain.OpSettledFailure)
		r.log.Warn().Err(err).Str("user_id", userID).Str("feature", string(feature)).Msg("image backend failed, coins refunded")
		return zero, fmt.Errorf("%s: %w: %w", feature, domain.ErrExternalOperationFailed, err)
	}

	r.transition(feature, userID, domain.OpSettledSuccess)
	return out, nil
}

func (r *PaidRunner) transition(feature domain.Feature, userID string, state domain.OperationState) {
	f := string(feature)
	switch state {
	case domain.OpInFlight:
		metrics.PaidOperationsInFlight.WithLabelValues(f).Inc()
	case domain.OpSettledSuccess, domain.OpSettledFailure:
		metrics.PaidOperationsInFlight.WithLabelValues(f).Dec()
		metrics.PaidOperationsTotal.WithLabelValues(f, string(state)).Inc()
	case domain.OpBlocked:
		metrics.PaidOperationsTotal.WithLabelValues(f, string(state)).Inc()
	}

	r.log.Debug().Str("user_id", userID).Str("feature", f).Str("state", string(state)).Msg("paid operation")
	if r.observe != nil {
		r.observe(feature, userID, state)
	}
}
