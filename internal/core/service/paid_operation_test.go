package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
)

func newTestRunner(t *testing.T, coins int64) (*PaidRunner, *LedgerService, *[]domain.OperationState) {
	t.Helper()
	store := newMemKV()
	seedUser(store, testUser("u1", "a@x.com", coins))
	ledger, _ := newTestLedger(t, store, newFakeClock(day0), AdminSeed{})

	var states []domain.OperationState
	runner := NewPaidRunner(ledger, zerolog.Nop()).WithObserver(func(_ domain.Feature, _ string, s domain.OperationState) {
		states = append(states, s)
	})
	return runner, ledger, &states
}

func balance(t *testing.T, ledger *LedgerService, id string) int64 {
	t.Helper()
	u, err := ledger.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	return u.Coins
}

func TestRunPaid_Blocked(t *testing.T) {
	runner, ledger, states := newTestRunner(t, 0)
	called := false

	_, err := RunPaid(context.Background(), runner, domain.FeatureGenerate, "u1", 1, func(context.Context) (string, error) {
		called = true
		return "ok", nil
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if called {
		t.Fatalf("operation must not run without a debit")
	}
	if got := balance(t, ledger, "u1"); got != 0 {
		t.Fatalf("balance changed: %d", got)
	}
	if len(*states) != 1 || (*states)[0] != domain.OpBlocked {
		t.Fatalf("unexpected states: %v", *states)
	}
}

func TestRunPaid_Success(t *testing.T) {
	runner, ledger, states := newTestRunner(t, 5)

	out, err := RunPaid(context.Background(), runner, domain.FeatureGenerate, "u1", 1, func(context.Context) (string, error) {
		return "image", nil
	})
	if err != nil || out != "image" {
		t.Fatalf("unexpected result %q %v", out, err)
	}
	if got := balance(t, ledger, "u1"); got != 4 {
		t.Fatalf("expected 4 coins, got %d", got)
	}
	want := []domain.OperationState{domain.OpInFlight, domain.OpSettledSuccess}
	if len(*states) != 2 || (*states)[0] != want[0] || (*states)[1] != want[1] {
		t.Fatalf("unexpected states: %v", *states)
	}
}

func TestRunPaid_FailureRefunds(t *testing.T) {
	runner, ledger, states := newTestRunner(t, 5)
	backendErr := errors.New("model overloaded")

	_, err := RunPaid(context.Background(), runner, domain.FeatureEdit, "u1", 1, func(context.Context) (string, error) {
		if got := balance(t, ledger, "u1"); got != 4 {
			t.Errorf("expected debit before the call, got %d", got)
		}
		return "", backendErr
	})
	if !errors.Is(err, domain.ErrExternalOperationFailed) || !errors.Is(err, backendErr) {
		t.Fatalf("expected wrapped backend failure, got %v", err)
	}
	if got := balance(t, ledger, "u1"); got != 5 {
		t.Fatalf("expected refund to 5 coins, got %d", got)
	}
	if (*states)[len(*states)-1] != domain.OpSettledFailure {
		t.Fatalf("unexpected states: %v", *states)
	}
}

func TestRunPaid_RefundSurvivesCancellation(t *testing.T) {
	runner, ledger, _ := newTestRunner(t, 3)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := RunPaid(ctx, runner, domain.FeatureAnalyze, "u1", 2, func(ctx context.Context) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if got := balance(t, ledger, "u1"); got != 3 {
		t.Fatalf("expected full refund, got %d", got)
	}
}

func TestRunPaid_UnknownUser(t *testing.T) {
	runner, _, states := newTestRunner(t, 5)

	_, err := RunPaid(context.Background(), runner, domain.FeatureGenerate, "ghost", 1, func(context.Context) (int, error) {
		t.Fatalf("operation must not run")
		return 0, nil
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if (*states)[0] != domain.OpBlocked {
		t.Fatalf("unexpected states: %v", *states)
	}
}
