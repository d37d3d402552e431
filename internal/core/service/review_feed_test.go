package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
)

func TestReviewFeed_RefreshAndSubscribe(t *testing.T) {
	store := newMemKV()
	seedUser(store, testUser("u1", "a@x.com", 10))
	clock := newFakeClock(day0)
	ledger, _ := newTestLedger(t, store, clock, AdminSeed{})
	ctx := context.Background()
	plan, _ := domain.FindPlan("plan_trial")

	feed := NewReviewFeed(ledger, time.Hour, zerolog.Nop())
	ch, cancel := feed.Subscribe()
	defer cancel()

	first, _ := ledger.CreateTransaction(ctx, "u1", "A", plan, "1")
	clock.Advance(time.Minute)
	second, _ := ledger.CreateTransaction(ctx, "u1", "A", plan, "2")
	_, _ = ledger.SetTransactionStatus(ctx, first.ID, domain.TxApproved)

	feed.Refresh(ctx)
	feed.Refresh(ctx)

	snap := <-ch
	if len(snap.Pending) != 1 || snap.Pending[0].ID != second.ID {
		t.Fatalf("unexpected pending: %+v", snap.Pending)
	}
	if len(snap.Transactions) != 2 || snap.Transactions[0].ID != second.ID {
		t.Fatalf("expected all transactions newest first: %+v", snap.Transactions)
	}
	if len(snap.Users) != 1 || snap.Users[0].Coins != 30 {
		t.Fatalf("unexpected users: %+v", snap.Users)
	}

	select {
	case extra := <-ch:
		t.Fatalf("slow subscriber should only hold the latest snapshot, got another: %+v", extra)
	default:
	}
}

func TestReviewFeed_SubscribePrimedAndStop(t *testing.T) {
	store := newMemKV()
	seedUser(store, testUser("u1", "a@x.com", 10))
	ledger, _ := newTestLedger(t, store, newFakeClock(day0), AdminSeed{})

	feed := NewReviewFeed(ledger, time.Hour, zerolog.Nop())
	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ch, _ := feed.Subscribe()
	select {
	case snap := <-ch:
		if len(snap.Users) != 1 {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected primed snapshot")
	}

	feed.Stop()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed after Stop")
	}
}
