package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

// ReviewFeed periodically rebuilds the admin snapshot and pushes it to
// subscribers. A slow subscriber only ever holds the most recent snapshot.
type ReviewFeed struct {
	ledger   ports.Ledger
	interval time.Duration
	log      zerolog.Logger
	cron     *cron.Cron

	mu     sync.Mutex
	last   domain.ReviewSnapshot
	nextID int
	subs   map[int]chan domain.ReviewSnapshot
}

var _ ports.ReviewFeed = (*ReviewFeed)(nil)

func NewReviewFeed(ledger ports.Ledger, interval time.Duration, log zerolog.Logger) *ReviewFeed {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ReviewFeed{
		ledger:   ledger,
		interval: interval,
		log:      log,
		subs:     make(map[int]chan domain.ReviewSnapshot),
	}
}

// Start schedules the refresh job and publishes an initial snapshot.
func (f *ReviewFeed) Start(ctx context.Context) error {
	f.Refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", f.interval), func() { f.Refresh(ctx) }); err != nil {
		return fmt.Errorf("schedule review feed: %w", err)
	}
	c.Start()

	f.mu.Lock()
	f.cron = c
	f.mu.Unlock()
	f.log.Info().Dur("interval", f.interval).Msg("review feed started")
	return nil
}

// Stop halts the schedule and closes every subscription.
func (f *ReviewFeed) Stop() {
	f.mu.Lock()
	c := f.cron
	f.cron = nil
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
	f.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Refresh rebuilds the snapshot from the ledger and fans it out.
func (f *ReviewFeed) Refresh(ctx context.Context) domain.ReviewSnapshot {
	all := f.ledger.ListTransactionsByStatus(ctx, "")
	pending := make([]domain.Transaction, 0)
	for _, tx := range all {
		if tx.Status == domain.TxPending {
			pending = append(pending, tx)
		}
	}
	snap := domain.ReviewSnapshot{
		Pending:      pending,
		Transactions: all,
		Users:        f.ledger.ListUsers(ctx),
		At:           time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = snap
	for _, ch := range f.subs {
		offer(ch, snap)
	}
	return snap
}

// Snapshot returns the most recently built snapshot.
func (f *ReviewFeed) Snapshot() domain.ReviewSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Subscribe registers a receiver. The channel is primed with the current
// snapshot and closed by the returned cancel func or by Stop.
func (f *ReviewFeed) Subscribe() (<-chan domain.ReviewSnapshot, func()) {
	ch := make(chan domain.ReviewSnapshot, 1)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	if !f.last.At.IsZero() {
		ch <- f.last
	}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			close(c)
			delete(f.subs, id)
		}
	}
	return ch, cancel
}

// offer replaces any unread snapshot in ch with snap. Callers hold f.mu.
func offer(ch chan domain.ReviewSnapshot, snap domain.ReviewSnapshot) {
	select {
	case <-ch:
	default:
	}
	ch <- snap
}
