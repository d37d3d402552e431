package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
	"github.com/lumina-ai/studio/internal/pkg/metrics"
)

const adminID = "admin_001"

// AdminSeed describes the canonical admin account provisioned at startup.
// PasswordHash is a bcrypt hash of the bootstrap credential; it is only
// written when the admin is created or still has no credential.
type AdminSeed struct {
	Email        string
	Name         string
	PasswordHash string
	Coins        int64
}

// LedgerOptions configures a LedgerService.
type LedgerOptions struct {
	DailyReward int64
	// Location is the calendar the daily reward is evaluated in.
	Location *time.Location
	Admin    AdminSeed
	// Events receives every mutation. Publish must not block.
	Events ports.EventPublisher
	Clock  func() time.Time
}

// LedgerService owns the User and Transaction collections. Each operation
// reloads the collection from the store, mutates it and writes it back in
// full while holding mu, so no two read-modify-write sequences interleave.
type LedgerService struct {
	store       ports.KVStore
	events      ports.EventPublisher
	log         zerolog.Logger
	clock       func() time.Time
	loc         *time.Location
	dailyReward int64
	admin       AdminSeed

	mu sync.Mutex
}

var _ ports.Ledger = (*LedgerService)(nil)

// NewLedgerService builds the ledger and reconciles the admin account. It is
// safe to construct any number of times against the same store.
func NewLedgerService(ctx context.Context, store ports.KVStore, opts LedgerOptions, log zerolog.Logger) *LedgerService {
	s := &LedgerService{
		store:       store,
		events:      opts.Events,
		log:         log,
		clock:       opts.Clock,
		loc:         opts.Location,
		dailyReward: opts.DailyReward,
		admin:       opts.Admin,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.reconcileAdmin(ctx)
	return s
}

// reconcileAdmin guarantees exactly one admin record keyed by the configured
// admin email. When that email is absent, every other admin-role account is
// dropped and a fresh admin is appended.
func (s *LedgerService) reconcileAdmin(ctx context.Context) {
	if s.admin.Email == "" {
		s.log.Warn().Msg("no admin email configured, skipping admin provisioning")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("users unreadable, admin provisioning skipped")
		return
	}
	for i := range users {
		if users[i].Email != s.admin.Email {
			continue
		}
		if users[i].PasswordHash == "" && s.admin.PasswordHash != "" {
			users[i].PasswordHash = s.admin.PasswordHash
			if err := s.saveUsers(ctx, users); err != nil {
				s.log.Error().Err(err).Msg("failed to store admin credential")
				return
			}
			s.log.Info().Str("email", s.admin.Email).Msg("admin bootstrap credential installed")
		}
		return
	}

	kept := make([]domain.User, 0, len(users)+1)
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			s.log.Warn().Str("user_id", u.ID).Str("email", u.Email).Msg("removing stale admin account")
			continue
		}
		kept = append(kept, u)
	}

	now := s.clock()
	name := s.admin.Name
	if name == "" {
		name = "Super Admin"
	}
	admin := domain.User{
		ID:              adminID,
		Email:           s.admin.Email,
		Name:            name,
		Avatar:          domain.AvatarURL("Admin"),
		Role:            domain.RoleAdmin,
		Coins:           s.admin.Coins,
		Plan:            domain.PlanInfinite,
		LastDailyReward: &now,
		PasswordHash:    s.admin.PasswordHash,
	}
	kept = append(kept, admin)

	if err := s.saveUsers(ctx, kept); err != nil {
		s.log.Error().Err(err).Msg("failed to provision admin account")
		return
	}
	s.log.Info().Str("email", admin.Email).Msg("admin account provisioned")
	s.publish(domain.LedgerEvent{UserID: admin.ID, Kind: domain.EventAdminBootstrap, Amount: admin.Coins, Balance: admin.Coins, At: now})
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *LedgerService) ListUsers(ctx context.Context) []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list users failed")
		return []domain.User{}
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// GetUser returns the public view of the user with the given id.
func (s *LedgerService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfUser(users, id)
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	u := users[i].Public()
	return &u, nil
}

// FindUserByEmail returns the full record, credential included. Emails match
// exactly; "A@x.com" and "a@x.com" are different accounts.
func (s *LedgerService) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// CreateUser appends a new account. The uniqueness check and the append
// happen in one critical section.
func (s *LedgerService) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.ID == "" || user.Email == "" {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidInput)
	}
	if user.Coins < 0 {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	for _, u := range users {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateAccount
		}
		if u.ID == user.ID {
			return nil, fmt.Errorf("create user: duplicate id %s", user.ID)
		}
	}
	users = append(users, user)
	if err := s.saveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if user.Coins > 0 {
		s.publish(domain.LedgerEvent{UserID: user.ID, Kind: domain.EventSignupBonus, Amount: user.Coins, Balance: user.Coins, At: s.clock()})
	}
	created := user
	return &created, nil
}

// SaveUser overwrites the record with the same id. It reports false and
// changes nothing when the id is unknown.
func (s *LedgerService) SaveUser(ctx context.Context, user domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to save user")
		return false
	}
	i := indexOfUser(users, user.ID)
	if i < 0 {
		return false
	}
	if user.PasswordHash == "" {
		user.PasswordHash = users[i].PasswordHash
	}
	users[i] = user
	if err := s.saveUsers(ctx, users); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to save user")
		return false
	}
	return true
}

// ── Balance ───────────────────────────────────────────────────────────────────

// Debit removes amount coins from the user. The balance never goes negative:
// a shortfall fails with ErrInsufficientBalance and nothing changes.
func (s *LedgerService) Debit(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return fmt.Errorf("debit: %w", err)
	}
	i := indexOfUser(users, userID)
	if i < 0 {
		metrics.LedgerDebitsTotal.WithLabelValues("not_found").Inc()
		return domain.ErrUserNotFound
	}
	if users[i].Coins < amount {
		metrics.LedgerDebitsTotal.WithLabelValues("insufficient").Inc()
		return fmt.Errorf("%w: balance %d, required %d", domain.ErrInsufficientBalance, users[i].Coins, amount)
	}

	users[i].Coins -= amount
	if err := s.saveUsers(ctx, users); err != nil {
		return fmt.Errorf("debit: %w", err)
	}
	metrics.LedgerDebitsTotal.WithLabelValues("ok").Inc()
	s.publish(domain.LedgerEvent{UserID: userID, Kind: domain.EventDebit, Amount: amount, Balance: users[i].Coins, At: s.clock()})
	return nil
}

// Credit adds amount coins to the user. A missing user is a no-op reported
// as ErrUserNotFound.
func (s *LedgerService) Credit(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return fmt.Errorf("credit: %w", err)
	}
	balance, err := s.creditLocked(ctx, users, userID, amount)
	if err != nil {
		return err
	}
	metrics.LedgerCreditsTotal.WithLabelValues("credit").Inc()
	s.publish(domain.LedgerEvent{UserID: userID, Kind: domain.EventCredit, Amount: amount, Balance: balance, At: s.clock()})
	return nil
}

func (s *LedgerService) creditLocked(ctx context.Context, users []domain.User, userID string, amount int64) (int64, error) {
	i := indexOfUser(users, userID)
	if i < 0 {
		return 0, domain.ErrUserNotFound
	}
	users[i].Coins += amount
	if err := s.saveUsers(ctx, users); err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	return users[i].Coins, nil
}

// ClaimDailyReward grants the daily reward once per calendar day in the
// ledger's location. The second call on the same day reports false and
// changes nothing.
func (s *LedgerService) ClaimDailyReward(ctx context.Context, userID string) (bool, *domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("daily reward: %w", err)
	}
	i := indexOfUser(users, userID)
	if i < 0 {
		return false, nil, domain.ErrUserNotFound
	}

	now := s.clock()
	if last := users[i].LastDailyReward; last != nil && domain.SameLocalDay(*last, now, s.loc) {
		u := users[i].Public()
		return false, &u, nil
	}

	users[i].Coins += s.dailyReward
	users[i].LastDailyReward = &now
	if err := s.saveUsers(ctx, users); err != nil {
		return false, nil, fmt.Errorf("daily reward: %w", err)
	}
	metrics.LedgerCreditsTotal.WithLabelValues("daily_reward").Inc()
	s.publish(domain.LedgerEvent{UserID: userID, Kind: domain.EventDailyReward, Amount: s.dailyReward, Balance: users[i].Coins, At: now})

	u := users[i].Public()
	return true, &u, nil
}

// ── Transactions ──────────────────────────────────────────────────────────────

func (s *LedgerService) ListTransactions(ctx context.Context) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list transactions failed")
		return []domain.Transaction{}
	}
	return txs
}

// ListTransactionsByStatus returns matching transactions newest first. An
// empty status matches everything.
func (s *LedgerService) ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus) []domain.Transaction {
	s.mu.Lock()
	txs, err := s.loadTransactions(ctx)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("list transactions failed")
	}

	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if status == "" || tx.Status == status {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	return out
}

func (s *LedgerService) ListUserTransactions(ctx context.Context, userID string) []domain.Transaction {
	s.mu.Lock()
	txs, err := s.loadTransactions(ctx)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("list transactions failed")
	}

	out := make([]domain.Transaction, 0)
	for _, tx := range txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	return out
}

// CreateTransaction records a pending payment submission with a snapshot of plan.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID, userName string, plan domain.Plan, utr string) (*domain.Transaction, error) {
	utr = strings.TrimSpace(utr)
	if utr == "" {
		return nil, domain.ErrInvalidReference
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	if indexOfUser(users, userID) < 0 {
		return nil, domain.ErrUserNotFound
	}
	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	now := s.clock()
	tx := domain.Transaction{
		ID:       "tx_" + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:   userID,
		UserName: userName,
		PlanID:   plan.ID,
		PlanName: plan.Name,
		Amount:   plan.Price,
		Coins:    plan.Coins,
		UTR:      utr,
		Status:   domain.TxPending,
		Date:     now,
	}

	txs = append(txs, tx)
	if err := saveCollection(ctx, s.store, keyTransactions, txs); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	metrics.TransactionsTotal.WithLabelValues(string(domain.TxPending)).Inc()
	s.log.Info().Str("tx_id", tx.ID).Str("user_id", userID).Str("plan_id", plan.ID).Msg("payment submitted for review")
	s.publish(domain.LedgerEvent{UserID: userID, Kind: domain.EventTxSubmitted, Amount: tx.Coins, TransactionID: tx.ID, At: now})
	return &tx, nil
}

// SetTransactionStatus settles a pending transaction. Approval credits the
// snapshot coins to the submitting user; it is the only path by which a
// transaction changes a balance. Settled transactions are immutable and
// yield ErrTransactionSettled without any change.
func (s *LedgerService) SetTransactionStatus(ctx context.Context, txID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	if !domain.TxPending.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: to %s", domain.ErrInvalidTransition, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("set transaction status: %w", err)
	}
	i := -1
	for j := range txs {
		if txs[j].ID == txID {
			i = j
			break
		}
	}
	if i < 0 {
		return nil, domain.ErrTransactionNotFound
	}
	if txs[i].Status != domain.TxPending {
		tx := txs[i]
		return &tx, domain.ErrTransactionSettled
	}

	// Users are loaded before the status is persisted so an unreadable
	// collection cannot leave an approval without its credit.
	var users []domain.User
	if status == domain.TxApproved {
		if users, err = s.loadUsers(ctx); err != nil {
			return nil, fmt.Errorf("set transaction status: %w", err)
		}
	}

	txs[i].Status = status
	if err := saveCollection(ctx, s.store, keyTransactions, txs); err != nil {
		return nil, fmt.Errorf("set transaction status: %w", err)
	}
	tx := txs[i]
	metrics.TransactionsTotal.WithLabelValues(string(status)).Inc()

	ev := domain.LedgerEvent{UserID: tx.UserID, Kind: domain.EventTxRejected, TransactionID: tx.ID, At: s.clock()}
	if status == domain.TxApproved {
		ev.Kind = domain.EventTxApproved
		ev.Amount = tx.Coins
		balance, err := s.creditLocked(ctx, users, tx.UserID, tx.Coins)
		if err != nil {
			s.log.Warn().Err(err).Str("tx_id", tx.ID).Str("user_id", tx.UserID).Msg("approved transaction could not be credited")
		} else {
			ev.Balance = balance
			metrics.LedgerCreditsTotal.WithLabelValues("approval").Inc()
		}
	}
	s.log.Info().Str("tx_id", tx.ID).Str("status", string(status)).Msg("transaction reviewed")
	s.publish(ev)
	return &tx, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *LedgerService) loadUsers(ctx context.Context) ([]domain.User, error) {
	return loadCollection(ctx, s.store, keyUsers, []domain.User{}, s.log)
}

func (s *LedgerService) saveUsers(ctx context.Context, users []domain.User) error {
	return saveCollection(ctx, s.store, keyUsers, users)
}

func (s *LedgerService) loadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return loadCollection(ctx, s.store, keyTransactions, []domain.Transaction{}, s.log)
}

func (s *LedgerService) publish(ev domain.LedgerEvent) {
	if s.events != nil {
		s.events.Publish(ev)
	}
}

func indexOfUser(users []domain.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(txs []domain.Transaction) {
	sort.SliceStable(txs, func(a, b int) bool { return txs[a].Date.After(txs[b].Date) })
}
