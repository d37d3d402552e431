package ports

import (
	"context"

	"github.com/lumina-ai/studio/internal/core/domain"
)

// UserDirectory is the slice of the ledger the auth gateway works against.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
}

// Balance is the slice of the ledger paid operations debit and refund against.
type Balance interface {
	Debit(ctx context.Context, userID string, amount int64) error
	Credit(ctx context.Context, userID string, amount int64) error
}

// Ledger owns the User and Transaction collections.
type Ledger interface {
	UserDirectory
	Balance

	ListUsers(ctx context.Context) []domain.User
	SaveUser(ctx context.Context, user domain.User) bool
	ClaimDailyReward(ctx context.Context, userID string) (bool, *domain.User, error)

	ListTransactions(ctx context.Context) []domain.Transaction
	ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus) []domain.Transaction
	ListUserTransactions(ctx context.Context, userID string) []domain.Transaction
	CreateTransaction(ctx context.Context, userID, userName string, plan domain.Plan, utr string) (*domain.Transaction, error)
	SetTransactionStatus(ctx context.Context, txID string, status domain.TransactionStatus) (*domain.Transaction, error)
}

// EventPublisher receives ledger mutations for the audit trail.
type EventPublisher interface {
	Publish(event domain.LedgerEvent)
}

// AuditSink persists ledger events.
type AuditSink interface {
	Record(ctx context.Context, event domain.LedgerEvent) error
}

// ReviewFeed pushes admin dashboard snapshots.
type ReviewFeed interface {
	Snapshot() domain.ReviewSnapshot
	Subscribe() (<-chan domain.ReviewSnapshot, func())
}
