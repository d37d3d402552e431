package domain

import "time"

// LedgerEventKind names the mutation a LedgerEvent records.
type LedgerEventKind string

const (
	EventDebit          LedgerEventKind = "debit"
	EventCredit         LedgerEventKind = "credit"
	EventDailyReward    LedgerEventKind = "daily_reward"
	EventSignupBonus    LedgerEventKind = "signup_bonus"
	EventTxSubmitted    LedgerEventKind = "tx_submitted"
	EventTxApproved     LedgerEventKind = "tx_approved"
	EventTxRejected     LedgerEventKind = "tx_rejected"
	EventAdminBootstrap LedgerEventKind = "admin_bootstrap"
)

// LedgerEvent is an audit record of a balance or transaction mutation.
type LedgerEvent struct {
	UserID        string          `json:"user_id"`
	Kind          LedgerEventKind `json:"kind"`
	Amount        int64           `json:"amount"`
	Balance       int64           `json:"balance"`
	TransactionID string          `json:"transaction_id,omitempty"`
	At            time.Time       `json:"at"`
}
