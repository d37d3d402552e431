package domain

import "time"

// TransactionStatus is the review state of a payment submission.
type TransactionStatus string

const (
	TxPending  TransactionStatus = "pending"
	TxApproved TransactionStatus = "approved"
	TxRejected TransactionStatus = "rejected"
)

// validTransitions defines the review state machine. Terminal states have no entry.
var validTransitions = map[TransactionStatus][]TransactionStatus{
	TxPending: {TxApproved, TxRejected},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s TransactionStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Transaction is a user-submitted payment reference awaiting manual review.
// Plan fields are a snapshot taken at submission time.
type Transaction struct {
	ID       string            `json:"id"`
	UserID   string            `json:"user_id"`
	UserName string            `json:"user_name"`
	PlanID   string            `json:"plan_id"`
	PlanName string            `json:"plan_name"`
	Amount   int64             `json:"amount"`
	Coins    int64             `json:"coins"`
	UTR      string            `json:"utr"`
	Status   TransactionStatus `json:"status"`
	Date     time.Time         `json:"date"`
}
