package domain

import "time"

// ReviewSnapshot is the admin dashboard view of the ledger at one instant.
type ReviewSnapshot struct {
	Pending      []Transaction `json:"pending"`
	Transactions []Transaction `json:"transactions"`
	Users        []User        `json:"users"`
	At           time.Time     `json:"at"`
}
