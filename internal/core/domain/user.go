package domain

import (
	"net/url"
	"time"
)

// Role is the privilege level of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

const (
	PlanFree     = "free"
	PlanInfinite = "infinite"
)

// User is the persisted account record. Coins is the spendable balance and
// never drops below zero.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Avatar          string     `json:"avatar"`
	Role            Role       `json:"role"`
	Coins           int64      `json:"coins"`
	Plan            string     `json:"plan"`
	LastDailyReward *time.Time `json:"last_daily_reward"`
	PasswordHash    string     `json:"password_hash,omitempty"`
}

// Public returns a copy of u without credential material.
func (u User) Public() User {
	u.PasswordHash = ""
	if u.LastDailyReward != nil {
		ts := *u.LastDailyReward
		u.LastDailyReward = &ts
	}
	return u
}

// IsAdmin reports whether u carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// AvatarURL returns the generated avatar for a display name.
func AvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}

// SameLocalDay reports whether a and b fall on the same calendar date in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
