package domain

import (
	"strings"
	"time"
)

// User is a ledger account known to the user_management module.
// Address is the primary key; every other field is replaced wholesale on each fetch.
type User struct {
	Address      string    `json:"address"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"isActive"`
	IsCourier    bool      `json:"isCourier"`
	Balance      uint64    `json:"balance"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Address) == "" {
		return ValidationError{Field: "address", Reason: "must not be blank"}
	}
	return nil
}

// WithActive returns a copy of u with IsActive replaced.
func (u User) WithActive(active bool) User {
	u.IsActive = active
	return u
}

type UserStats struct {
	TotalUsers  uint64 `json:"totalUsers"`
	ActiveUsers uint64 `json:"activeUsers"`
}

func (s UserStats) ActiveRate() float64 {
	return ratio(s.ActiveUsers, s.TotalUsers)
}

func ratio(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
