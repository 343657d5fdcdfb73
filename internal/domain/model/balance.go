package model

import "time"

// Balance is the current point total of a user.
type Balance struct {
	UserID    int64
	Point     int64
	UpdatedAt time.Time
}

// EmptyBalance returns the zero balance reported for users without any transactions.
func EmptyBalance(userID int64) *Balance {
	return &Balance{UserID: userID}
}
