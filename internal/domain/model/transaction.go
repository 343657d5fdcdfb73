package model

import "time"

// TransactionKind describes direction of a balance change.
type TransactionKind string

const (
	TransactionCharge TransactionKind = "CHARGE"
	TransactionUse    TransactionKind = "USE"
)

// Valid reports whether kind is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	return k == TransactionCharge || k == TransactionUse
}

// TransactionRecord is an immutable history entry of one completed charge or use.
// Amount is the magnitude of the change, never the resulting balance.
type TransactionRecord struct {
	ID        int64
	UserID    int64
	Amount    int64
	Kind      TransactionKind
	CreatedAt time.Time
}
