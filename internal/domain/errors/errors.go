package errors

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("balance is insufficient")
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrStorage             = errors.New("storage failure")
)

// AmountError reports a non-positive amount passed to a balance operation.
type AmountError struct {
	Op string
}

func (e *AmountError) Error() string {
	return e.Op + " amount must be positive"
}

// Is matches ErrInvalidAmount.
func (e *AmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// StorageError wraps a failure of the storage collaborator.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage wraps err into StorageError unless it is nil or already a domain error.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrBalanceOverflow) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
