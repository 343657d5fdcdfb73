package dto

import (
	"errors"
	"time"

	"github.com/polkiloo/pointledger/internal/domain/model"
)

var ErrMalformedAmount = errors.New("request body must be an integer amount")

// BalanceResponse represents a user's point balance.
type BalanceResponse struct {
	ID           int64 `json:"id"`
	Point        int64 `json:"point"`
	UpdateMillis int64 `json:"updateMillis"`
}

// HistoryResponse represents one transaction record.
type HistoryResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"userId"`
	Amount       int64  `json:"amount"`
	Type         string `json:"type"`
	UpdateMillis int64  `json:"updateMillis"`
}

// AmountRequest is the object form of a charge or use body.
type AmountRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewBalanceResponse(b *model.Balance) BalanceResponse {
	return BalanceResponse{ID: b.UserID, Point: b.Point, UpdateMillis: millis(b.UpdatedAt)}
}

func NewHistoryResponse(records []model.TransactionRecord) []HistoryResponse {
	resp := make([]HistoryResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, HistoryResponse{
			ID:           r.ID,
			UserID:       r.UserID,
			Amount:       r.Amount,
			Type:         string(r.Kind),
			UpdateMillis: millis(r.CreatedAt),
		})
	}
	return resp
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
