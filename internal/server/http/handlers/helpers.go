package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/pointledger/internal/domain/errors"
	"github.com/polkiloo/pointledger/internal/server/http/dto"
)

var errInvalidUserID = errors.New("user id must be a non-negative integer")

// UserIDParam parses the :id path parameter.
func UserIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		return 0, errInvalidUserID
	}
	return id, nil
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Code: code, Message: message})
}

// writeDomainError maps ledger errors to HTTP responses.
func writeDomainError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, domainErrors.ErrInvalidAmount):
		abortWithError(c, http.StatusUnprocessableEntity, "INVALID_AMOUNT", err.Error())
	case errors.Is(err, domainErrors.ErrBalanceOverflow):
		abortWithError(c, http.StatusUnprocessableEntity, "BALANCE_OVERFLOW", err.Error())
	case errors.Is(err, domainErrors.ErrInsufficientBalance):
		abortWithError(c, http.StatusPaymentRequired, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusRequestTimeout, "REQUEST_CANCELLED", "request cancelled before it could be applied")
	default:
		abortWithError(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
