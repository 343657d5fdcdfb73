package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/polkiloo/pointledger/internal/domain/model"
	"github.com/polkiloo/pointledger/internal/server/http/dto"
)

const maxBodyBytes = 1 << 10

// PointHandler manages point endpoints.
type PointHandler struct {
	facade PointFacade
}

// NewPointHandler constructs PointHandler.
func NewPointHandler(facade PointFacade) *PointHandler {
	return &PointHandler{facade: facade}
}

// Balance handles GET /point/:id.
func (h *PointHandler) Balance(c *gin.Context) {
	userID, err := UserIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	b, err := h.facade.Balance(c.Request.Context(), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBalanceResponse(b))
}

// History handles GET /point/:id/histories.
func (h *PointHandler) History(c *gin.Context) {
	userID, err := UserIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	records, err := h.facade.History(c.Request.Context(), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewHistoryResponse(records))
}

// Charge handles PATCH /point/:id/charge.
func (h *PointHandler) Charge(c *gin.Context) {
	h.mutate(c, model.TransactionCharge)
}

// Use handles PATCH /point/:id/use.
func (h *PointHandler) Use(c *gin.Context) {
	h.mutate(c, model.TransactionUse)
}

func (h *PointHandler) mutate(c *gin.Context, kind model.TransactionKind) {
	userID, err := UserIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	amount, err := bindAmount(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var b *model.Balance
	if kind == model.TransactionCharge {
		b, err = h.facade.Charge(c.Request.Context(), userID, amount)
	} else {
		b, err = h.facade.Use(c.Request.Context(), userID, amount)
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBalanceResponse(b))
}

// bindAmount accepts either a bare JSON integer or {"amount": n}.
func bindAmount(c *gin.Context) (int64, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var amount int64
	if err := c.ShouldBindBodyWith(&amount, binding.JSON); err == nil {
		return amount, nil
	}
	var req dto.AmountRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return 0, dto.ErrMalformedAmount
	}
	return *req.Amount, nil
}
