package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.checker.Health(c.Request.Context()); err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusServiceUnavailable, "UNAVAILABLE", "storage is unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
