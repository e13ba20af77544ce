package handlers

import (
	"context"
	"net/http"

	"tcf-service/internal/auth"
	"tcf-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	Service *service.ResultService
}

func NewResultHandler(s *service.ResultService) *ResultHandler {
	return &ResultHandler{Service: s}
}

// ListResults returns the caller's result history, newest first.
func (h *ResultHandler) ListResults(c *gin.Context) {
	results, err := h.Service.ResultsForUser(context.Background(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetOverview returns the caller's aggregated dashboard numbers.
func (h *ResultHandler) GetOverview(c *gin.Context) {
	overview, err := h.Service.Overview(context.Background(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, overview)
}
