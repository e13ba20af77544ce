package handlers

import (
	"context"
	"errors"
	"net/http"

	"tcf-service/internal/auth"
	"tcf-service/internal/service"
	"tcf-service/internal/session"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// ListTests is the public catalog of test types.
func (h *SessionHandler) ListTests(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.ListTestTypes())
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		TestType string `json:"testType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.Service.StartSession(context.Background(), auth.UserID(c), req.TestType)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	view, err := h.Service.GetSession(c.Param("token"), auth.UserID(c))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) SelectOption(c *gin.Context) {
	var req struct {
		OptionID string `json:"optionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.Service.SelectOption(c.Param("token"), auth.UserID(c), req.OptionID)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) ConfirmAnswer(c *gin.Context) {
	var req struct {
		OptionID *string `json:"optionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.Service.ConfirmAnswer(c.Param("token"), auth.UserID(c), req.OptionID)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) JumpTo(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.Service.JumpTo(c.Param("token"), auth.UserID(c), *req.Index)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) AudioEnded(c *gin.Context) {
	var req struct {
		SessionQuestionID string `json:"sessionQuestionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.Service.AudioEnded(c.Param("token"), auth.UserID(c), req.SessionQuestionID)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) FinishSession(c *gin.Context) {
	view, err := h.Service.FinishSession(c.Param("token"), auth.UserID(c))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) RestartSession(c *gin.Context) {
	view, err := h.Service.RestartSession(context.Background(), c.Param("token"), auth.UserID(c))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// writeSessionError maps session flow errors onto HTTP statuses.
func writeSessionError(c *gin.Context, err error) {
	var denied *service.GateDeniedError
	switch {
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, gin.H{"error": denied.Message})
	case errors.Is(err, session.ErrUnknownTestType):
		c.JSON(http.StatusNotFound, gin.H{"error": "This test does not exist"})
	case errors.Is(err, session.ErrEmptyPool):
		c.JSON(http.StatusNotFound, gin.H{"error": "No questions available for this test yet"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, session.ErrSessionFinished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNavigationLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrForwardJump), errors.Is(err, session.ErrUnknownOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
