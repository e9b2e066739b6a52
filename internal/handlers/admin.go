package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/GunarsK-portfolio/voting-portal/internal/middleware"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes pending registration review to administrators.
type AdminHandler struct {
	approvals service.ApprovalService
	activity  *ActivityRecorder
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(approvals service.ApprovalService, activity *ActivityRecorder, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{approvals: approvals, activity: activity, logger: logger}
}

// RejectRequest is the optional rejection payload.
type RejectRequest struct {
	Reason string `json:"reason" form:"reason"`
}

func requestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid registration request id.")
		return 0, false
	}
	return id, true
}

func adminID(c *gin.Context) int64 {
	if session, ok := middleware.CurrentSession(c); ok {
		return session.UserID
	}
	return 0
}

// ListPending returns a page of pending registrations (?limit=&offset=).
func (h *AdminHandler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	requests, total, err := h.approvals.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// Get returns one pending registration.
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	req, err := h.approvals.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Approve promotes a pending registration to a voter account.
func (h *AdminHandler) Approve(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	result, err := h.approvals.Approve(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.activity.Record(c, adminID(c), models.ActionRegistrationApproved,
		fmt.Sprintf("Approved registration #%d for %s (user #%d)", id, result.User.Username, result.User.ID))
	c.JSON(http.StatusOK, result)
}

// Reject discards a pending registration.
func (h *AdminHandler) Reject(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "Invalid request.")
			return
		}
	}

	result, err := h.approvals.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.activity.Record(c, adminID(c), models.ActionRegistrationRejected, fmt.Sprintf("Rejected registration #%d", id))
	c.JSON(http.StatusOK, result)
}
