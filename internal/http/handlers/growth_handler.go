package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/needanevo/Handyman-app-sub000/internal/http/handlers/common"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/service"
	"github.com/needanevo/Handyman-app-sub000/internal/validation"
)

// GrowthHandler exposes the contractor progress log: summary, history and
// customer reviews that feed into it.
type GrowthHandler struct {
	growth *service.GrowthService
	jobs   *service.JobService
}

func NewGrowthHandler(growth *service.GrowthService, jobs *service.JobService) *GrowthHandler {
	return &GrowthHandler{growth: growth, jobs: jobs}
}

func (h *GrowthHandler) Summary(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.growth.GetSummary(c.Request.Context(), contractorID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *GrowthHandler) Events(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	limit, offset := common.GetPagination(c)
	events, err := h.growth.GetEvents(c.Request.Context(), contractorID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

type reviewRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment"`
}

// SubmitReview records a customer review of a finished job. Only 5 and
// 4-star ratings land in the contractor's growth log; lower ratings are
// accepted but carry no growth credit.
func (h *GrowthHandler) SubmitReview(c *gin.Context) {
	customerID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req reviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.Rating(float64(req.Rating)); err != nil {
		_ = c.Error(err)
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if job.CustomerID != customerID {
		_ = c.Error(apperror.ErrNotOwner)
		return
	}
	if job.Status != models.JobStatusCompletedPendingReview && job.Status != models.JobStatusCompleted {
		_ = c.Error(apperror.Newf(apperror.ErrCodeConflict, "job is not reviewable in status %s", job.Status))
		return
	}
	if job.ContractorID == nil {
		_ = c.Error(apperror.New(apperror.ErrCodeConflict, "job has no assigned contractor"))
		return
	}

	var eventType string
	switch req.Rating {
	case 5:
		eventType = models.GrowthEventFiveStarReview
	case 4:
		eventType = models.GrowthEventFourStarReview
	default:
		c.JSON(http.StatusOK, gin.H{"message": "review recorded"})
		return
	}

	meta, _ := json.Marshal(map[string]string{
		"job_id": job.ID.String(),
		"rating": fmt.Sprintf("%d", req.Rating),
	})

	summary, err := h.growth.EmitEvent(c.Request.Context(), *job.ContractorID, models.RoleContractor, eventType, 1, meta)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
