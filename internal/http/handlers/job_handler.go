package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/http/handlers/common"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/service"
)

// JobHandler serves job CRUD, the status transition endpoint, the
// contractor browse feed and auto-routing.
type JobHandler struct {
	jobs      *service.JobService
	lifecycle *service.LifecycleService
	matching  *service.MatchingService
}

func NewJobHandler(jobs *service.JobService, lifecycle *service.LifecycleService, matching *service.MatchingService) *JobHandler {
	return &JobHandler{jobs: jobs, lifecycle: lifecycle, matching: matching}
}

type createJobRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	AddressLine *string  `json:"address_line"`
	BudgetMin   *float64 `json:"budget_min"`
	BudgetMax   *float64 `json:"budget_max"`
	Publish     bool     `json:"publish"`
}

func (h *JobHandler) Create(c *gin.Context) {
	customerID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req createJobRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), customerID, service.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		AddressLine: req.AddressLine,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Publish:     req.Publish,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Get(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Update(c *gin.Context) {
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

	var req createJobRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.UpdateJob(c.Request.Context(), jobID, customerID, service.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		AddressLine: req.AddressLine,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) ListMine(c *gin.Context) {
	customerID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	jobs, err := h.jobs.ListCustomerJobs(c.Request.Context(), customerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}

func (h *JobHandler) ListAssigned(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	jobs, err := h.jobs.ListContractorJobs(c.Request.Context(), contractorID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}

type transitionRequest struct {
	Status             string     `json:"status" binding:"required"`
	AcceptedProposalID *uuid.UUID `json:"accepted_proposal_id"`
	ContractorID       *uuid.UUID `json:"contractor_id"`
	ScheduledStart     *time.Time `json:"scheduled_start"`
	ScheduledEnd       *time.Time `json:"scheduled_end"`
}

// transitionRoles maps each requestable target status to the roles allowed
// to request it. Authorization lives here, not in the lifecycle machine.
var transitionRoles = map[string][]string{
	models.JobStatusPublished:              {models.RoleCustomer},
	models.JobStatusProposalSelected:       {models.RoleCustomer},
	models.JobStatusScheduled:              {models.RoleCustomer, models.RoleHandyman, models.RoleContractor},
	models.JobStatusInProgress:             {models.RoleHandyman, models.RoleContractor},
	models.JobStatusCompletedPendingReview: {models.RoleHandyman, models.RoleContractor},
	models.JobStatusCompleted:              {models.RoleCustomer},
	models.JobStatusCancelledByCustomer:    {models.RoleCustomer},
	models.JobStatusCancelledByContractor:  {models.RoleHandyman, models.RoleContractor},
}

func (h *JobHandler) Transition(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	role, err := common.CurrentUserRole(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req transitionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authorizeTransition(c, jobID, actorID, role, req.Status); err != nil {
		_ = c.Error(err)
		return
	}

	job, err := h.lifecycle.ApplyTransition(c.Request.Context(), jobID, req.Status, actorID, service.TransitionExtra{
		AcceptedProposalID:   req.AcceptedProposalID,
		AssignedContractorID: req.ContractorID,
		ScheduledStart:       req.ScheduledStart,
		ScheduledEnd:         req.ScheduledEnd,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// authorizeTransition checks role and ownership before the lifecycle
// machine sees the request. Admins may drive any transition.
func (h *JobHandler) authorizeTransition(c *gin.Context, jobID, actorID uuid.UUID, role, target string) error {
	if role == models.RoleAdmin {
		return nil
	}

	roles, known := transitionRoles[target]
	if !known {
		return apperror.Newf(apperror.ErrCodeValidation, "unknown target status %q", target)
	}

	allowed := false
	for _, r := range roles {
		if r == role {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperror.ErrRoleNotAllowed
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		return err
	}

	switch role {
	case models.RoleCustomer:
		if job.CustomerID != actorID {
			return apperror.ErrNotOwner
		}
	default:
		if job.ContractorID == nil || *job.ContractorID != actorID {
			return apperror.ErrNotOwner
		}
	}
	return nil
}

func (h *JobHandler) Feed(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	limit, offset := common.GetPagination(c)
	category := c.Query("category")

	feed, err := h.matching.GetAvailableJobsFeed(c.Request.Context(), contractorID, category, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": feed, "total": len(feed)})
}

// AutoRoute picks the nearest contractor with spare capacity for a
// published job. Returns contractor_id: null when nobody qualifies.
func (h *JobHandler) AutoRoute(c *gin.Context) {
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

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if job.CustomerID != customerID {
		_ = c.Error(apperror.ErrNotOwner)
		return
	}

	contractorID, err := h.matching.FindBestContractor(c.Request.Context(), job)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contractor_id": contractorID})
}
