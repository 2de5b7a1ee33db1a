package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
	"github.com/repairdesk/repairdesk-api/pkg/response"
)

type requestService interface {
	Submit(ctx context.Context, principal models.Principal, req dto.CreateRepairRequest) (*models.RepairRequest, error)
	SubmitTraining(ctx context.Context, principal models.Principal, req dto.CreateTrainingRequest) (*models.TrainingRequest, error)
	ListOwn(ctx context.Context, principal models.Principal) ([]models.RepairRequest, error)
	ListAll(ctx context.Context, principal models.Principal, query dto.RepairRequestQuery) ([]models.RepairRequest, error)
	ListOwnTraining(ctx context.Context, principal models.Principal) ([]models.TrainingRequest, error)
	ListAllTraining(ctx context.Context, principal models.Principal) ([]models.TrainingRequest, error)
	Get(ctx context.Context, principal models.Principal, id int64) (*models.RepairRequest, error)
	MarkCompleted(ctx context.Context, principal models.Principal, id int64) (*models.RepairRequest, error)
	SubmitFeedback(ctx context.Context, principal models.Principal, req dto.CreateFeedback) (*models.Feedback, error)
	ListFeedback(ctx context.Context, principal models.Principal, requestID int64) ([]models.Feedback, error)
}

// RequestHandler exposes REST endpoints for the repair workflow.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Submit godoc
// @Summary Submit a repair request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRepairRequest true "Repair request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid repair request payload"))
		return
	}
	request, err := h.service.Submit(c.Request.Context(), claims.Principal(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListOwn godoc
// @Summary List the caller's repair requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) ListOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	requests, err := h.service.ListOwn(c.Request.Context(), claims.Principal())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// Get godoc
// @Summary Get a repair request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	request, err := h.service.Get(c.Request.Context(), claims.Principal(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// ListAll godoc
// @Summary List all repair requests
// @Tags Admin
// @Produce json
// @Param status query string false "Filter by status"
// @Param requester query string false "Filter by requester username"
// @Success 200 {object} response.Envelope
// @Router /admin/requests [get]
func (h *RequestHandler) ListAll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.RepairRequestQuery{
		Requester: strings.TrimSpace(c.Query("requester")),
	}
	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		query.Status = models.RequestStatus(strings.ToUpper(rawStatus))
	}
	requests, err := h.service.ListAll(c.Request.Context(), claims.Principal(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// MarkCompleted godoc
// @Summary Mark a repair request completed
// @Tags Admin
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /admin/requests/{id}/complete [post]
func (h *RequestHandler) MarkCompleted(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	request, err := h.service.MarkCompleted(c.Request.Context(), claims.Principal(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// SubmitTraining godoc
// @Summary Submit a training request
// @Tags Training
// @Accept json
// @Produce json
// @Param payload body dto.CreateTrainingRequest true "Training request payload"
// @Success 201 {object} response.Envelope
// @Router /training-requests [post]
func (h *RequestHandler) SubmitTraining(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid training request payload"))
		return
	}
	request, err := h.service.SubmitTraining(c.Request.Context(), claims.Principal(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListOwnTraining godoc
// @Summary List the caller's training requests
// @Tags Training
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /training-requests [get]
func (h *RequestHandler) ListOwnTraining(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	requests, err := h.service.ListOwnTraining(c.Request.Context(), claims.Principal())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// ListAllTraining godoc
// @Summary List all training requests
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/training-requests [get]
func (h *RequestHandler) ListAllTraining(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	requests, err := h.service.ListAllTraining(c.Request.Context(), claims.Principal())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// SubmitFeedback godoc
// @Summary Submit feedback for a completed request
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body dto.CreateFeedback true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Router /requests/{id}/feedback [post]
func (h *RequestHandler) SubmitFeedback(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req dto.CreateFeedback
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid feedback payload"))
		return
	}
	req.RequestID = id
	feedback, err := h.service.SubmitFeedback(c.Request.Context(), claims.Principal(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// ListFeedback godoc
// @Summary List feedback for a request
// @Tags Feedback
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/feedback [get]
func (h *RequestHandler) ListFeedback(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	rows, err := h.service.ListFeedback(c.Request.Context(), claims.Principal(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

func requestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request id"))
		return 0, false
	}
	return id, true
}
