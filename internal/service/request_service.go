package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.RepairRequest) error
	GetByID(ctx context.Context, id int64) (*models.RepairRequest, error)
	List(ctx context.Context, filter models.RepairRequestFilter) ([]models.RepairRequest, error)
	Complete(ctx context.Context, id int64, completedAt time.Time) error
}

type trainingStore interface {
	Create(ctx context.Context, request *models.TrainingRequest) error
	List(ctx context.Context, requesterUsername string) ([]models.TrainingRequest, error)
}

type feedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	ListByRequest(ctx context.Context, requestID int64) ([]models.Feedback, error)
}

// RequestService is the workflow engine: it creates requests, enforces the
// PENDING to COMPLETED transition, enforces which role may perform which
// operation, and gates feedback on completed self-owned requests. It holds
// no cached state across calls; every decision re-fetches from the store.
type RequestService struct {
	requests  requestStore
	training  trainingStore
	feedback  feedbackStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(requests requestStore, training trainingStore, feedback feedbackStore, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RequestService{
		requests:  requests,
		training:  training,
		feedback:  feedback,
		validator: validate,
		logger:    logger,
	}
	svc.validator.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return models.RequestPriority(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// Submit creates a new repair request for the principal. Status always
// starts at PENDING regardless of payload.
func (s *RequestService) Submit(ctx context.Context, principal models.Principal, req dto.CreateRepairRequest) (*models.RepairRequest, error) {
	if principal.Role != models.RoleUser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only users may submit repair requests")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid repair request payload")
	}
	request := &models.RepairRequest{
		RequesterUsername: principal.Username,
		ReporterName:      req.ReporterName,
		EmployeeNo:        req.EmployeeNo,
		Station:           req.Station,
		Department:        req.Department,
		MaterialName:      req.MaterialName,
		MaterialCode:      req.MaterialCode,
		Quantity:          req.Quantity,
		DefectDescription: req.DefectDescription,
		Priority:          models.RequestPriority(strings.ToUpper(req.Priority)),
		Status:            models.StatusPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create repair request")
	}
	s.logger.Info("repair request submitted",
		zap.Int64("request_id", request.ID),
		zap.String("requester", principal.Username),
		zap.String("priority", string(request.Priority)),
	)
	return request, nil
}

// SubmitTraining creates a new training request for the principal.
func (s *RequestService) SubmitTraining(ctx context.Context, principal models.Principal, req dto.CreateTrainingRequest) (*models.TrainingRequest, error) {
	if principal.Role != models.RoleUser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only users may submit training requests")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training request payload")
	}
	request := &models.TrainingRequest{
		RequesterUsername: principal.Username,
		Name:              req.Name,
		EmployeeNo:        req.EmployeeNo,
		Station:           req.Station,
		Designation:       req.Designation,
		TrainingSlot:      req.TrainingSlot,
	}
	if err := s.training.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create training request")
	}
	return request, nil
}

// ListOwn returns the principal's own repair requests.
func (s *RequestService) ListOwn(ctx context.Context, principal models.Principal) ([]models.RepairRequest, error) {
	if principal.Role != models.RoleUser {
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.requests.List(ctx, models.RepairRequestFilter{RequesterUsername: principal.Username})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list repair requests")
	}
	return requests, nil
}

// ListAll returns every repair request; admin only.
func (s *RequestService) ListAll(ctx context.Context, principal models.Principal, query dto.RepairRequestQuery) ([]models.RepairRequest, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.requests.List(ctx, models.RepairRequestFilter{
		RequesterUsername: query.Requester,
		Status:            query.Status,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list repair requests")
	}
	return requests, nil
}

// ListOwnTraining returns the principal's own training requests.
func (s *RequestService) ListOwnTraining(ctx context.Context, principal models.Principal) ([]models.TrainingRequest, error) {
	if principal.Role != models.RoleUser {
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.training.List(ctx, principal.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list training requests")
	}
	return requests, nil
}

// ListAllTraining returns every training request; admin only.
func (s *RequestService) ListAllTraining(ctx context.Context, principal models.Principal) ([]models.TrainingRequest, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.training.List(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list training requests")
	}
	return requests, nil
}

// Get returns a single repair request visible to the principal: admins see
// everything, users only their own.
func (s *RequestService) Get(ctx context.Context, principal models.Principal, id int64) (*models.RepairRequest, error) {
	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && request.RequesterUsername != principal.Username {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// MarkCompleted transitions a pending request to COMPLETED; admin only.
// Completing an already-completed request fails with a precondition error,
// including when a concurrent admin won the transition.
func (s *RequestService) MarkCompleted(ctx context.Context, principal models.Principal, id int64) (*models.RepairRequest, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may complete requests")
	}
	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "request is already completed")
	}

	completedAt := time.Now().UTC()
	if err := s.requests.Complete(ctx, id, completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The row was pending a moment ago, so a concurrent admin
			// completed it first.
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "request is already completed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete repair request")
	}

	s.logger.Info("repair request completed",
		zap.Int64("request_id", id),
		zap.String("admin", principal.Username),
	)

	request.Status = models.StatusCompleted
	request.UpdatedAt = completedAt
	return request, nil
}

// SubmitFeedback records feedback for a completed request owned by the
// principal. Wrong owner is Forbidden; wrong status is PreconditionFailed.
func (s *RequestService) SubmitFeedback(ctx context.Context, principal models.Principal, req dto.CreateFeedback) (*models.Feedback, error) {
	if principal.Role != models.RoleUser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only users may submit feedback")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	request, err := s.loadRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterUsername != principal.Username {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "feedback is restricted to the request owner")
	}
	if request.Status != models.StatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "feedback requires a completed request")
	}

	feedback := &models.Feedback{
		RequesterUsername: principal.Username,
		RequestID:         request.ID,
		Comment:           req.Comment,
		Rating:            req.Rating,
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feedback")
	}
	return feedback, nil
}

// ListFeedback returns feedback rows for a request visible to the principal.
func (s *RequestService) ListFeedback(ctx context.Context, principal models.Principal, requestID int64) ([]models.Feedback, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && request.RequesterUsername != principal.Username {
		return nil, appErrors.ErrForbidden
	}
	rows, err := s.feedback.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	return rows, nil
}

func (s *RequestService) loadRequest(ctx context.Context, id int64) (*models.RepairRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "repair request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load repair request")
	}
	return request, nil
}
