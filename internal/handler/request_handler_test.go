package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/middleware"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
)

type requestServiceMock struct {
	submitResp   *models.RepairRequest
	submitErr    error
	listResp     []models.RepairRequest
	listErr      error
	getResp      *models.RepairRequest
	getErr       error
	completeResp *models.RepairRequest
	completeErr  error
	feedbackResp *models.Feedback
	feedbackErr  error
}

func (m *requestServiceMock) Submit(ctx context.Context, principal models.Principal, req dto.CreateRepairRequest) (*models.RepairRequest, error) {
	return m.submitResp, m.submitErr
}

func (m *requestServiceMock) SubmitTraining(ctx context.Context, principal models.Principal, req dto.CreateTrainingRequest) (*models.TrainingRequest, error) {
	return &models.TrainingRequest{ID: 1, RequesterUsername: principal.Username}, nil
}

func (m *requestServiceMock) ListOwn(ctx context.Context, principal models.Principal) ([]models.RepairRequest, error) {
	return m.listResp, m.listErr
}

func (m *requestServiceMock) ListAll(ctx context.Context, principal models.Principal, query dto.RepairRequestQuery) ([]models.RepairRequest, error) {
	return m.listResp, m.listErr
}

func (m *requestServiceMock) ListOwnTraining(ctx context.Context, principal models.Principal) ([]models.TrainingRequest, error) {
	return nil, nil
}

func (m *requestServiceMock) ListAllTraining(ctx context.Context, principal models.Principal) ([]models.TrainingRequest, error) {
	return nil, nil
}

func (m *requestServiceMock) Get(ctx context.Context, principal models.Principal, id int64) (*models.RepairRequest, error) {
	return m.getResp, m.getErr
}

func (m *requestServiceMock) MarkCompleted(ctx context.Context, principal models.Principal, id int64) (*models.RepairRequest, error) {
	return m.completeResp, m.completeErr
}

func (m *requestServiceMock) SubmitFeedback(ctx context.Context, principal models.Principal, req dto.CreateFeedback) (*models.Feedback, error) {
	return m.feedbackResp, m.feedbackErr
}

func (m *requestServiceMock) ListFeedback(ctx context.Context, principal models.Principal, requestID int64) ([]models.Feedback, error) {
	return nil, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func userClaims() *models.JWTClaims {
	return &models.JWTClaims{Username: "alice", Role: models.RoleUser}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{Username: "bob", Role: models.RoleAdmin}
}

func TestRequestHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{
		submitResp: &models.RepairRequest{ID: 1, RequesterUsername: "alice", Status: models.StatusPending},
	}
	h := NewRequestHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateRepairRequest{
		ReporterName: "Alice Smith", EmployeeNo: "E-100", Station: "ST-1",
		Department: "Assembly", MaterialName: "Sensor-A", MaterialCode: "SN-A-01",
		Quantity: 3, DefectDescription: "no signal", Priority: "HIGH",
	})
	c, w := newGinContext(http.MethodPost, "/requests", payload)
	c.Set(middleware.ContextUserKey, userClaims())

	h.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestHandlerSubmitRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRequestHandler(&requestServiceMock{})

	c, w := newGinContext(http.MethodPost, "/requests", []byte(`{}`))

	h.Submit(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestHandlerGetInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRequestHandler(&requestServiceMock{})

	for _, raw := range []string{"abc", "0", "-5"} {
		c, w := newGinContext(http.MethodGet, "/requests/"+raw, nil)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		c.Set(middleware.ContextUserKey, userClaims())

		h.Get(c)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestRequestHandlerMarkCompleted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{
		completeResp: &models.RepairRequest{ID: 7, Status: models.StatusCompleted},
	}
	h := NewRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/admin/requests/7/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	h.MarkCompleted(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequestHandlerMarkCompletedAlreadyDone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{
		completeErr: appErrors.Clone(appErrors.ErrPreconditionFailed, "request is already completed"),
	}
	h := NewRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/admin/requests/7/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	h.MarkCompleted(c)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestRequestHandlerSubmitFeedbackUsesPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{
		feedbackResp: &models.Feedback{ID: 1, RequestID: 7, Rating: 5},
	}
	h := NewRequestHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateFeedback{Comment: "fast", Rating: 5})
	c, w := newGinContext(http.MethodPost, "/requests/7/feedback", payload)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, userClaims())

	h.SubmitFeedback(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestHandlerForbiddenPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{
		getErr: appErrors.Clone(appErrors.ErrForbidden, ""),
	}
	h := NewRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/requests/7", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, userClaims())

	h.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
