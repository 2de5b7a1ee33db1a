package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
)

type requestRepoStub struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]*models.RepairRequest
}

func newRequestRepoStub() *requestRepoStub {
	return &requestRepoStub{requests: make(map[int64]*models.RepairRequest)}
}

func (r *requestRepoStub) Create(ctx context.Context, request *models.RepairRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	request.ID = r.nextID
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *requestRepoStub) GetByID(ctx context.Context, id int64) (*models.RepairRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		found := *req
		return &found, nil
	}
	return nil, sql.ErrNoRows
}

func (r *requestRepoStub) List(ctx context.Context, filter models.RepairRequestFilter) ([]models.RepairRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.RepairRequest, 0, len(r.requests))
	for id := int64(1); id <= r.nextID; id++ {
		req, ok := r.requests[id]
		if !ok {
			continue
		}
		if filter.RequesterUsername != "" && req.RequesterUsername != filter.RequesterUsername {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		result = append(result, *req)
	}
	return result, nil
}

// Complete mirrors the conditional UPDATE: only a pending row transitions.
func (r *requestRepoStub) Complete(ctx context.Context, id int64, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != models.StatusPending {
		return sql.ErrNoRows
	}
	req.Status = models.StatusCompleted
	req.UpdatedAt = completedAt
	return nil
}

type trainingRepoStub struct {
	mu       sync.Mutex
	nextID   int64
	requests []models.TrainingRequest
}

func (r *trainingRepoStub) Create(ctx context.Context, request *models.TrainingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	request.ID = r.nextID
	r.requests = append(r.requests, *request)
	return nil
}

func (r *trainingRepoStub) List(ctx context.Context, requesterUsername string) ([]models.TrainingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.TrainingRequest, 0, len(r.requests))
	for _, req := range r.requests {
		if requesterUsername != "" && req.RequesterUsername != requesterUsername {
			continue
		}
		result = append(result, req)
	}
	return result, nil
}

type feedbackRepoStub struct {
	mu     sync.Mutex
	nextID int64
	rows   []models.Feedback
}

func (r *feedbackRepoStub) Create(ctx context.Context, feedback *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	feedback.ID = r.nextID
	r.rows = append(r.rows, *feedback)
	return nil
}

func (r *feedbackRepoStub) ListByRequest(ctx context.Context, requestID int64) ([]models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Feedback, 0, len(r.rows))
	for _, row := range r.rows {
		if row.RequestID == requestID {
			result = append(result, row)
		}
	}
	return result, nil
}

func newTestService() (*RequestService, *requestRepoStub, *feedbackRepoStub) {
	requests := newRequestRepoStub()
	feedback := &feedbackRepoStub{}
	svc := NewRequestService(requests, &trainingRepoStub{}, feedback, nil, nil)
	return svc, requests, feedback
}

var (
	alice = models.Principal{Username: "alice", Role: models.RoleUser}
	carol = models.Principal{Username: "carol", Role: models.RoleUser}
	bob   = models.Principal{Username: "bob", Role: models.RoleAdmin}
)

func validRepairPayload() dto.CreateRepairRequest {
	return dto.CreateRepairRequest{
		ReporterName:      "Alice Smith",
		EmployeeNo:        "E-100",
		Station:           "ST-1",
		Department:        "Assembly",
		MaterialName:      "Sensor-A",
		MaterialCode:      "SN-A-01",
		Quantity:          3,
		DefectDescription: "no signal",
		Priority:          "HIGH",
	}
}

func requireKind(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, want.Code, appErr.Code)
}

func TestSubmitStartsPending(t *testing.T) {
	svc, _, _ := newTestService()

	request, err := svc.Submit(context.Background(), alice, validRepairPayload())
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, request.Status)
	require.Equal(t, "alice", request.RequesterUsername)
	require.Equal(t, models.PriorityHigh, request.Priority)
	require.NotZero(t, request.ID)
}

func TestSubmitRejectsAdmins(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Submit(context.Background(), bob, validRepairPayload())
	requireKind(t, err, appErrors.ErrForbidden)
}

func TestSubmitValidationBoundaries(t *testing.T) {
	svc, _, _ := newTestService()

	payload := validRepairPayload()
	payload.Quantity = 0
	_, err := svc.Submit(context.Background(), alice, payload)
	requireKind(t, err, appErrors.ErrValidation)

	payload.Quantity = 1
	_, err = svc.Submit(context.Background(), alice, payload)
	require.NoError(t, err)

	payload.Quantity = 3
	payload.Priority = "URGENT"
	_, err = svc.Submit(context.Background(), alice, payload)
	requireKind(t, err, appErrors.ErrValidation)
}

func TestListOwnVisibilityIsolation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Submit(context.Background(), alice, validRepairPayload())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), carol, validRepairPayload())
	require.NoError(t, err)

	own, err := svc.ListOwn(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, own, 1)
	for _, req := range own {
		require.Equal(t, "alice", req.RequesterUsername)
	}

	all, err := svc.ListAll(context.Background(), bob, dto.RepairRequestQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.ListAll(context.Background(), alice, dto.RepairRequestQuery{})
	requireKind(t, err, appErrors.ErrForbidden)
}

func TestMarkCompletedIdempotence(t *testing.T) {
	svc, _, _ := newTestService()

	request, err := svc.Submit(context.Background(), alice, validRepairPayload())
	require.NoError(t, err)

	completed, err := svc.MarkCompleted(context.Background(), bob, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, completed.Status)

	_, err = svc.MarkCompleted(context.Background(), bob, request.ID)
	requireKind(t, err, appErrors.ErrPreconditionFailed)

	after, err := svc.Get(context.Background(), bob, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, after.Status)
}

func TestMarkCompletedAuthorization(t *testing.T) {
	svc, _, _ := newTestService()

	request, err := svc.Submit(context.Background(), alice, validRepairPayload())
	require.NoError(t, err)

	_, err = svc.MarkCompleted(context.Background(), alice, request.ID)
	requireKind(t, err, appErrors.ErrForbidden)

	_, err = svc.MarkCompleted(context.Background(), bob, 999)
	requireKind(t, err, appErrors.ErrNotFound)
}

func TestConcurrentCompletionRace(t *testing.T) {
	svc, _, _ := newTestService()

	request, err := svc.Submit(context.Background(), alice, validRepairPayload())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MarkCompleted(context.Background(), bob, request.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, preconditionFailures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
		preconditionFailures++
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, preconditionFailures)

	after, err := svc.Get(context.Background(), bob, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, after.Status)
}

func TestFeedbackGating(t *testing.T) {
	svc, _, _ := newTestService()

	request, err := svc.Submit(context.Background(), alice, validRepairPayload())
	require.NoError(t, err)

	// Pending request: feedback rejected regardless of owner.
	_, err = svc.SubmitFeedback(context.Background(), alice, dto.CreateFeedback{RequestID: request.ID, Comment: "early", Rating: 4})
	requireKind(t, err, appErrors.ErrPreconditionFailed)

	_, err = svc.MarkCompleted(context.Background(), bob, request.ID)
	require.NoError(t, err)

	// Non-owner: forbidden even though the request is completed.
	_, err = svc.SubmitFeedback(context.Background(), carol, dto.CreateFeedback{RequestID: request.ID, Comment: "nice", Rating: 4})
	requireKind(t, err, appErrors.ErrForbidden)

	feedback, err := svc.SubmitFeedback(context.Background(), alice, dto.CreateFeedback{RequestID: request.ID, Comment: "fast", Rating: 5})
	require.NoError(t, err)
	require.Equal(t, request.ID, feedback.RequestID)

	// Multiple feedback rows per request are allowed.
	_, err = svc.SubmitFeedback(context.Background(), alice, dto.CreateFeedback{RequestID: request.ID, Comment: "still good", Rating: 4})
	require.NoError(t, err)

	rows, err := svc.ListFeedback(context.Background(), alice, request.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestFeedbackRatingBoundaries(t *testing.T) {
	svc, _, _ := newTestService()

	request, err := svc.Submit(context.Background(), alice, validRepairPayload())
	require.NoError(t, err)
	_, err = svc.MarkCompleted(context.Background(), bob, request.ID)
	require.NoError(t, err)

	for _, rating := range []int{0, 6} {
		_, err := svc.SubmitFeedback(context.Background(), alice, dto.CreateFeedback{RequestID: request.ID, Comment: "x", Rating: rating})
		requireKind(t, err, appErrors.ErrValidation)
	}
	for _, rating := range []int{1, 5} {
		_, err := svc.SubmitFeedback(context.Background(), alice, dto.CreateFeedback{RequestID: request.ID, Comment: "x", Rating: rating})
		require.NoError(t, err)
	}
}

func TestFeedbackUnknownRequest(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.SubmitFeedback(context.Background(), alice, dto.CreateFeedback{RequestID: 404, Comment: "x", Rating: 3})
	requireKind(t, err, appErrors.ErrNotFound)
}

func TestTrainingRequestsVisibility(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.SubmitTraining(context.Background(), alice, dto.CreateTrainingRequest{
		Name:         "Alice Smith",
		EmployeeNo:   "E-100",
		Station:      "ST-1",
		Designation:  "Technician",
		TrainingSlot: "2026-09-15",
	})
	require.NoError(t, err)

	_, err = svc.SubmitTraining(context.Background(), bob, dto.CreateTrainingRequest{
		Name: "Bob", EmployeeNo: "E-1", Station: "ST-2", Designation: "Lead", TrainingSlot: "2026-10-01",
	})
	requireKind(t, err, appErrors.ErrForbidden)

	own, err := svc.ListOwnTraining(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, own, 1)

	all, err := svc.ListAllTraining(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

// Covers the full alice/bob/carol scenario end to end.
func TestRepairRequestLifecycle(t *testing.T) {
	svc, _, _ := newTestService()

	payload := validRepairPayload()
	payload.MaterialName = "Sensor-A"
	payload.Quantity = 3
	payload.Priority = "HIGH"

	request, err := svc.Submit(context.Background(), alice, payload)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, request.Status)

	completed, err := svc.MarkCompleted(context.Background(), bob, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, completed.Status)

	feedback, err := svc.SubmitFeedback(context.Background(), alice, dto.CreateFeedback{
		RequestID: request.ID,
		Comment:   "fast",
		Rating:    5,
	})
	require.NoError(t, err)
	require.Equal(t, 5, feedback.Rating)

	_, err = svc.SubmitFeedback(context.Background(), carol, dto.CreateFeedback{
		RequestID: request.ID,
		Comment:   "me too",
		Rating:    4,
	})
	requireKind(t, err, appErrors.ErrForbidden)
}
