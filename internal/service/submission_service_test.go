package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission, fileIDs []uuid.UUID) error {
	args := m.Called(ctx, submission, fileIDs)
	return args.Error(0)
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) GetPendingByTask(ctx context.Context, taskID uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) HasPending(ctx context.Context, writerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, writerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubmissionRepo) ListByWriter(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Submission, error) {
	args := m.Called(ctx, writerID, limit, offset)
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) Approve(ctx context.Context, submissionID uuid.UUID, payoutAmount float64, payoutReference string) (*models.Submission, *models.Payment, error) {
	args := m.Called(ctx, submissionID, payoutAmount, payoutReference)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Submission), args.Get(1).(*models.Payment), args.Error(2)
}

func (m *mockSubmissionRepo) Reject(ctx context.Context, submissionID uuid.UUID, reason string) (*models.Submission, error) {
	args := m.Called(ctx, submissionID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

type mockFileRepo struct {
	mock.Mock
}

func (m *mockFileRepo) GetOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.StoredFile, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoredFile), args.Error(1)
}

func inProgressTask(studentID, writerID uuid.UUID) *models.Task {
	return &models.Task{
		ID:        uuid.New(),
		StudentID: studentID,
		WriterID:  &writerID,
		Title:     "Курсовая по статистике",
		Budget:    2500,
		Status:    models.TaskStatusInProgress,
	}
}

func TestSubmissionService_Submit_Success(t *testing.T) {
	repo := new(mockSubmissionRepo)
	tasks := new(mockTaskRepo)
	files := new(mockFileRepo)
	notifier := new(mockNotifier)
	svc := NewSubmissionService(repo, tasks, files, notifier)
	ctx := context.Background()

	studentID := uuid.New()
	writerID := uuid.New()
	task := inProgressTask(studentID, writerID)
	fileIDs := []uuid.UUID{uuid.New()}

	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("HasPending", ctx, writerID).Return(false, nil)
	files.On("GetOwned", ctx, writerID, fileIDs).Return([]models.StoredFile{{ID: fileIDs[0]}}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Submission"), fileIDs).Return(nil)
	notifier.On("Notify", ctx, studentID, models.NotificationSubmissionUploaded,
		mock.Anything, mock.Anything, mock.Anything).Return()

	submission, err := svc.Submit(ctx, task.ID, writerID, fileIDs)
	assert.NoError(t, err)
	assert.Equal(t, task.ID, submission.TaskID)
	assert.Equal(t, writerID, submission.WriterID)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSubmissionService_Submit_NoFiles(t *testing.T) {
	svc := NewSubmissionService(new(mockSubmissionRepo), new(mockTaskRepo), new(mockFileRepo), new(mockNotifier))

	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestSubmissionService_Submit_NotAssignedWriter(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := NewSubmissionService(new(mockSubmissionRepo), tasks, new(mockFileRepo), new(mockNotifier))
	ctx := context.Background()

	task := inProgressTask(uuid.New(), uuid.New())
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)

	_, err := svc.Submit(ctx, task.ID, uuid.New(), []uuid.UUID{uuid.New()})
	assert.True(t, apperror.IsForbidden(err))
}

func TestSubmissionService_Submit_TaskNotInProgress(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := NewSubmissionService(new(mockSubmissionRepo), tasks, new(mockFileRepo), new(mockNotifier))
	ctx := context.Background()

	writerID := uuid.New()
	task := inProgressTask(uuid.New(), writerID)
	task.Status = models.TaskStatusSubmitted
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)

	_, err := svc.Submit(ctx, task.ID, writerID, []uuid.UUID{uuid.New()})
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeInvalidState))
}

func TestSubmissionService_Submit_PendingExists(t *testing.T) {
	repo := new(mockSubmissionRepo)
	tasks := new(mockTaskRepo)
	svc := NewSubmissionService(repo, tasks, new(mockFileRepo), new(mockNotifier))
	ctx := context.Background()

	writerID := uuid.New()
	task := inProgressTask(uuid.New(), writerID)
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("HasPending", ctx, writerID).Return(true, nil)

	_, err := svc.Submit(ctx, task.ID, writerID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrPendingSubmission)
	assert.Equal(t, 409, apperror.Status(err))
}

func TestSubmissionService_Submit_PendingRace(t *testing.T) {
	repo := new(mockSubmissionRepo)
	tasks := new(mockTaskRepo)
	files := new(mockFileRepo)
	svc := NewSubmissionService(repo, tasks, files, new(mockNotifier))
	ctx := context.Background()

	writerID := uuid.New()
	task := inProgressTask(uuid.New(), writerID)
	fileIDs := []uuid.UUID{uuid.New()}

	// Индекс в базе ловит гонку, которую ранняя проверка пропустила.
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("HasPending", ctx, writerID).Return(false, nil)
	files.On("GetOwned", ctx, writerID, fileIDs).Return([]models.StoredFile{{ID: fileIDs[0]}}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Submission"), fileIDs).Return(repository.ErrPendingSubmission)

	_, err := svc.Submit(ctx, task.ID, writerID, fileIDs)
	assert.ErrorIs(t, err, apperror.ErrPendingSubmission)
}

func TestSubmissionService_Approve_Success(t *testing.T) {
	repo := new(mockSubmissionRepo)
	tasks := new(mockTaskRepo)
	notifier := new(mockNotifier)
	svc := NewSubmissionService(repo, tasks, new(mockFileRepo), notifier)
	ctx := context.Background()

	studentID := uuid.New()
	writerID := uuid.New()
	task := inProgressTask(studentID, writerID)

	submissionID := uuid.New()
	pending := &models.Submission{ID: submissionID, TaskID: task.ID, WriterID: writerID, Status: models.SubmissionStatusSubmitted}
	approved := &models.Submission{ID: submissionID, TaskID: task.ID, WriterID: writerID, Status: models.SubmissionStatusApproved}
	payout := &models.Payment{ID: uuid.New(), UserID: writerID, Type: models.PaymentTypePayout, Amount: task.Budget}

	repo.On("GetByID", ctx, submissionID).Return(pending, nil)
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("Approve", ctx, submissionID, task.Budget, "PAYOUT-"+submissionID.String()).Return(approved, payout, nil)
	notifier.On("Notify", ctx, writerID, models.NotificationSubmissionApproved,
		mock.Anything, mock.Anything, mock.Anything).Return()
	notifier.On("Notify", ctx, writerID, models.NotificationPaymentReleased,
		mock.Anything, mock.Anything, mock.Anything).Return()
	notifier.On("Notify", ctx, studentID, models.NotificationSubmissionApproved,
		mock.Anything, mock.Anything, mock.Anything).Return()

	gotSubmission, gotPayout, err := svc.Approve(ctx, submissionID, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusApproved, gotSubmission.Status)
	assert.Equal(t, task.Budget, gotPayout.Amount)
	notifier.AssertExpectations(t)
}

func TestSubmissionService_Approve_NonAdminForbidden(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo, new(mockTaskRepo), new(mockFileRepo), new(mockNotifier))

	// Решение по сдаче принимает только администратор, даже владелец
	// задачи не может одобрить работу сам.
	for _, role := range []string{models.RoleStudent, models.RoleWriter} {
		_, _, err := svc.Approve(context.Background(), uuid.New(), role)
		assert.True(t, apperror.IsForbidden(err))
	}
	repo.AssertNotCalled(t, "Approve")
}

func TestSubmissionService_Approve_DecisionAlreadyMade(t *testing.T) {
	repo := new(mockSubmissionRepo)
	tasks := new(mockTaskRepo)
	svc := NewSubmissionService(repo, tasks, new(mockFileRepo), new(mockNotifier))
	ctx := context.Background()

	task := inProgressTask(uuid.New(), uuid.New())
	submissionID := uuid.New()
	pending := &models.Submission{ID: submissionID, TaskID: task.ID, WriterID: *task.WriterID}

	repo.On("GetByID", ctx, submissionID).Return(pending, nil)
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("Approve", ctx, submissionID, task.Budget, mock.Anything).Return(nil, nil, repository.ErrSubmissionConflict)

	_, _, err := svc.Approve(ctx, submissionID, models.RoleAdmin)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeInvalidState))
	assert.Equal(t, 409, apperror.Status(err))
}

func TestSubmissionService_Reject_RequiresReason(t *testing.T) {
	svc := NewSubmissionService(new(mockSubmissionRepo), new(mockTaskRepo), new(mockFileRepo), new(mockNotifier))

	_, err := svc.Reject(context.Background(), uuid.New(), models.RoleAdmin, "   ")
	assert.True(t, apperror.IsValidation(err))
}

func TestSubmissionService_Reject_NonAdminForbidden(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo, new(mockTaskRepo), new(mockFileRepo), new(mockNotifier))

	_, err := svc.Reject(context.Background(), uuid.New(), models.RoleStudent, "слабая аргументация")
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Reject")
}

func TestSubmissionService_Reject_Success(t *testing.T) {
	repo := new(mockSubmissionRepo)
	tasks := new(mockTaskRepo)
	notifier := new(mockNotifier)
	svc := NewSubmissionService(repo, tasks, new(mockFileRepo), notifier)
	ctx := context.Background()

	task := inProgressTask(uuid.New(), uuid.New())
	submissionID := uuid.New()
	reason := "не раскрыта вторая глава"
	pending := &models.Submission{ID: submissionID, TaskID: task.ID, WriterID: *task.WriterID}
	rejected := &models.Submission{ID: submissionID, TaskID: task.ID, WriterID: *task.WriterID, Status: models.SubmissionStatusRejected, RejectionReason: &reason}

	repo.On("GetByID", ctx, submissionID).Return(pending, nil)
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("Reject", ctx, submissionID, reason).Return(rejected, nil)
	notifier.On("Notify", ctx, rejected.WriterID, models.NotificationSubmissionRejected,
		mock.Anything, mock.Anything, mock.Anything).Return()

	got, err := svc.Reject(ctx, submissionID, models.RoleAdmin, reason)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusRejected, got.Status)
	notifier.AssertExpectations(t)
}

func TestSubmissionService_Get_Authorization(t *testing.T) {
	repo := new(mockSubmissionRepo)
	tasks := new(mockTaskRepo)
	svc := NewSubmissionService(repo, tasks, new(mockFileRepo), new(mockNotifier))
	ctx := context.Background()

	studentID := uuid.New()
	writerID := uuid.New()
	task := inProgressTask(studentID, writerID)
	submission := &models.Submission{ID: uuid.New(), TaskID: task.ID, WriterID: writerID}

	repo.On("GetByID", ctx, submission.ID).Return(submission, nil)
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)

	_, err := svc.Get(ctx, submission.ID, writerID, models.RoleWriter)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, submission.ID, studentID, models.RoleStudent)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, submission.ID, uuid.New(), models.RoleStudent)
	assert.True(t, apperror.IsForbidden(err))
}
