package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/repository"
)

// Shared store mocks for the service tests.

type mockEnrollmentStore struct {
	mock.Mock
}

func (m *mockEnrollmentStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *mockEnrollmentStore) Create(ctx context.Context, e *model.Enrollment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEnrollmentStore) SetStatus(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus, approvedBy *uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, status, approvedBy, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnrollmentStore) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockEnrollmentStore) ListByCandidate(ctx context.Context, candidateID uuid.UUID, status model.EnrollmentStatus) ([]model.EnrollmentWithExam, error) {
	args := m.Called(ctx, candidateID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EnrollmentWithExam), args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExamSession), args.Error(1)
}

func (m *mockSessionStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExamSession), args.Error(1)
}

func (m *mockSessionStore) LatestInProgress(ctx context.Context, enrollmentID uuid.UUID) (*model.ExamSession, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExamSession), args.Error(1)
}

func (m *mockSessionStore) LatestUnfinished(ctx context.Context, enrollmentID uuid.UUID) (*model.ExamSession, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExamSession), args.Error(1)
}

func (m *mockSessionStore) CountByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (int, error) {
	args := m.Called(ctx, enrollmentID)
	return args.Int(0), args.Error(1)
}

func (m *mockSessionStore) Create(ctx context.Context, s *model.ExamSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSessionStore) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionStore) Complete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionStore) SetResult(ctx context.Context, id uuid.UUID, score int, passed bool) error {
	args := m.Called(ctx, id, score, passed)
	return args.Error(0)
}

func (m *mockSessionStore) UpdateLastViewed(ctx context.Context, id uuid.UUID, index int) error {
	args := m.Called(ctx, id, index)
	return args.Error(0)
}

func (m *mockSessionStore) CountByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	args := m.Called(ctx, examID)
	return args.Int(0), args.Error(1)
}

func (m *mockSessionStore) ListByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]repository.SessionResult, error) {
	args := m.Called(ctx, examID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.SessionResult), args.Error(1)
}

type mockAnswerStore struct {
	mock.Mock
}

func (m *mockAnswerStore) Upsert(ctx context.Context, a *model.Answer) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAnswerStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Answer), args.Error(1)
}

func (m *mockAnswerStore) SetVerdict(ctx context.Context, sessionID, questionID uuid.UUID, isCorrect bool, points int) error {
	args := m.Called(ctx, sessionID, questionID, isCorrect, points)
	return args.Error(0)
}

func (m *mockAnswerStore) CreateScored(ctx context.Context, sessionID, questionID uuid.UUID, isCorrect bool, points int) error {
	args := m.Called(ctx, sessionID, questionID, isCorrect, points)
	return args.Error(0)
}

type mockQuestionStore struct {
	mock.Mock
}

func (m *mockQuestionStore) ListApprovedByBank(ctx context.Context, bankID uuid.UUID) ([]model.Question, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Question), args.Error(1)
}

func (m *mockQuestionStore) GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestionBank), args.Error(1)
}

type mockExamStore struct {
	mock.Mock
}

func (m *mockExamStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Exam), args.Error(1)
}

func (m *mockExamStore) Create(ctx context.Context, x *model.Exam) error {
	args := m.Called(ctx, x)
	return args.Error(0)
}

func (m *mockExamStore) Update(ctx context.Context, x *model.Exam) (bool, error) {
	args := m.Called(ctx, x)
	return args.Bool(0), args.Error(1)
}

func (m *mockExamStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ExamStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockExamStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]model.Exam, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Exam), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// mockTransactor runs the callback directly; the stores under it are mocks,
// so there is nothing transactional to do.
type mockTransactor struct{}

func (m *mockTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
