package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/repository"
)

// Store interfaces abstract the repository layer for the services. They are
// satisfied by the concrete repositories in internal/repository and by mocks
// in tests.

// EnrollmentStore is the enrollment access the services need.
type EnrollmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	Create(ctx context.Context, e *model.Enrollment) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus, approvedBy *uuid.UUID, at time.Time) (bool, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, status model.EnrollmentStatus) ([]model.EnrollmentWithExam, error)
}

// SessionStore is the exam session access the services need.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	LatestInProgress(ctx context.Context, enrollmentID uuid.UUID) (*model.ExamSession, error)
	LatestUnfinished(ctx context.Context, enrollmentID uuid.UUID) (*model.ExamSession, error)
	CountByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (int, error)
	Create(ctx context.Context, s *model.ExamSession) error
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SetResult(ctx context.Context, id uuid.UUID, score int, passed bool) error
	UpdateLastViewed(ctx context.Context, id uuid.UUID, index int) error
	CountByExam(ctx context.Context, examID uuid.UUID) (int, error)
	ListByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]repository.SessionResult, error)
}

// AnswerStore is the answer access the services need.
type AnswerStore interface {
	Upsert(ctx context.Context, a *model.Answer) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error)
	SetVerdict(ctx context.Context, sessionID, questionID uuid.UUID, isCorrect bool, points int) error
	CreateScored(ctx context.Context, sessionID, questionID uuid.UUID, isCorrect bool, points int) error
}

// QuestionStore is the read-only question bank access the services need.
type QuestionStore interface {
	ListApprovedByBank(ctx context.Context, bankID uuid.UUID) ([]model.Question, error)
	GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error)
}

// ExamStore is the exam access the services need.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	Create(ctx context.Context, x *model.Exam) error
	Update(ctx context.Context, x *model.Exam) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ExamStatus) (bool, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]model.Exam, error)
}

// UserStore is the user access the services need.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// Transactor runs a function inside a database transaction. Store calls made
// with the context it passes to fn join that transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
