package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/proctorguard/backend/internal/model"
)

func newEnrollmentServiceFixture(now time.Time) (*mockEnrollmentStore, *EnrollmentService) {
	store := new(mockEnrollmentStore)
	svc := NewEnrollmentService(store, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return store, svc
}

func pendingInvitation(candidateID uuid.UUID, expiresAt *time.Time) *model.Enrollment {
	return &model.Enrollment{
		ID:          uuid.New(),
		ExamID:      uuid.New(),
		CandidateID: candidateID,
		Status:      model.EnrollmentStatusPending,
		ExpiresAt:   expiresAt,
	}
}

func TestAcceptInvitation(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	candidateID := uuid.New()

	t.Run("pending invitation is accepted", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		enrollment := pendingInvitation(candidateID, nil)
		store.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
		store.On("SetStatus", mock.Anything, enrollment.ID, model.EnrollmentStatusEnrolled, &candidateID, now).Return(true, nil)

		accepted, err := svc.Accept(context.Background(), candidateID, enrollment.ID)

		require.NoError(t, err)
		assert.Equal(t, model.EnrollmentStatusEnrolled, accepted.Status)
		require.NotNil(t, accepted.ApprovedAt)
		assert.Equal(t, now, *accepted.ApprovedAt)
		store.AssertExpectations(t)
	})

	t.Run("expired invitation cannot be accepted", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		expired := now.Add(-time.Hour)
		enrollment := pendingInvitation(candidateID, &expired)
		store.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)

		_, err := svc.Accept(context.Background(), candidateID, enrollment.ID)

		assert.ErrorIs(t, err, ErrInvitationExpired)
		store.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("double accept loses the guarded update", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		enrollment := pendingInvitation(candidateID, nil)
		store.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
		store.On("SetStatus", mock.Anything, enrollment.ID, model.EnrollmentStatusEnrolled, &candidateID, now).Return(false, nil)

		_, err := svc.Accept(context.Background(), candidateID, enrollment.ID)

		assert.ErrorIs(t, err, ErrEnrollmentNotPending)
	})

	t.Run("already enrolled", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		enrollment := pendingInvitation(candidateID, nil)
		enrollment.Status = model.EnrollmentStatusEnrolled
		store.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)

		_, err := svc.Accept(context.Background(), candidateID, enrollment.ID)

		assert.ErrorIs(t, err, ErrEnrollmentNotPending)
	})

	t.Run("someone else's invitation", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		enrollment := pendingInvitation(uuid.New(), nil)
		store.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)

		_, err := svc.Accept(context.Background(), candidateID, enrollment.ID)

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		enrollmentID := uuid.New()
		store.On("GetByID", mock.Anything, enrollmentID).Return(nil, pgx.ErrNoRows)

		_, err := svc.Accept(context.Background(), candidateID, enrollmentID)

		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestDeclineInvitation(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	candidateID := uuid.New()

	t.Run("pending invitation is declined", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		enrollment := pendingInvitation(candidateID, nil)
		store.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
		store.On("SetStatus", mock.Anything, enrollment.ID, model.EnrollmentStatusRejected, (*uuid.UUID)(nil), now).Return(true, nil)

		declined, err := svc.Decline(context.Background(), candidateID, enrollment.ID)

		require.NoError(t, err)
		assert.Equal(t, model.EnrollmentStatusRejected, declined.Status)
	})

	t.Run("expired invitation can still be declined", func(t *testing.T) {
		store, svc := newEnrollmentServiceFixture(now)
		expired := now.Add(-time.Hour)
		enrollment := pendingInvitation(candidateID, &expired)
		store.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
		store.On("SetStatus", mock.Anything, enrollment.ID, model.EnrollmentStatusRejected, (*uuid.UUID)(nil), now).Return(true, nil)

		_, err := svc.Decline(context.Background(), candidateID, enrollment.ID)

		require.NoError(t, err)
	})
}

func TestListPendingInvitations(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	candidateID := uuid.New()
	store, svc := newEnrollmentServiceFixture(now)

	store.On("ListByCandidate", mock.Anything, candidateID, model.EnrollmentStatusPending).Return([]model.EnrollmentWithExam(nil), nil)

	list, err := svc.ListPendingInvitations(context.Background(), candidateID)

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
