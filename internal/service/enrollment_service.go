package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/proctorguard/backend/internal/model"
)

// Domain Errors
var (
	ErrEnrollmentNotPending = errors.New("enrollment is not PENDING")
	ErrInvitationExpired    = errors.New("invitation has expired")
)

// EnrollmentService handles the candidate side of the invitation workflow:
// listing invitations, accepting and declining them, and listing the exams a
// candidate is enrolled in.
type EnrollmentService struct {
	enrollmentStore EnrollmentStore
	now             func() time.Time
	log             zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(enrollmentStore EnrollmentStore, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		enrollmentStore: enrollmentStore,
		now:             time.Now,
		log:             log.With().Str("component", "enrollment_service").Logger(),
	}
}

// ListPendingInvitations retrieves a candidate's PENDING invitations with
// their exams. Expired invitations are included and flagged; they stay
// visible but cannot be accepted.
func (s *EnrollmentService) ListPendingInvitations(ctx context.Context, candidateID uuid.UUID) ([]model.EnrollmentWithExam, error) {
	list, err := s.enrollmentStore.ListByCandidate(ctx, candidateID, model.EnrollmentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if list == nil {
		list = []model.EnrollmentWithExam{}
	}
	return list, nil
}

// ListEnrolledExams retrieves the exams a candidate holds an ENROLLED
// enrollment for.
func (s *EnrollmentService) ListEnrolledExams(ctx context.Context, candidateID uuid.UUID) ([]model.EnrollmentWithExam, error) {
	list, err := s.enrollmentStore.ListByCandidate(ctx, candidateID, model.EnrollmentStatusEnrolled)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	if list == nil {
		list = []model.EnrollmentWithExam{}
	}
	return list, nil
}

// Accept moves a PENDING invitation to ENROLLED. Expired invitations cannot
// be accepted; the guarded status update makes a double accept fail instead
// of silently succeeding twice.
func (s *EnrollmentService) Accept(ctx context.Context, candidateID, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.getOwnedPending(ctx, candidateID, enrollmentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if enrollment.InvitationExpired(now) {
		return nil, ErrInvitationExpired
	}

	ok, err := s.enrollmentStore.SetStatus(ctx, enrollment.ID, model.EnrollmentStatusEnrolled, &candidateID, now)
	if err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	if !ok {
		return nil, ErrEnrollmentNotPending
	}

	enrollment.Status = model.EnrollmentStatusEnrolled
	enrollment.ApprovedBy = &candidateID
	enrollment.ApprovedAt = &now
	s.log.Info().
		Str("enrollment_id", enrollment.ID.String()).
		Str("candidate_id", candidateID.String()).
		Msg("invitation accepted")
	return enrollment, nil
}

// Decline moves a PENDING invitation to REJECTED. Declining an expired
// invitation is allowed; the candidate is cleaning up either way.
func (s *EnrollmentService) Decline(ctx context.Context, candidateID, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.getOwnedPending(ctx, candidateID, enrollmentID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	ok, err := s.enrollmentStore.SetStatus(ctx, enrollment.ID, model.EnrollmentStatusRejected, nil, now)
	if err != nil {
		return nil, fmt.Errorf("decline invitation: %w", err)
	}
	if !ok {
		return nil, ErrEnrollmentNotPending
	}

	enrollment.Status = model.EnrollmentStatusRejected
	enrollment.ApprovedAt = &now
	s.log.Info().
		Str("enrollment_id", enrollment.ID.String()).
		Str("candidate_id", candidateID.String()).
		Msg("invitation declined")
	return enrollment, nil
}

func (s *EnrollmentService) getOwnedPending(ctx context.Context, candidateID, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentStore.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if enrollment.CandidateID != candidateID {
		return nil, ErrUnauthorized
	}
	if enrollment.Status != model.EnrollmentStatusPending {
		return nil, ErrEnrollmentNotPending
	}
	return enrollment, nil
}
