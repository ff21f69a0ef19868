package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates invitation states.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "PENDING"
	EnrollmentStatusEnrolled EnrollmentStatus = "ENROLLED"
	EnrollmentStatusRejected EnrollmentStatus = "REJECTED"
)

// Enrollment links one candidate to one exam. Unique per (exam, candidate).
// AttemptsUsed only ever increments; the session core bumps it inside the
// same transaction that creates a session.
type Enrollment struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	ExamID         uuid.UUID        `json:"exam_id"`
	CandidateID    uuid.UUID        `json:"candidate_id"`
	Status         EnrollmentStatus `json:"status"`
	AttemptsUsed   int              `json:"attempts_used"`
	InvitedAt      time.Time        `json:"invited_at"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	ApprovedBy     *uuid.UUID       `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty"`
}

// InvitationExpired reports whether the invitation window has passed.
func (e *Enrollment) InvitationExpired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// EnrollmentWithExam is an enrollment joined with its exam, as listed in the
// candidate dashboard.
type EnrollmentWithExam struct {
	Enrollment
	Exam      Exam `json:"exam"`
	IsExpired bool `json:"is_expired"`
}

// InviteCandidateRequest is the payload for inviting a candidate to an exam.
type InviteCandidateRequest struct {
	CandidateEmail string     `json:"candidate_email" binding:"required,email"`
	ExpiresAt      *time.Time `json:"expires_at" binding:"omitempty"`
}
