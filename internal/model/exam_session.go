package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "NOT_STARTED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// CanTransitionTo encodes the one-way session lifecycle:
// NOT_STARTED → IN_PROGRESS → COMPLETED, no backward edges.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	switch s {
	case SessionStatusNotStarted:
		return target == SessionStatusInProgress
	case SessionStatusInProgress:
		return target == SessionStatusCompleted
	case SessionStatusCompleted:
		return false
	}
	return false
}

// ExamSession is one timed attempt at an exam, owned by one enrollment.
// AttemptNumber is 1-based, assigned at creation and never reused.
// Score and Passed stay nil until the scoring engine runs at completion.
type ExamSession struct {
	ID                      uuid.UUID     `json:"id"`
	ExamID                  uuid.UUID     `json:"exam_id"`
	EnrollmentID            uuid.UUID     `json:"enrollment_id"`
	CandidateID             uuid.UUID     `json:"candidate_id"`
	AttemptNumber           int           `json:"attempt_number"`
	Status                  SessionStatus `json:"status"`
	StartedAt               *time.Time    `json:"started_at,omitempty"`
	CompletedAt             *time.Time    `json:"completed_at,omitempty"`
	LastViewedQuestionIndex int           `json:"last_viewed_question_index"`
	Score                   *int          `json:"score,omitempty"`
	Passed                  *bool         `json:"passed,omitempty"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}

// SessionState is the live view of an IN_PROGRESS session returned to the
// candidate UI on reload: where they were and how long they have left.
type SessionState struct {
	SessionID               uuid.UUID     `json:"session_id"`
	Status                  SessionStatus `json:"status"`
	AttemptNumber           int           `json:"attempt_number"`
	StartedAt               *time.Time    `json:"started_at,omitempty"`
	CompletedAt             *time.Time    `json:"completed_at,omitempty"`
	LastViewedQuestionIndex int           `json:"last_viewed_question_index"`
	Score                   *int          `json:"score,omitempty"`
	Passed                  *bool         `json:"passed,omitempty"`
	MinutesRemaining        *int          `json:"minutes_remaining,omitempty"`
	ExpiresAt               *time.Time    `json:"expires_at,omitempty"`
	AutoSubmitted           bool          `json:"auto_submitted,omitempty"`
}
