package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusScheduled ExamStatus = "SCHEDULED"
	ExamStatusActive    ExamStatus = "ACTIVE"
	ExamStatusCompleted ExamStatus = "COMPLETED"
	ExamStatusCancelled ExamStatus = "CANCELLED"
)

// CanTransitionTo reports whether a coordinator may move an exam from the
// current status to the target status. COMPLETED and CANCELLED are terminal.
func (s ExamStatus) CanTransitionTo(target ExamStatus) bool {
	switch s {
	case ExamStatusDraft:
		return target == ExamStatusScheduled || target == ExamStatusActive || target == ExamStatusCancelled
	case ExamStatusScheduled:
		return target == ExamStatusActive || target == ExamStatusCancelled
	case ExamStatusActive:
		return target == ExamStatusCompleted || target == ExamStatusCancelled
	case ExamStatusCompleted, ExamStatusCancelled:
		return false
	}
	return false
}

// Joinable reports whether candidates may create sessions against this exam.
func (s ExamStatus) Joinable() bool {
	return s == ExamStatusActive || s == ExamStatusScheduled
}

// Exam represents a scheduled exam backed by a question bank.
// Configuration is owned by the coordinator workflow; the session core only
// reads it and relies on status transitions being one-way.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organization_id"`
	QuestionBankID  uuid.UUID  `json:"question_bank_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	ScheduledStart  *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time `json:"scheduled_end,omitempty"`
	AllowedAttempts int        `json:"allowed_attempts"`
	PassingScore    int        `json:"passing_score"`
	Status          ExamStatus `json:"status"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=255"`
	Description     string     `json:"description" binding:"omitempty,max=2000"`
	QuestionBankID  uuid.UUID  `json:"question_bank_id" binding:"required"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	ScheduledStart  *time.Time `json:"scheduled_start" binding:"omitempty"`
	ScheduledEnd    *time.Time `json:"scheduled_end" binding:"omitempty,gtfield=ScheduledStart"`
	AllowedAttempts int        `json:"allowed_attempts" binding:"required,min=1,max=10"`
	PassingScore    int        `json:"passing_score" binding:"min=0,max=100"`
}

// UpdateExamRequest is the payload for editing a DRAFT exam.
type UpdateExamRequest struct {
	Title           string     `json:"title" binding:"omitempty,min=3,max=255"`
	Description     *string    `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	ScheduledStart  *time.Time `json:"scheduled_start" binding:"omitempty"`
	ScheduledEnd    *time.Time `json:"scheduled_end" binding:"omitempty,gtfield=ScheduledStart"`
	AllowedAttempts int        `json:"allowed_attempts" binding:"omitempty,min=1,max=10"`
	PassingScore    *int       `json:"passing_score" binding:"omitempty,min=0,max=100"`
}

// ChangeExamStatusRequest is the payload for a coordinator status transition.
type ChangeExamStatusRequest struct {
	Status ExamStatus `json:"status" binding:"required,oneof=SCHEDULED ACTIVE COMPLETED CANCELLED"`
}
