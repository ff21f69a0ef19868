package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBankStatus enumerates the bank approval workflow.
type QuestionBankStatus string

const (
	QuestionBankStatusDraft    QuestionBankStatus = "DRAFT"
	QuestionBankStatusApproved QuestionBankStatus = "APPROVED"
	QuestionBankStatusArchived QuestionBankStatus = "ARCHIVED"
)

// QuestionBank is a collection of questions. Exams may only be created
// against APPROVED banks.
type QuestionBank struct {
	ID             uuid.UUID          `json:"id"`
	OrganizationID uuid.UUID          `json:"organization_id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Status         QuestionBankStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ExamPaper is the candidate-facing view of an exam's question set, cached
// in Redis keyed by exam. Question order is stable (creation time) so a
// resumed session always sees the same sequence.
type ExamPaper struct {
	ExamID          uuid.UUID              `json:"exam_id"`
	Title           string                 `json:"title"`
	DurationMinutes int                    `json:"duration_minutes"`
	Questions       []QuestionForCandidate `json:"questions"`
}
