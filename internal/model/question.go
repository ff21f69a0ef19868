package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates supported question kinds. Essay questions are
// excluded from automatic scoring.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeEssay          QuestionType = "essay"
)

// Objective reports whether the question is eligible for automatic scoring.
func (t QuestionType) Objective() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// QuestionStatus enumerates the authoring workflow states. Only APPROVED
// questions count toward scoring.
type QuestionStatus string

const (
	QuestionStatusDraft    QuestionStatus = "DRAFT"
	QuestionStatusPending  QuestionStatus = "PENDING_REVIEW"
	QuestionStatusApproved QuestionStatus = "APPROVED"
	QuestionStatusRejected QuestionStatus = "REJECTED"
)

// Question is read-only to the session core; authoring and approval live in
// the question-bank workflow. CorrectAnswer is stored as raw JSON because
// legacy rows carry three shapes: a plain string ("B"), a bare boolean, or a
// wrapper object {"answer": ...}. The scoring package normalizes it.
type Question struct {
	ID             uuid.UUID       `json:"id"`
	QuestionBankID uuid.UUID       `json:"question_bank_id"`
	Type           QuestionType    `json:"type"`
	Text           string          `json:"text"`
	Options        json.RawMessage `json:"options,omitempty"`
	CorrectAnswer  json.RawMessage `json:"-"`
	Points         int             `json:"points"`
	Status         QuestionStatus  `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// QuestionForCandidate is a question as served to an exam taker: the correct
// answer is stripped, points stay visible.
type QuestionForCandidate struct {
	ID      uuid.UUID       `json:"id"`
	Type    QuestionType    `json:"type"`
	Text    string          `json:"text"`
	Options json.RawMessage `json:"options,omitempty"`
	Points  int             `json:"points"`
}

// ForCandidate strips the fields a candidate must never see.
func (q *Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		ID:      q.ID,
		Type:    q.Type,
		Text:    q.Text,
		Options: q.Options,
		Points:  q.Points,
	}
}
