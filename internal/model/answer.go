package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one candidate response, unique per (session, question).
// IsCorrect and Points are nil until the scoring engine writes them at
// submission; the candidate-facing save path never touches them.
type Answer struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption *string   `json:"selected_option,omitempty"`
	TextResponse   *string   `json:"text_response,omitempty"`
	IsFlagged      bool      `json:"is_flagged"`
	IsCorrect      *bool     `json:"is_correct,omitempty"`
	Points         *int      `json:"points,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SaveAnswerRequest carries the full answer payload for one question.
// Saves are last-write-wins: the whole payload replaces the stored one,
// so callers must always send the complete current state (flag included).
type SaveAnswerRequest struct {
	SelectedOption *string `json:"selected_option" binding:"omitempty,max=10"`
	TextResponse   *string `json:"text_response" binding:"omitempty,max=10000"`
	IsFlagged      bool    `json:"is_flagged"`
	QuestionIndex  int     `json:"question_index" binding:"min=0"`
}
