package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorguard/backend/internal/model"
)

// AnswerRepository handles per-question answer data access. Rows are unique
// per (session, question); candidate saves overwrite the payload wholesale.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert writes the full answer payload for one question, last write wins.
// Scoring fields are untouched here: only the scoring engine writes them.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	return querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO answers (session_id, question_id, selected_option, text_response, is_flagged)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET selected_option = EXCLUDED.selected_option,
		     text_response = EXCLUDED.text_response,
		     is_flagged = EXCLUDED.is_flagged,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		a.SessionID, a.QuestionID, a.SelectedOption, a.TextResponse, a.IsFlagged,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// ListBySession retrieves all answers for a session.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT id, session_id, question_id, selected_option, text_response,
		        is_flagged, is_correct, points, created_at, updated_at
		 FROM answers
		 WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.QuestionID, &a.SelectedOption, &a.TextResponse,
			&a.IsFlagged, &a.IsCorrect, &a.Points, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SetVerdict writes the scoring outcome onto an existing answer row.
func (r *AnswerRepository) SetVerdict(ctx context.Context, sessionID, questionID uuid.UUID, isCorrect bool, points int) error {
	_, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE answers
		 SET is_correct = $1, points = $2, updated_at = NOW()
		 WHERE session_id = $3 AND question_id = $4`,
		isCorrect, points, sessionID, questionID)
	return err
}

// CreateScored inserts a synthetic answer row for a question the candidate
// never answered, so every scoreable question has a scored row after
// submission.
func (r *AnswerRepository) CreateScored(ctx context.Context, sessionID, questionID uuid.UUID, isCorrect bool, points int) error {
	_, err := querier(ctx, r.pool).Exec(ctx,
		`INSERT INTO answers (session_id, question_id, is_flagged, is_correct, points)
		 VALUES ($1, $2, FALSE, $3, $4)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET is_correct = EXCLUDED.is_correct, points = EXCLUDED.points, updated_at = NOW()`,
		sessionID, questionID, isCorrect, points)
	return err
}
