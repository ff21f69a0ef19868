package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorguard/backend/internal/model"
)

// QuestionRepository is the read-only question-bank access used by the
// session core. Authoring and approval belong to the question-bank workflow.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListApprovedByBank retrieves all APPROVED questions in a bank, ordered by
// creation time. Stable order matters: a resumed session must see the same
// question sequence it started with.
func (r *QuestionRepository) ListApprovedByBank(ctx context.Context, bankID uuid.UUID) ([]model.Question, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT id, question_bank_id, type, text, options, correct_answer, points, status, created_at
		 FROM questions
		 WHERE question_bank_id = $1 AND status = $2
		 ORDER BY created_at ASC, id ASC`, bankID, model.QuestionStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.QuestionBankID, &q.Type, &q.Text, &q.Options,
			&q.CorrectAnswer, &q.Points, &q.Status, &q.CreatedAt,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetBank retrieves a question bank by id.
func (r *QuestionRepository) GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT id, organization_id, name, description, status, created_at, updated_at
		 FROM question_banks WHERE id = $1`, id,
	).Scan(&b.ID, &b.OrganizationID, &b.Name, &b.Description, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}
