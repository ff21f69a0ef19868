package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorguard/backend/internal/model"
)

const examColumns = `id, organization_id, question_bank_id, title, description,
	duration_minutes, scheduled_start, scheduled_end, allowed_attempts,
	passing_score, status, created_by, created_at, updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row interface{ Scan(dest ...any) error }) (*model.Exam, error) {
	x := &model.Exam{}
	err := row.Scan(
		&x.ID, &x.OrganizationID, &x.QuestionBankID, &x.Title, &x.Description,
		&x.DurationMinutes, &x.ScheduledStart, &x.ScheduledEnd, &x.AllowedAttempts,
		&x.PassingScore, &x.Status, &x.CreatedBy, &x.CreatedAt, &x.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// GetByID retrieves an exam by its id.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// Create inserts a new DRAFT exam.
func (r *ExamRepository) Create(ctx context.Context, x *model.Exam) error {
	return querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO exams (organization_id, question_bank_id, title, description,
		                    duration_minutes, scheduled_start, scheduled_end,
		                    allowed_attempts, passing_score, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		x.OrganizationID, x.QuestionBankID, x.Title, x.Description,
		x.DurationMinutes, x.ScheduledStart, x.ScheduledEnd,
		x.AllowedAttempts, x.PassingScore, x.Status, x.CreatedBy,
	).Scan(&x.ID, &x.CreatedAt, &x.UpdatedAt)
}

// Update rewrites a DRAFT exam's configuration. Exams with sessions against
// them are immutable except for status; the status guard enforces that
// because leaving DRAFT is a one-way edge.
func (r *ExamRepository) Update(ctx context.Context, x *model.Exam) (bool, error) {
	tag, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, duration_minutes = $3,
		     scheduled_start = $4, scheduled_end = $5, allowed_attempts = $6,
		     passing_score = $7, updated_at = NOW()
		 WHERE id = $8 AND status = $9`,
		x.Title, x.Description, x.DurationMinutes,
		x.ScheduledStart, x.ScheduledEnd, x.AllowedAttempts,
		x.PassingScore, x.ID, model.ExamStatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateStatus transitions an exam's status, guarded by the expected current
// status so concurrent coordinators cannot double-apply a transition.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ExamStatus) (bool, error) {
	tag, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByOrganization retrieves all exams for an organization, newest first.
func (r *ExamRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]model.Exam, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE organization_id = $1
		 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		x, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *x)
	}
	return exams, rows.Err()
}
