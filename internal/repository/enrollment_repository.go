package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorguard/backend/internal/model"
)

const enrollmentColumns = `id, organization_id, exam_id, candidate_id, status,
	attempts_used, invited_at, expires_at, approved_by, approved_at`

// EnrollmentRepository handles enrollment data access. Enrollment rows are
// owned by the invitation workflow; the session core reads them and bumps
// attempts_used.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

func scanEnrollment(row interface{ Scan(dest ...any) error }) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := row.Scan(
		&e.ID, &e.OrganizationID, &e.ExamID, &e.CandidateID, &e.Status,
		&e.AttemptsUsed, &e.InvitedAt, &e.ExpiresAt, &e.ApprovedBy, &e.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an enrollment by id.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	return scanEnrollment(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id))
}

// Create inserts a PENDING enrollment. The unique constraint on
// (exam_id, candidate_id) rejects duplicate invitations.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO enrollments (organization_id, exam_id, candidate_id, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, invited_at`,
		e.OrganizationID, e.ExamID, e.CandidateID, e.Status, e.ExpiresAt,
	).Scan(&e.ID, &e.InvitedAt)
}

// SetStatus moves an enrollment out of PENDING. approvedBy is recorded on
// acceptance, left nil on decline. Returns false if the enrollment was not
// PENDING anymore.
func (r *EnrollmentRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus, approvedBy *uuid.UUID, at time.Time) (bool, error) {
	tag, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE enrollments
		 SET status = $1, approved_by = $2, approved_at = $3
		 WHERE id = $4 AND status = $5`,
		status, approvedBy, at, id, model.EnrollmentStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementAttempts bumps attempts_used by one. Monotonic: there is no
// decrement anywhere.
func (r *EnrollmentRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	_, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE enrollments SET attempts_used = attempts_used + 1 WHERE id = $1`, id)
	return err
}

// ListByCandidate retrieves a candidate's enrollments in one status, joined
// with their exams, newest invitation first.
func (r *EnrollmentRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, status model.EnrollmentStatus) ([]model.EnrollmentWithExam, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT e.id, e.organization_id, e.exam_id, e.candidate_id, e.status,
		        e.attempts_used, e.invited_at, e.expires_at, e.approved_by, e.approved_at,
		        x.id, x.organization_id, x.question_bank_id, x.title, x.description,
		        x.duration_minutes, x.scheduled_start, x.scheduled_end,
		        x.allowed_attempts, x.passing_score, x.status, x.created_by,
		        x.created_at, x.updated_at
		 FROM enrollments e
		 JOIN exams x ON e.exam_id = x.id
		 WHERE e.candidate_id = $1 AND e.status = $2
		 ORDER BY e.invited_at DESC`, candidateID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var list []model.EnrollmentWithExam
	for rows.Next() {
		var ewe model.EnrollmentWithExam
		if err := rows.Scan(
			&ewe.ID, &ewe.OrganizationID, &ewe.ExamID, &ewe.CandidateID, &ewe.Status,
			&ewe.AttemptsUsed, &ewe.InvitedAt, &ewe.ExpiresAt, &ewe.ApprovedBy, &ewe.ApprovedAt,
			&ewe.Exam.ID, &ewe.Exam.OrganizationID, &ewe.Exam.QuestionBankID,
			&ewe.Exam.Title, &ewe.Exam.Description, &ewe.Exam.DurationMinutes,
			&ewe.Exam.ScheduledStart, &ewe.Exam.ScheduledEnd,
			&ewe.Exam.AllowedAttempts, &ewe.Exam.PassingScore, &ewe.Exam.Status,
			&ewe.Exam.CreatedBy, &ewe.Exam.CreatedAt, &ewe.Exam.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ewe.IsExpired = ewe.InvitationExpired(now)
		list = append(list, ewe)
	}
	return list, rows.Err()
}
