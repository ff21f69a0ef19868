package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorguard/backend/internal/model"
)

const sessionColumns = `id, exam_id, enrollment_id, candidate_id, attempt_number,
	status, started_at, completed_at, last_viewed_question_index, score, passed,
	created_at, updated_at`

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

func scanSession(row interface{ Scan(dest ...any) error }) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(
		&s.ID, &s.ExamID, &s.EnrollmentID, &s.CandidateID, &s.AttemptNumber,
		&s.Status, &s.StartedAt, &s.CompletedAt, &s.LastViewedQuestionIndex,
		&s.Score, &s.Passed, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by its id.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a session by its id with a row lock, blocking
// behind any in-flight completion of the same session. Must run inside a
// transaction.
func (r *ExamSessionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1 FOR UPDATE`, id))
}

// LatestInProgress retrieves the most recently created IN_PROGRESS session
// for an enrollment, or pgx.ErrNoRows if there is none.
func (r *ExamSessionRepository) LatestInProgress(ctx context.Context, enrollmentID uuid.UUID) (*model.ExamSession, error) {
	return scanSession(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE enrollment_id = $1 AND status = $2
		 ORDER BY created_at DESC
		 LIMIT 1`, enrollmentID, model.SessionStatusInProgress))
}

// LatestUnfinished retrieves the most recently created session that has not
// reached COMPLETED, or pgx.ErrNoRows if every session is finished.
func (r *ExamSessionRepository) LatestUnfinished(ctx context.Context, enrollmentID uuid.UUID) (*model.ExamSession, error) {
	return scanSession(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE enrollment_id = $1 AND status <> $2
		 ORDER BY created_at DESC
		 LIMIT 1`, enrollmentID, model.SessionStatusCompleted))
}

// CountByEnrollment counts all sessions ever created for an enrollment.
func (r *ExamSessionRepository) CountByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (int, error) {
	var count int
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE enrollment_id = $1`, enrollmentID).Scan(&count)
	return count, err
}

// Create inserts a new session. The unique index on
// (enrollment_id, attempt_number) turns a concurrent double-create into a
// unique violation the caller can retry on.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, enrollment_id, candidate_id, attempt_number, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, last_viewed_question_index, created_at, updated_at`,
		s.ExamID, s.EnrollmentID, s.CandidateID, s.AttemptNumber, s.Status,
	).Scan(&s.ID, &s.LastViewedQuestionIndex, &s.CreatedAt, &s.UpdatedAt)
}

// MarkStarted transitions NOT_STARTED → IN_PROGRESS, setting the clock
// exactly once. Returns false if the session was not in NOT_STARTED.
func (r *ExamSessionRepository) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, started_at = $2, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusInProgress, at, id, model.SessionStatusNotStarted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Complete transitions IN_PROGRESS → COMPLETED. Returns false if the
// session was not IN_PROGRESS, which makes concurrent submits lose cleanly.
func (r *ExamSessionRepository) Complete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, completed_at = $2, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusCompleted, at, id, model.SessionStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetResult persists the scoring outcome on a completed session.
func (r *ExamSessionRepository) SetResult(ctx context.Context, id uuid.UUID, score int, passed bool) error {
	_, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE exam_sessions SET score = $1, passed = $2, updated_at = NOW() WHERE id = $3`,
		score, passed, id)
	return err
}

// UpdateLastViewed moves the resume pointer for a session.
func (r *ExamSessionRepository) UpdateLastViewed(ctx context.Context, id uuid.UUID, index int) error {
	_, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE exam_sessions SET last_viewed_question_index = $1, updated_at = NOW() WHERE id = $2`,
		index, id)
	return err
}

// SessionResult is a proctor-facing row combining session and candidate.
type SessionResult struct {
	SessionID     uuid.UUID           `json:"session_id"`
	CandidateID   uuid.UUID           `json:"candidate_id"`
	CandidateName string              `json:"candidate_name"`
	Email         string              `json:"email"`
	AttemptNumber int                 `json:"attempt_number"`
	Status        model.SessionStatus `json:"status"`
	StartedAt     *time.Time          `json:"started_at"`
	CompletedAt   *time.Time          `json:"completed_at"`
	Score         *int                `json:"score"`
	Passed        *bool               `json:"passed"`
}

// CountByExam counts all sessions ever created against an exam.
func (r *ExamSessionRepository) CountByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	var count int
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE exam_id = $1`, examID).Scan(&count)
	return count, err
}

// ListByExam retrieves one page of an exam's sessions for the monitoring view.
func (r *ExamSessionRepository) ListByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]SessionResult, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT s.id, s.candidate_id, u.name, u.email, s.attempt_number,
		        s.status, s.started_at, s.completed_at, s.score, s.passed
		 FROM exam_sessions s
		 JOIN users u ON s.candidate_id = u.id
		 WHERE s.exam_id = $1
		 ORDER BY u.name ASC, s.attempt_number ASC
		 LIMIT $2 OFFSET $3`, examID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var sr SessionResult
		if err := rows.Scan(
			&sr.SessionID, &sr.CandidateID, &sr.CandidateName, &sr.Email,
			&sr.AttemptNumber, &sr.Status, &sr.StartedAt, &sr.CompletedAt,
			&sr.Score, &sr.Passed,
		); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}
