package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/repository"
	"github.com/proctorguard/backend/internal/scoring"
)

// Domain Errors
var (
	ErrUnauthorized        = errors.New("resource does not belong to the caller")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNotEnrolled         = errors.New("enrollment is not in ENROLLED status")
	ErrActiveSessionExists = errors.New("an in-progress session already exists for this enrollment")
	ErrExamNotAvailable    = errors.New("exam is not open for sessions")
	ErrOutsideWindow       = errors.New("current time is outside the exam window")
	ErrWindowClosed        = errors.New("exam window has closed")
	ErrAttemptsExhausted   = errors.New("attempt limit reached for this enrollment")
	ErrAlreadyStarted      = errors.New("session clock has already been started")
	ErrNotInProgress       = errors.New("session is not in progress")
	ErrNoActiveSession     = errors.New("no in-progress session for this enrollment")
)

// ResumeResult is the outcome of a resume call. When the session was found
// expired, AutoSubmitted is true and Scoring carries the grading outcome; the
// Session reflects its state after the transition.
type ResumeResult struct {
	Session       *model.ExamSession `json:"session"`
	AutoSubmitted bool               `json:"auto_submitted"`
	Reason        string             `json:"reason,omitempty"`
	Scoring       *scoring.Result    `json:"scoring,omitempty"`
}

// SessionService owns the attempt lifecycle: creating attempts against the
// enrollment's limit, the NOT_STARTED → IN_PROGRESS → COMPLETED transitions,
// answer saves, and grading on submission or expiry.
type SessionService struct {
	enrollmentStore EnrollmentStore
	sessionStore    SessionStore
	answerStore     AnswerStore
	questionStore   QuestionStore
	examStore       ExamStore
	tx              Transactor
	now             func() time.Time
	log             zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	enrollmentStore EnrollmentStore,
	sessionStore SessionStore,
	answerStore AnswerStore,
	questionStore QuestionStore,
	examStore ExamStore,
	tx Transactor,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		enrollmentStore: enrollmentStore,
		sessionStore:    sessionStore,
		answerStore:     answerStore,
		questionStore:   questionStore,
		examStore:       examStore,
		tx:              tx,
		now:             time.Now,
		log:             log.With().Str("component", "session_service").Logger(),
	}
}

// StartExam creates the next attempt for an enrollment. The attempt number
// and limit check run inside a transaction; a unique violation on
// (enrollment_id, attempt_number) means another request created the same
// attempt concurrently, and the transaction is retried once against fresh
// counts. Calling StartExam while a NOT_STARTED session exists returns that
// session instead of burning another attempt.
func (s *SessionService) StartExam(ctx context.Context, candidateID, enrollmentID uuid.UUID) (*model.ExamSession, error) {
	enrollment, err := s.enrollmentStore.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if enrollment.CandidateID != candidateID {
		return nil, ErrUnauthorized
	}
	if enrollment.Status != model.EnrollmentStatusEnrolled {
		return nil, ErrNotEnrolled
	}

	exam, err := s.examStore.GetByID(ctx, enrollment.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.Status.Joinable() {
		return nil, ErrExamNotAvailable
	}
	now := s.now()
	if exam.ScheduledStart != nil && exam.ScheduledEnd != nil {
		if now.Before(*exam.ScheduledStart) || now.After(*exam.ScheduledEnd) {
			return nil, ErrOutsideWindow
		}
	}

	for attempt := 0; ; attempt++ {
		var session *model.ExamSession
		err := s.tx.WithTx(ctx, func(ctx context.Context) error {
			var txErr error
			session, txErr = s.createAttempt(ctx, enrollment.ID, candidateID, exam.ID)
			return txErr
		})
		if err == nil {
			s.log.Info().
				Str("session_id", session.ID.String()).
				Str("enrollment_id", enrollmentID.String()).
				Int("attempt_number", session.AttemptNumber).
				Msg("attempt created")
			return session, nil
		}
		if repository.IsUniqueViolation(err) && attempt == 0 {
			s.log.Warn().
				Str("enrollment_id", enrollmentID.String()).
				Msg("concurrent attempt creation, retrying")
			continue
		}
		return nil, err
	}
}

// createAttempt runs inside the StartExam transaction. Reads are repeated
// here so the limit check sees counts from this transaction, not from the
// pre-check outside it.
func (s *SessionService) createAttempt(ctx context.Context, enrollmentID, candidateID, examID uuid.UUID) (*model.ExamSession, error) {
	unfinished, err := s.sessionStore.LatestUnfinished(ctx, enrollmentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check unfinished session: %w", err)
	}
	if unfinished != nil {
		if unfinished.Status == model.SessionStatusInProgress {
			return nil, ErrActiveSessionExists
		}
		// A created-but-never-started attempt is handed back as-is.
		return unfinished, nil
	}

	count, err := s.sessionStore.CountByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	exam, err := s.examStore.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if count >= exam.AllowedAttempts {
		return nil, ErrAttemptsExhausted
	}

	session := &model.ExamSession{
		ExamID:        examID,
		EnrollmentID:  enrollmentID,
		CandidateID:   candidateID,
		AttemptNumber: count + 1,
		Status:        model.SessionStatusNotStarted,
	}
	if err := s.sessionStore.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.enrollmentStore.IncrementAttempts(ctx, enrollmentID); err != nil {
		return nil, fmt.Errorf("increment attempts: %w", err)
	}
	return session, nil
}

// StartSession starts the clock on a NOT_STARTED session. The clock starts
// exactly once; a second call fails.
func (s *SessionService) StartSession(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.getOwnedSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(model.SessionStatusInProgress) {
		return nil, ErrAlreadyStarted
	}

	exam, err := s.examStore.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	now := s.now()
	if exam.ScheduledEnd != nil && !now.Before(*exam.ScheduledEnd) {
		return nil, ErrWindowClosed
	}

	ok, err := s.sessionStore.MarkStarted(ctx, session.ID, now)
	if err != nil {
		return nil, fmt.Errorf("mark started: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyStarted
	}

	session.Status = model.SessionStatusInProgress
	session.StartedAt = &now
	s.log.Info().
		Str("session_id", session.ID.String()).
		Time("started_at", now).
		Msg("session clock started")
	return session, nil
}

// ResumeSession returns the candidate's in-progress session for an
// enrollment. An expired session is completed and graded on the spot, and
// the result comes back instead of a live session.
func (s *SessionService) ResumeSession(ctx context.Context, candidateID, enrollmentID uuid.UUID) (*ResumeResult, error) {
	session, err := s.sessionStore.LatestInProgress(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("get in-progress session: %w", err)
	}
	if session.CandidateID != candidateID {
		return nil, ErrUnauthorized
	}

	exam, err := s.examStore.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	expiry := ResolveExpiry(exam.ScheduledEnd, session.StartedAt, exam.DurationMinutes)
	if !expiry.Expired(s.now()) {
		return &ResumeResult{Session: session}, nil
	}

	result, err := s.expireSession(ctx, session, exam, expiry.At)
	if err != nil {
		return nil, err
	}
	return &ResumeResult{
		Session:       session,
		AutoSubmitted: true,
		Reason:        "session expired",
		Scoring:       result,
	}, nil
}

// SaveAnswer upserts the candidate's answer for one question and moves the
// resume pointer. Only IN_PROGRESS sessions accept saves.
func (s *SessionService) SaveAnswer(ctx context.Context, candidateID, sessionID, questionID uuid.UUID, req *model.SaveAnswerRequest) (*model.Answer, error) {
	session, err := s.getOwnedSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrNotInProgress
	}

	answer := &model.Answer{
		SessionID:      session.ID,
		QuestionID:     questionID,
		SelectedOption: req.SelectedOption,
		TextResponse:   req.TextResponse,
		IsFlagged:      req.IsFlagged,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		// Re-check under a row lock: a submit or expiry that committed
		// after the pre-check above must not be overwritten with an
		// unscored answer.
		current, err := s.sessionStore.GetByIDForUpdate(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}
		if current.Status != model.SessionStatusInProgress {
			return ErrNotInProgress
		}
		if err := s.answerStore.Upsert(ctx, answer); err != nil {
			return fmt.Errorf("upsert answer: %w", err)
		}
		if err := s.sessionStore.UpdateLastViewed(ctx, session.ID, req.QuestionIndex); err != nil {
			return fmt.Errorf("update resume pointer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// SubmitExam completes an in-progress session and grades it. Completion and
// grading share one transaction, so a session is never COMPLETED without
// its score. Concurrent submits lose on the guarded status transition.
func (s *SessionService) SubmitExam(ctx context.Context, candidateID, sessionID uuid.UUID) (*scoring.Result, error) {
	session, err := s.getOwnedSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(model.SessionStatusCompleted) {
		return nil, ErrNotInProgress
	}

	exam, err := s.examStore.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return s.expireSession(ctx, session, exam, s.now())
}

// expireSession transitions IN_PROGRESS → COMPLETED at the given instant and
// grades the session, all in one transaction. If the transition is lost to a
// concurrent submit the whole call fails with ErrNotInProgress and nothing
// is graded twice.
func (s *SessionService) expireSession(ctx context.Context, session *model.ExamSession, exam *model.Exam, at time.Time) (*scoring.Result, error) {
	var result scoring.Result
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := s.sessionStore.Complete(ctx, session.ID, at)
		if err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		if !ok {
			return ErrNotInProgress
		}
		result, err = s.gradeSession(ctx, session, exam)
		return err
	})
	if err != nil {
		return nil, err
	}

	session.Status = model.SessionStatusCompleted
	session.CompletedAt = &at
	session.Score = &result.Percentage
	session.Passed = &result.Passed
	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("score", result.Percentage).
		Bool("passed", result.Passed).
		Msg("session completed and graded")
	return &result, nil
}

// gradeSession scores every approved question in the exam's bank against the
// candidate's answers and persists verdicts and the session result. Must run
// inside the completing transaction.
func (s *SessionService) gradeSession(ctx context.Context, session *model.ExamSession, exam *model.Exam) (scoring.Result, error) {
	questions, err := s.questionStore.ListApprovedByBank(ctx, exam.QuestionBankID)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("list questions: %w", err)
	}
	answers, err := s.answerStore.ListBySession(ctx, session.ID)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("list answers: %w", err)
	}
	answered := make(map[uuid.UUID]*model.Answer, len(answers))
	for i := range answers {
		answered[answers[i].QuestionID] = &answers[i]
	}

	result, verdicts := scoring.Grade(session.ID, questions, answered, exam.PassingScore)
	for _, v := range verdicts {
		if _, ok := answered[v.QuestionID]; ok {
			err = s.answerStore.SetVerdict(ctx, session.ID, v.QuestionID, v.IsCorrect, v.Points)
		} else {
			err = s.answerStore.CreateScored(ctx, session.ID, v.QuestionID, v.IsCorrect, v.Points)
		}
		if err != nil {
			return scoring.Result{}, fmt.Errorf("persist verdict: %w", err)
		}
	}
	if err := s.sessionStore.SetResult(ctx, session.ID, result.Percentage, result.Passed); err != nil {
		return scoring.Result{}, fmt.Errorf("persist result: %w", err)
	}
	return result, nil
}

// GetSessionState reports where a session stands right now: status, resume
// pointer, expiry, and whole minutes remaining. Reading the state of an
// expired IN_PROGRESS session completes and grades it first, so clients
// polling the clock also enforce it.
func (s *SessionService) GetSessionState(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.SessionState, error) {
	session, err := s.getOwnedSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}

	state := &model.SessionState{
		SessionID:               session.ID,
		Status:                  session.Status,
		AttemptNumber:           session.AttemptNumber,
		StartedAt:               session.StartedAt,
		CompletedAt:             session.CompletedAt,
		LastViewedQuestionIndex: session.LastViewedQuestionIndex,
		Score:                   session.Score,
		Passed:                  session.Passed,
	}
	if session.Status != model.SessionStatusInProgress {
		return state, nil
	}

	exam, err := s.examStore.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	expiry := ResolveExpiry(exam.ScheduledEnd, session.StartedAt, exam.DurationMinutes)
	now := s.now()
	if expiry.Expired(now) {
		if _, err := s.expireSession(ctx, session, exam, expiry.At); err != nil && !errors.Is(err, ErrNotInProgress) {
			return nil, err
		}
		state.Status = model.SessionStatusCompleted
		state.CompletedAt = session.CompletedAt
		state.Score = session.Score
		state.Passed = session.Passed
		state.AutoSubmitted = true
		return state, nil
	}

	if expiry.Valid {
		at := expiry.At
		state.ExpiresAt = &at
	}
	if minutes, ok := expiry.MinutesRemaining(now); ok {
		state.MinutesRemaining = &minutes
	}
	return state, nil
}

// GetSession retrieves a session the candidate owns, for result views.
func (s *SessionService) GetSession(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.getOwnedSession(ctx, candidateID, sessionID)
}

func (s *SessionService) getOwnedSession(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.CandidateID != candidateID {
		return nil, ErrUnauthorized
	}
	return session, nil
}
