package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/proctorguard/backend/internal/model"
)

type sessionServiceFixture struct {
	enrollments *mockEnrollmentStore
	sessions    *mockSessionStore
	answers     *mockAnswerStore
	questions   *mockQuestionStore
	exams       *mockExamStore
	svc         *SessionService
}

func newSessionServiceFixture(now time.Time) *sessionServiceFixture {
	f := &sessionServiceFixture{
		enrollments: new(mockEnrollmentStore),
		sessions:    new(mockSessionStore),
		answers:     new(mockAnswerStore),
		questions:   new(mockQuestionStore),
		exams:       new(mockExamStore),
	}
	f.svc = NewSessionService(
		f.enrollments, f.sessions, f.answers, f.questions, f.exams,
		&mockTransactor{}, zerolog.Nop(),
	)
	f.svc.now = func() time.Time { return now }
	return f
}

func activeExam(allowedAttempts int) *model.Exam {
	return &model.Exam{
		ID:              uuid.New(),
		OrganizationID:  uuid.New(),
		QuestionBankID:  uuid.New(),
		Title:           "Network Fundamentals",
		DurationMinutes: 60,
		AllowedAttempts: allowedAttempts,
		PassingScore:    50,
		Status:          model.ExamStatusActive,
	}
}

func enrolledEnrollment(exam *model.Exam, candidateID uuid.UUID) *model.Enrollment {
	return &model.Enrollment{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		CandidateID: candidateID,
		Status:      model.EnrollmentStatusEnrolled,
	}
}

func TestStartExamCreatesNextAttempt(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	enrollment := enrolledEnrollment(exam, candidateID)

	f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("LatestUnfinished", mock.Anything, enrollment.ID).Return(nil, pgx.ErrNoRows)
	f.sessions.On("CountByEnrollment", mock.Anything, enrollment.ID).Return(1, nil)
	f.sessions.On("Create", mock.Anything, mock.MatchedBy(func(s *model.ExamSession) bool {
		return s.AttemptNumber == 2 && s.Status == model.SessionStatusNotStarted
	})).Return(nil)
	f.enrollments.On("IncrementAttempts", mock.Anything, enrollment.ID).Return(nil)

	session, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, session.AttemptNumber)
	assert.Equal(t, model.SessionStatusNotStarted, session.Status)
	assert.Nil(t, session.StartedAt)
	f.sessions.AssertExpectations(t)
	f.enrollments.AssertExpectations(t)
}

func TestStartExamAttemptsExhausted(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(2)
	enrollment := enrolledEnrollment(exam, candidateID)

	f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("LatestUnfinished", mock.Anything, enrollment.ID).Return(nil, pgx.ErrNoRows)
	f.sessions.On("CountByEnrollment", mock.Anything, enrollment.ID).Return(2, nil)

	_, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)

	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStartExamRejectsWhileInProgress(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	enrollment := enrolledEnrollment(exam, candidateID)

	f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("LatestUnfinished", mock.Anything, enrollment.ID).Return(&model.ExamSession{
		ID:     uuid.New(),
		Status: model.SessionStatusInProgress,
	}, nil)

	_, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)

	assert.ErrorIs(t, err, ErrActiveSessionExists)
}

func TestStartExamReturnsExistingUnstartedSession(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	enrollment := enrolledEnrollment(exam, candidateID)
	existing := &model.ExamSession{
		ID:            uuid.New(),
		EnrollmentID:  enrollment.ID,
		CandidateID:   candidateID,
		AttemptNumber: 1,
		Status:        model.SessionStatusNotStarted,
	}

	f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("LatestUnfinished", mock.Anything, enrollment.ID).Return(existing, nil)

	session, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, session.ID)
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.enrollments.AssertNotCalled(t, "IncrementAttempts", mock.Anything, mock.Anything)
}

func TestStartExamRetriesOnConcurrentCreate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	enrollment := enrolledEnrollment(exam, candidateID)

	f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("LatestUnfinished", mock.Anything, enrollment.ID).Return(nil, pgx.ErrNoRows)
	// A concurrent request wins attempt 1; the retry sees the fresh count.
	f.sessions.On("CountByEnrollment", mock.Anything, enrollment.ID).Return(0, nil).Once()
	f.sessions.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23505"}).Once()
	f.sessions.On("CountByEnrollment", mock.Anything, enrollment.ID).Return(1, nil).Once()
	f.sessions.On("Create", mock.Anything, mock.MatchedBy(func(s *model.ExamSession) bool {
		return s.AttemptNumber == 2
	})).Return(nil).Once()
	f.enrollments.On("IncrementAttempts", mock.Anything, enrollment.ID).Return(nil)

	session, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, session.AttemptNumber)
	f.sessions.AssertExpectations(t)
}

func TestStartExamGates(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	candidateID := uuid.New()

	t.Run("someone else's enrollment", func(t *testing.T) {
		f := newSessionServiceFixture(now)
		exam := activeExam(3)
		enrollment := enrolledEnrollment(exam, uuid.New())
		f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)

		_, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("invitation not accepted", func(t *testing.T) {
		f := newSessionServiceFixture(now)
		exam := activeExam(3)
		enrollment := enrolledEnrollment(exam, candidateID)
		enrollment.Status = model.EnrollmentStatusPending
		f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)

		_, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)
		assert.ErrorIs(t, err, ErrNotEnrolled)
	})

	t.Run("exam still in draft", func(t *testing.T) {
		f := newSessionServiceFixture(now)
		exam := activeExam(3)
		exam.Status = model.ExamStatusDraft
		enrollment := enrolledEnrollment(exam, candidateID)
		f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
		f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)

		_, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)
		assert.ErrorIs(t, err, ErrExamNotAvailable)
	})

	t.Run("before the exam window", func(t *testing.T) {
		f := newSessionServiceFixture(now)
		exam := activeExam(3)
		start := now.Add(time.Hour)
		end := now.Add(5 * time.Hour)
		exam.ScheduledStart = &start
		exam.ScheduledEnd = &end
		enrollment := enrolledEnrollment(exam, candidateID)
		f.enrollments.On("GetByID", mock.Anything, enrollment.ID).Return(enrollment, nil)
		f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)

		_, err := f.svc.StartExam(context.Background(), candidateID, enrollment.ID)
		assert.ErrorIs(t, err, ErrOutsideWindow)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		f := newSessionServiceFixture(now)
		enrollmentID := uuid.New()
		f.enrollments.On("GetByID", mock.Anything, enrollmentID).Return(nil, pgx.ErrNoRows)

		_, err := f.svc.StartExam(context.Background(), candidateID, enrollmentID)
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestStartSessionStartsClockOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		CandidateID: candidateID,
		Status:      model.SessionStatusNotStarted,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("MarkStarted", mock.Anything, session.ID, now).Return(true, nil)

	started, err := f.svc.StartSession(context.Background(), candidateID, session.ID)

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, now, *started.StartedAt)
}

func TestStartSessionRejectsSecondStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	startedAt := now.Add(-10 * time.Minute)
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      uuid.New(),
		CandidateID: candidateID,
		Status:      model.SessionStatusInProgress,
		StartedAt:   &startedAt,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

	_, err := f.svc.StartSession(context.Background(), candidateID, session.ID)

	assert.ErrorIs(t, err, ErrAlreadyStarted)
	f.sessions.AssertNotCalled(t, "MarkStarted", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSessionAfterWindowClosed(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	end := now.Add(-time.Hour)
	exam.ScheduledEnd = &end
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		CandidateID: candidateID,
		Status:      model.SessionStatusNotStarted,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)

	_, err := f.svc.StartSession(context.Background(), candidateID, session.ID)

	assert.ErrorIs(t, err, ErrWindowClosed)
}

func TestResumeSessionStillLive(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	startedAt := now.Add(-30 * time.Minute)
	session := &model.ExamSession{
		ID:           uuid.New(),
		ExamID:       exam.ID,
		EnrollmentID: uuid.New(),
		CandidateID:  candidateID,
		Status:       model.SessionStatusInProgress,
		StartedAt:    &startedAt,
	}

	f.sessions.On("LatestInProgress", mock.Anything, session.EnrollmentID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)

	result, err := f.svc.ResumeSession(context.Background(), candidateID, session.EnrollmentID)

	require.NoError(t, err)
	assert.False(t, result.AutoSubmitted)
	assert.Equal(t, session.ID, result.Session.ID)
}

func TestResumeSessionExpiredAutoSubmits(t *testing.T) {
	// Duration 60min, started 13:30, window end 17:00, resumed at 15:00.
	// The effective expiry is 14:30 and the session must complete there,
	// not at the resume instant.
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	windowEnd := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	exam.ScheduledEnd = &windowEnd
	startedAt := time.Date(2026, 3, 10, 13, 30, 0, 0, time.UTC)
	expiry := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	session := &model.ExamSession{
		ID:           uuid.New(),
		ExamID:       exam.ID,
		EnrollmentID: uuid.New(),
		CandidateID:  candidateID,
		Status:       model.SessionStatusInProgress,
		StartedAt:    &startedAt,
	}
	questionID := uuid.New()
	correct, _ := json.Marshal("B")
	selected := "B"

	f.sessions.On("LatestInProgress", mock.Anything, session.EnrollmentID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("Complete", mock.Anything, session.ID, expiry).Return(true, nil)
	f.questions.On("ListApprovedByBank", mock.Anything, exam.QuestionBankID).Return([]model.Question{
		{ID: questionID, Type: model.QuestionTypeMultipleChoice, CorrectAnswer: correct, Points: 10, Status: model.QuestionStatusApproved},
	}, nil)
	f.answers.On("ListBySession", mock.Anything, session.ID).Return([]model.Answer{
		{SessionID: session.ID, QuestionID: questionID, SelectedOption: &selected},
	}, nil)
	f.answers.On("SetVerdict", mock.Anything, session.ID, questionID, true, 10).Return(nil)
	f.sessions.On("SetResult", mock.Anything, session.ID, 100, true).Return(nil)

	result, err := f.svc.ResumeSession(context.Background(), candidateID, session.EnrollmentID)

	require.NoError(t, err)
	assert.True(t, result.AutoSubmitted)
	require.NotNil(t, result.Scoring)
	assert.Equal(t, 100, result.Scoring.Percentage)
	assert.True(t, result.Scoring.Passed)
	require.NotNil(t, result.Session.CompletedAt)
	assert.Equal(t, expiry, *result.Session.CompletedAt)
	f.sessions.AssertExpectations(t)
}

func TestResumeSessionNoneActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	enrollmentID := uuid.New()

	f.sessions.On("LatestInProgress", mock.Anything, enrollmentID).Return(nil, pgx.ErrNoRows)

	_, err := f.svc.ResumeSession(context.Background(), uuid.New(), enrollmentID)

	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestSaveAnswerUpsertsAndMovesPointer(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	startedAt := now.Add(-5 * time.Minute)
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      uuid.New(),
		CandidateID: candidateID,
		Status:      model.SessionStatusInProgress,
		StartedAt:   &startedAt,
	}
	questionID := uuid.New()
	selected := "C"

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.sessions.On("GetByIDForUpdate", mock.Anything, session.ID).Return(session, nil)
	f.answers.On("Upsert", mock.Anything, mock.MatchedBy(func(a *model.Answer) bool {
		return a.SessionID == session.ID && a.QuestionID == questionID &&
			a.SelectedOption != nil && *a.SelectedOption == "C" && a.IsFlagged
	})).Return(nil)
	f.sessions.On("UpdateLastViewed", mock.Anything, session.ID, 4).Return(nil)

	answer, err := f.svc.SaveAnswer(context.Background(), candidateID, session.ID, questionID, &model.SaveAnswerRequest{
		SelectedOption: &selected,
		IsFlagged:      true,
		QuestionIndex:  4,
	})

	require.NoError(t, err)
	assert.Equal(t, questionID, answer.QuestionID)
	f.answers.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestSaveAnswerRejectsCompletedSession(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	session := &model.ExamSession{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Status:      model.SessionStatusCompleted,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

	_, err := f.svc.SaveAnswer(context.Background(), candidateID, session.ID, uuid.New(), &model.SaveAnswerRequest{})

	assert.ErrorIs(t, err, ErrNotInProgress)
	f.answers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

// A submit that commits between the ownership check and the save transaction
// must win: the locked re-read inside the transaction sees the completed
// session and the answer is never written.
func TestSaveAnswerLosesToConcurrentSubmit(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	startedAt := now.Add(-5 * time.Minute)
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      uuid.New(),
		CandidateID: candidateID,
		Status:      model.SessionStatusInProgress,
		StartedAt:   &startedAt,
	}
	completed := &model.ExamSession{
		ID:          session.ID,
		ExamID:      session.ExamID,
		CandidateID: candidateID,
		Status:      model.SessionStatusCompleted,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.sessions.On("GetByIDForUpdate", mock.Anything, session.ID).Return(completed, nil)

	_, err := f.svc.SaveAnswer(context.Background(), candidateID, session.ID, uuid.New(), &model.SaveAnswerRequest{})

	assert.ErrorIs(t, err, ErrNotInProgress)
	f.answers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	f.sessions.AssertNotCalled(t, "UpdateLastViewed", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitExamGradesInOneGo(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	startedAt := now.Add(-20 * time.Minute)
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		CandidateID: candidateID,
		Status:      model.SessionStatusInProgress,
		StartedAt:   &startedAt,
	}

	mcqID, tfID, essayID, skippedID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	mcqCorrect, _ := json.Marshal("B")
	tfCorrect, _ := json.Marshal(true)
	mcqSelected := "b"
	tfSelected := "false"
	essayText := "long form response"

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("Complete", mock.Anything, session.ID, now).Return(true, nil)
	f.questions.On("ListApprovedByBank", mock.Anything, exam.QuestionBankID).Return([]model.Question{
		{ID: mcqID, Type: model.QuestionTypeMultipleChoice, CorrectAnswer: mcqCorrect, Points: 6},
		{ID: tfID, Type: model.QuestionTypeTrueFalse, CorrectAnswer: tfCorrect, Points: 4},
		{ID: essayID, Type: model.QuestionTypeEssay, Points: 10},
		{ID: skippedID, Type: model.QuestionTypeMultipleChoice, CorrectAnswer: mcqCorrect, Points: 10},
	}, nil)
	f.answers.On("ListBySession", mock.Anything, session.ID).Return([]model.Answer{
		{SessionID: session.ID, QuestionID: mcqID, SelectedOption: &mcqSelected},
		{SessionID: session.ID, QuestionID: tfID, SelectedOption: &tfSelected},
		{SessionID: session.ID, QuestionID: essayID, TextResponse: &essayText},
	}, nil)
	f.answers.On("SetVerdict", mock.Anything, session.ID, mcqID, true, 6).Return(nil)
	f.answers.On("SetVerdict", mock.Anything, session.ID, tfID, false, 0).Return(nil)
	f.answers.On("CreateScored", mock.Anything, session.ID, skippedID, false, 0).Return(nil)
	// 6 of 20 scoreable points; the essay is excluded entirely.
	f.sessions.On("SetResult", mock.Anything, session.ID, 30, false).Return(nil)

	result, err := f.svc.SubmitExam(context.Background(), candidateID, session.ID)

	require.NoError(t, err)
	assert.Equal(t, 6, result.TotalScore)
	assert.Equal(t, 20, result.MaxPossibleScore)
	assert.Equal(t, 30, result.Percentage)
	assert.False(t, result.Passed)
	f.answers.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestSubmitExamLosesToConcurrentSubmit(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	startedAt := now.Add(-20 * time.Minute)
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		CandidateID: candidateID,
		Status:      model.SessionStatusInProgress,
		StartedAt:   &startedAt,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("Complete", mock.Anything, session.ID, now).Return(false, nil)

	_, err := f.svc.SubmitExam(context.Background(), candidateID, session.ID)

	assert.ErrorIs(t, err, ErrNotInProgress)
	f.answers.AssertNotCalled(t, "SetVerdict", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSessionStateReportsClock(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	startedAt := now.Add(-25*time.Minute - 30*time.Second)
	session := &model.ExamSession{
		ID:                      uuid.New(),
		ExamID:                  exam.ID,
		CandidateID:             candidateID,
		AttemptNumber:           1,
		Status:                  model.SessionStatusInProgress,
		StartedAt:               &startedAt,
		LastViewedQuestionIndex: 7,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)

	state, err := f.svc.GetSessionState(context.Background(), candidateID, session.ID)

	require.NoError(t, err)
	assert.Equal(t, 7, state.LastViewedQuestionIndex)
	require.NotNil(t, state.MinutesRemaining)
	// 34m30s left reads as 34 whole minutes.
	assert.Equal(t, 34, *state.MinutesRemaining)
	require.NotNil(t, state.ExpiresAt)
	assert.Equal(t, startedAt.Add(60*time.Minute), *state.ExpiresAt)
}

func TestGetSessionStateEnforcesExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	f := newSessionServiceFixture(now)
	candidateID := uuid.New()
	exam := activeExam(3)
	startedAt := now.Add(-2 * time.Hour)
	session := &model.ExamSession{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		CandidateID: candidateID,
		Status:      model.SessionStatusInProgress,
		StartedAt:   &startedAt,
	}

	f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	f.exams.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	f.sessions.On("Complete", mock.Anything, session.ID, startedAt.Add(60*time.Minute)).Return(true, nil)
	f.questions.On("ListApprovedByBank", mock.Anything, exam.QuestionBankID).Return([]model.Question{}, nil)
	f.answers.On("ListBySession", mock.Anything, session.ID).Return([]model.Answer{}, nil)
	f.sessions.On("SetResult", mock.Anything, session.ID, 0, false).Return(nil)

	state, err := f.svc.GetSessionState(context.Background(), candidateID, session.ID)

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, state.Status)
	assert.True(t, state.AutoSubmitted)
	assert.Nil(t, state.MinutesRemaining)
}
