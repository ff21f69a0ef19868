package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/proctorguard/backend/internal/config"
	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/repository"
	"github.com/proctorguard/backend/internal/response"
)

// Domain Errors
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamNotDraft      = errors.New("exam status is not DRAFT")
	ErrInvalidTransition = errors.New("exam status transition not allowed")
	ErrBankNotFound      = errors.New("question bank not found")
	ErrBankNotApproved   = errors.New("question bank is not APPROVED")
	ErrCandidateNotFound = errors.New("candidate not found in this organization")
	ErrAlreadyInvited    = errors.New("candidate already has an enrollment for this exam")
	ErrPaperWithoutClock = errors.New("paper requested before the session clock started")
)

const paperCacheTTL = 10 * time.Minute

// ExamService handles the coordinator workflow (exam configuration, status
// transitions, invitations, monitoring) and serves the candidate-facing exam
// paper through a Redis cache.
type ExamService struct {
	examStore       ExamStore
	questionStore   QuestionStore
	enrollmentStore EnrollmentStore
	sessionStore    SessionStore
	userStore       UserStore
	rdb             *redis.Client
	now             func() time.Time
	log             zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examStore ExamStore,
	questionStore QuestionStore,
	enrollmentStore EnrollmentStore,
	sessionStore SessionStore,
	userStore UserStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examStore:       examStore,
		questionStore:   questionStore,
		enrollmentStore: enrollmentStore,
		sessionStore:    sessionStore,
		userStore:       userStore,
		rdb:             rdb,
		now:             time.Now,
		log:             log.With().Str("component", "exam_service").Logger(),
	}
}

// Create creates a DRAFT exam against an APPROVED question bank in the
// coordinator's organization.
func (s *ExamService) Create(ctx context.Context, orgID, creatorID uuid.UUID, req *model.CreateExamRequest) (*model.Exam, error) {
	bank, err := s.questionStore.GetBank(ctx, req.QuestionBankID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankNotFound
		}
		return nil, fmt.Errorf("get question bank: %w", err)
	}
	if bank.OrganizationID != orgID {
		return nil, ErrBankNotFound
	}
	if bank.Status != model.QuestionBankStatusApproved {
		return nil, ErrBankNotApproved
	}

	exam := &model.Exam{
		OrganizationID:  orgID,
		QuestionBankID:  bank.ID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		ScheduledStart:  req.ScheduledStart,
		ScheduledEnd:    req.ScheduledEnd,
		AllowedAttempts: req.AllowedAttempts,
		PassingScore:    req.PassingScore,
		Status:          model.ExamStatusDraft,
		CreatedBy:       creatorID,
	}
	if err := s.examStore.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("title", exam.Title).
		Msg("exam created")
	return exam, nil
}

// GetExam retrieves an exam within the caller's organization.
func (s *ExamService) GetExam(ctx context.Context, orgID, examID uuid.UUID) (*model.Exam, error) {
	return s.getOwnedExam(ctx, orgID, examID)
}

// List retrieves all exams for an organization.
func (s *ExamService) List(ctx context.Context, orgID uuid.UUID) ([]model.Exam, error) {
	exams, err := s.examStore.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Update edits a DRAFT exam's configuration. Once an exam leaves DRAFT its
// configuration is frozen; only the status may still change.
func (s *ExamService) Update(ctx context.Context, orgID, examID uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.getOwnedExam(ctx, orgID, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.DurationMinutes != 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.ScheduledStart != nil {
		exam.ScheduledStart = req.ScheduledStart
	}
	if req.ScheduledEnd != nil {
		exam.ScheduledEnd = req.ScheduledEnd
	}
	if req.AllowedAttempts != 0 {
		exam.AllowedAttempts = req.AllowedAttempts
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}

	ok, err := s.examStore.Update(ctx, exam)
	if err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	if !ok {
		return nil, ErrExamNotDraft
	}
	return exam, nil
}

// ChangeStatus applies a coordinator status transition. The update is
// guarded by the expected current status, so two coordinators racing the
// same transition cannot both win. Activation prewarms the paper cache.
func (s *ExamService) ChangeStatus(ctx context.Context, orgID, examID uuid.UUID, target model.ExamStatus) (*model.Exam, error) {
	exam, err := s.getOwnedExam(ctx, orgID, examID)
	if err != nil {
		return nil, err
	}
	if !exam.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.examStore.UpdateStatus(ctx, exam.ID, exam.Status, target)
	if err != nil {
		return nil, fmt.Errorf("update exam status: %w", err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("from", string(exam.Status)).
		Str("to", string(target)).
		Msg("exam status changed")
	exam.Status = target

	if target == model.ExamStatusActive {
		if _, err := s.buildAndCachePaper(ctx, exam); err != nil {
			// Cache warming is best effort; candidates fall back to a
			// cache miss on first paper fetch.
			s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("paper prewarm failed")
		}
	}
	return exam, nil
}

// InviteCandidate creates a PENDING enrollment for a candidate identified by
// email. The unique constraint on (exam_id, candidate_id) rejects repeat
// invitations regardless of their status.
func (s *ExamService) InviteCandidate(ctx context.Context, orgID, examID uuid.UUID, req *model.InviteCandidateRequest) (*model.Enrollment, error) {
	exam, err := s.getOwnedExam(ctx, orgID, examID)
	if err != nil {
		return nil, err
	}

	candidate, err := s.userStore.GetByEmail(ctx, req.CandidateEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	if candidate.Role != model.RoleCandidate || candidate.OrganizationID != orgID {
		return nil, ErrCandidateNotFound
	}

	enrollment := &model.Enrollment{
		OrganizationID: orgID,
		ExamID:         exam.ID,
		CandidateID:    candidate.ID,
		Status:         model.EnrollmentStatusPending,
		ExpiresAt:      req.ExpiresAt,
	}
	if err := s.enrollmentStore.Create(ctx, enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyInvited
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	s.log.Info().
		Str("enrollment_id", enrollment.ID.String()).
		Str("exam_id", exam.ID.String()).
		Str("candidate_id", candidate.ID.String()).
		Msg("candidate invited")
	return enrollment, nil
}

// ListSessions retrieves one page of an exam's sessions for the monitoring
// view. Page is 1-based.
func (s *ExamService) ListSessions(ctx context.Context, orgID, examID uuid.UUID, page, perPage int) ([]repository.SessionResult, *response.Pagination, error) {
	exam, err := s.getOwnedExam(ctx, orgID, examID)
	if err != nil {
		return nil, nil, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	total, err := s.sessionStore.CountByExam(ctx, exam.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("count sessions: %w", err)
	}
	results, err := s.sessionStore.ListByExam(ctx, exam.ID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list sessions: %w", err)
	}
	if results == nil {
		results = []repository.SessionResult{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return results, pagination, nil
}

// GetPaperForSession serves the exam paper to a candidate holding a running
// session. Papers only exist for IN_PROGRESS sessions; the paper is cached
// in Redis per exam with the correct answers already stripped.
func (s *ExamService) GetPaperForSession(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.ExamPaper, error) {
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
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrPaperWithoutClock
	}

	key := config.CacheKey.ExamPaperKey(session.ExamID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		paper := &model.ExamPaper{}
		if err := json.Unmarshal(data, paper); err == nil {
			return paper, nil
		}
		s.log.Warn().Str("exam_id", session.ExamID.String()).Msg("corrupt paper cache entry, rebuilding")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("paper cache read failed, rebuilding")
	}

	exam, err := s.examStore.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return s.buildAndCachePaper(ctx, exam)
}

func (s *ExamService) buildAndCachePaper(ctx context.Context, exam *model.Exam) (*model.ExamPaper, error) {
	questions, err := s.questionStore.ListApprovedByBank(ctx, exam.QuestionBankID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	paper := &model.ExamPaper{
		ExamID:          exam.ID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		Questions:       make([]model.QuestionForCandidate, 0, len(questions)),
	}
	for i := range questions {
		paper.Questions = append(paper.Questions, questions[i].ForCandidate())
	}

	data, err := json.Marshal(paper)
	if err != nil {
		return nil, fmt.Errorf("marshal paper: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ExamPaperKey(exam.ID.String()), data, paperCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("paper cache write failed")
	}
	return paper, nil
}

func (s *ExamService) getOwnedExam(ctx context.Context, orgID, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.examStore.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.OrganizationID != orgID {
		return nil, ErrExamNotFound
	}
	return exam, nil
}
