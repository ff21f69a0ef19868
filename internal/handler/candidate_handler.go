package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proctorguard/backend/internal/middleware"
	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/response"
	"github.com/proctorguard/backend/internal/service"
	"github.com/proctorguard/backend/internal/validator"
)

// CandidateHandler handles the candidate-facing endpoints: invitations,
// enrolled exams, and the full attempt lifecycle.
type CandidateHandler struct {
	enrollmentService *service.EnrollmentService
	sessionService    *service.SessionService
	examService       *service.ExamService
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(
	enrollmentService *service.EnrollmentService,
	sessionService *service.SessionService,
	examService *service.ExamService,
) *CandidateHandler {
	return &CandidateHandler{
		enrollmentService: enrollmentService,
		sessionService:    sessionService,
		examService:       examService,
	}
}

// ListInvitations godoc
// GET /api/v1/candidate/invitations
// Returns the candidate's PENDING invitations, expired ones flagged.
func (h *CandidateHandler) ListInvitations(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	invitations, err := h.enrollmentService.ListPendingInvitations(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invitations": invitations})
}

// AcceptInvitation godoc
// POST /api/v1/candidate/invitations/:enrollment_id/accept
func (h *CandidateHandler) AcceptInvitation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	enrollment, err := h.enrollmentService.Accept(c.Request.Context(), claims.UserID, enrollmentID)
	if err != nil {
		failEnrollment(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// DeclineInvitation godoc
// POST /api/v1/candidate/invitations/:enrollment_id/decline
func (h *CandidateHandler) DeclineInvitation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	enrollment, err := h.enrollmentService.Decline(c.Request.Context(), claims.UserID, enrollmentID)
	if err != nil {
		failEnrollment(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// ListEnrollments godoc
// GET /api/v1/candidate/enrollments
// Returns the exams the candidate is enrolled in.
func (h *CandidateHandler) ListEnrollments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	enrollments, err := h.enrollmentService.ListEnrolledExams(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// StartExam godoc
// POST /api/v1/candidate/enrollments/:enrollment_id/start
// Creates the next attempt. Does not start the clock.
func (h *CandidateHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.StartExam(c.Request.Context(), claims.UserID, enrollmentID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// ResumeSession godoc
// GET /api/v1/candidate/enrollments/:enrollment_id/resume
// Returns the live session for an enrollment, or the result of an expired
// one that was auto-submitted on the spot.
func (h *CandidateHandler) ResumeSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessionService.ResumeSession(c.Request.Context(), claims.UserID, enrollmentID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// StartSession godoc
// POST /api/v1/candidate/sessions/:session_id/start
// Starts the clock on a NOT_STARTED session, exactly once.
func (h *CandidateHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetSessionState godoc
// GET /api/v1/candidate/sessions/:session_id/state
// Covers page reloads: resume pointer, remaining minutes, expiry.
func (h *CandidateHandler) GetSessionState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.GetSessionState(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GetPaper godoc
// GET /api/v1/candidate/sessions/:session_id/paper
// Serves the question set, correct answers stripped, Redis-cached per exam.
func (h *CandidateHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.examService.GetPaperForSession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// SaveAnswer godoc
// PUT /api/v1/candidate/sessions/:session_id/answers/:question_id
// Last write wins; the payload replaces the stored answer wholesale.
func (h *CandidateHandler) SaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.sessionService.SaveAnswer(c.Request.Context(), claims.UserID, sessionID, questionID, &req)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// SubmitExam godoc
// POST /api/v1/candidate/sessions/:session_id/submit
// Completes and grades the session in one transaction.
func (h *CandidateHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessionService.SubmitExam(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetSession godoc
// GET /api/v1/candidate/sessions/:session_id
// Returns a session the candidate owns, including score once completed.
func (h *CandidateHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// failEnrollment maps enrollment workflow errors onto response codes.
func failEnrollment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrUnauthorized):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrEnrollmentNotPending):
		response.Fail(c, http.StatusConflict, response.ErrEnrollmentPending)
	case errors.Is(err, service.ErrInvitationExpired):
		response.Fail(c, http.StatusGone, response.ErrInvitationExpired)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failSession maps attempt lifecycle errors onto response codes.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrUnauthorized):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrExamNotAvailable):
		response.Fail(c, http.StatusConflict, response.ErrExamNotAvailable)
	case errors.Is(err, service.ErrOutsideWindow):
		response.Fail(c, http.StatusConflict, response.ErrOutsideWindow)
	case errors.Is(err, service.ErrWindowClosed):
		response.Fail(c, http.StatusConflict, response.ErrWindowClosed)
	case errors.Is(err, service.ErrActiveSessionExists):
		response.Fail(c, http.StatusConflict, response.ErrActiveSessionExists)
	case errors.Is(err, service.ErrAttemptsExhausted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptsExhausted)
	case errors.Is(err, service.ErrAlreadyStarted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyStarted)
	case errors.Is(err, service.ErrNotInProgress):
		response.Fail(c, http.StatusConflict, response.ErrNotInProgress)
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	case errors.Is(err, service.ErrPaperWithoutClock):
		response.Fail(c, http.StatusConflict, response.ErrPaperWithoutClock)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
