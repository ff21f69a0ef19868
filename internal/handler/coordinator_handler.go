package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proctorguard/backend/internal/middleware"
	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/response"
	"github.com/proctorguard/backend/internal/service"
	"github.com/proctorguard/backend/internal/validator"
)

// CoordinatorHandler handles the staff-facing exam workflow: configuration,
// status transitions, invitations, and session monitoring.
type CoordinatorHandler struct {
	examService *service.ExamService
}

// NewCoordinatorHandler creates a new CoordinatorHandler.
func NewCoordinatorHandler(examService *service.ExamService) *CoordinatorHandler {
	return &CoordinatorHandler{examService: examService}
}

// CreateExam godoc
// POST /api/v1/coordinator/exams
func (h *CoordinatorHandler) CreateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.OrganizationID, claims.UserID, &req)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// ListExams godoc
// GET /api/v1/coordinator/exams
func (h *CoordinatorHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.List(c.Request.Context(), claims.OrganizationID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /api/v1/coordinator/exams/:exam_id
func (h *CoordinatorHandler) GetExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetExam(c.Request.Context(), claims.OrganizationID, examID)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/v1/coordinator/exams/:exam_id
// DRAFT exams only; configuration freezes once the exam is scheduled.
func (h *CoordinatorHandler) UpdateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), claims.OrganizationID, examID, &req)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ChangeExamStatus godoc
// POST /api/v1/coordinator/exams/:exam_id/status
func (h *CoordinatorHandler) ChangeExamStatus(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ChangeExamStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.ChangeStatus(c.Request.Context(), claims.OrganizationID, examID, req.Status)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// InviteCandidate godoc
// POST /api/v1/coordinator/exams/:exam_id/invitations
func (h *CoordinatorHandler) InviteCandidate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.InviteCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	enrollment, err := h.examService.InviteCandidate(c.Request.Context(), claims.OrganizationID, examID, &req)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// ListSessions godoc
// GET /api/v1/coordinator/exams/:exam_id/sessions
// Paginated monitoring view: the exam's attempts with candidate identity.
func (h *CoordinatorHandler) ListSessions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	sessions, pagination, err := h.examService.ListSessions(c.Request.Context(), claims.OrganizationID, examID, page, perPage)
	if err != nil {
		failExam(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"sessions": sessions}, pagination)
}

// failExam maps coordinator workflow errors onto response codes.
func failExam(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrBankNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrBankNotApproved):
		response.Fail(c, http.StatusConflict, response.ErrBankNotApproved)
	case errors.Is(err, service.ErrExamNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
	case errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrCandidateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCandidateNotFound)
	case errors.Is(err, service.ErrAlreadyInvited):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyInvited)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
