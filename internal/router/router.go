package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/proctorguard/backend/internal/config"
	"github.com/proctorguard/backend/internal/handler"
	"github.com/proctorguard/backend/internal/middleware"
	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/response"
	"github.com/proctorguard/backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Candidate   *handler.CandidateHandler
	Coordinator *handler.CoordinatorHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response carries a request ID in its metadata.
	router.Use(response.RequestIDMiddleware())

	// Compress API responses.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/logout", middleware.RequireCandidateJWT(authService), handlers.Auth.Logout)
	}

	// ─── 2. Candidate Group (JWT + Single Device) ──────────────────────
	candidateAPI := router.Group("/api/v1/candidate")
	candidateAPI.Use(
		middleware.RequireCandidateJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		candidateAPI.GET("/invitations",
			middleware.RequirePermission(model.PermissionViewPendingInvitations),
			handlers.Candidate.ListInvitations)
		candidateAPI.POST("/invitations/:enrollment_id/accept",
			middleware.RequirePermission(model.PermissionAcceptEnrollment),
			handlers.Candidate.AcceptInvitation)
		candidateAPI.POST("/invitations/:enrollment_id/decline",
			middleware.RequirePermission(model.PermissionDeclineEnrollment),
			handlers.Candidate.DeclineInvitation)

		candidateAPI.GET("/enrollments", handlers.Candidate.ListEnrollments)

		takeExam := middleware.RequirePermission(model.PermissionTakeExam)
		candidateAPI.POST("/enrollments/:enrollment_id/start", takeExam, handlers.Candidate.StartExam)
		candidateAPI.GET("/enrollments/:enrollment_id/resume", takeExam, handlers.Candidate.ResumeSession)
		candidateAPI.POST("/sessions/:session_id/start", takeExam, handlers.Candidate.StartSession)
		candidateAPI.GET("/sessions/:session_id/state", takeExam, handlers.Candidate.GetSessionState)
		candidateAPI.GET("/sessions/:session_id/paper", takeExam, handlers.Candidate.GetPaper)
		candidateAPI.PUT("/sessions/:session_id/answers/:question_id", takeExam, handlers.Candidate.SaveAnswer)
		candidateAPI.POST("/sessions/:session_id/submit", takeExam, handlers.Candidate.SubmitExam)

		candidateAPI.GET("/sessions/:session_id",
			middleware.RequirePermission(model.PermissionViewOwnResults),
			handlers.Candidate.GetSession)
	}

	// ─── 3. Coordinator Group (Staff JWT + Permissions) ────────────────
	coordinatorAPI := router.Group("/api/v1/coordinator")
	coordinatorAPI.Use(middleware.RequireStaffJWT(authService))
	{
		coordinatorAPI.POST("/exams",
			middleware.RequirePermission(model.PermissionCreateExam),
			handlers.Coordinator.CreateExam)
		// Reading an exam is open to anyone who can configure it or
		// monitor its sessions.
		viewExam := middleware.RequireAnyPermission(
			model.PermissionViewExamConfig, model.PermissionViewAllSessions)
		coordinatorAPI.GET("/exams", viewExam, handlers.Coordinator.ListExams)
		coordinatorAPI.GET("/exams/:exam_id", viewExam, handlers.Coordinator.GetExam)
		coordinatorAPI.PUT("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionEditExam),
			handlers.Coordinator.UpdateExam)
		coordinatorAPI.POST("/exams/:exam_id/status",
			middleware.RequirePermission(model.PermissionScheduleExam),
			handlers.Coordinator.ChangeExamStatus)
		coordinatorAPI.POST("/exams/:exam_id/invitations",
			middleware.RequirePermission(model.PermissionInviteCandidate),
			handlers.Coordinator.InviteCandidate)
		coordinatorAPI.GET("/exams/:exam_id/sessions",
			middleware.RequirePermission(model.PermissionViewAllSessions),
			handlers.Coordinator.ListSessions)
		coordinatorAPI.DELETE("/candidates/:candidate_id/session",
			middleware.RequirePermission(model.PermissionManageUsers),
			handlers.Auth.ResetCandidateSession)
	}

	// ─── 4. WebSocket Group (Candidate WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireCandidateWSAuth(authService))
	{
		ws.GET("/candidate/sessions/:session_id/clock", handlers.WS.SessionClockStream)
	}

	return router
}
