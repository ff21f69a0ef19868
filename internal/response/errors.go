package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrPermissionDenied    ErrCode = "PERMISSION_DENIED"
	ErrCandidateAccessOnly ErrCode = "CANDIDATE_ACCESS_ONLY"
	ErrStaffAccessOnly     ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Enrollments ───────────────────────────────────────────────────
	ErrNotEnrolled       ErrCode = "NOT_ENROLLED"
	ErrEnrollmentPending ErrCode = "ENROLLMENT_NOT_PENDING"
	ErrInvitationExpired ErrCode = "INVITATION_EXPIRED"
	ErrAlreadyInvited    ErrCode = "ALREADY_INVITED"
	ErrCandidateNotFound ErrCode = "CANDIDATE_NOT_FOUND"

	// ─── Exams ─────────────────────────────────────────────────────────
	ErrExamNotAvailable  ErrCode = "EXAM_NOT_AVAILABLE"
	ErrExamNotDraft      ErrCode = "EXAM_NOT_DRAFT"
	ErrInvalidTransition ErrCode = "INVALID_STATUS_TRANSITION"
	ErrBankNotApproved   ErrCode = "QUESTION_BANK_NOT_APPROVED"
	ErrOutsideWindow     ErrCode = "OUTSIDE_EXAM_WINDOW"
	ErrWindowClosed      ErrCode = "EXAM_WINDOW_CLOSED"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrActiveSessionExists ErrCode = "SESSION_ALREADY_IN_PROGRESS"
	ErrAttemptsExhausted   ErrCode = "ATTEMPTS_EXHAUSTED"
	ErrAlreadyStarted      ErrCode = "SESSION_ALREADY_STARTED"
	ErrNotInProgress       ErrCode = "SESSION_NOT_IN_PROGRESS"
	ErrNoActiveSession     ErrCode = "NO_ACTIVE_SESSION"
	ErrPaperWithoutClock   ErrCode = "SESSION_CLOCK_NOT_STARTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session was invalidated. Please sign in again."
	case ErrTokenRequired:
		return "An access token is required."
	case ErrTokenInvalid:
		return "The access token is invalid."
	case ErrTokenExpired:
		return "The access token has expired."
	case ErrEmailTaken:
		return "This email is already registered."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrPermissionDenied:
		return "You do not have permission to perform this action."
	case ErrCandidateAccessOnly:
		return "This endpoint is for candidates only."
	case ErrStaffAccessOnly:
		return "This endpoint is for staff only."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "The submitted data is invalid."
	case ErrInvalidID:
		return "The identifier format is invalid."
	case ErrInvalidPayload:
		return "The request payload could not be parsed."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The request conflicts with the current state."

	// ─── Enrollments ───────────────────────────────────────────────────
	case ErrNotEnrolled:
		return "You are not enrolled in this exam."
	case ErrEnrollmentPending:
		return "This invitation has already been answered."
	case ErrInvitationExpired:
		return "This invitation has expired."
	case ErrAlreadyInvited:
		return "The candidate is already invited to this exam."
	case ErrCandidateNotFound:
		return "No candidate with that email exists in your organization."

	// ─── Exams ─────────────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "The exam is not open for sessions."
	case ErrExamNotDraft:
		return "Only DRAFT exams can be edited."
	case ErrInvalidTransition:
		return "The exam cannot move to that status."
	case ErrBankNotApproved:
		return "Exams require an APPROVED question bank."
	case ErrOutsideWindow:
		return "The exam window is not open right now."
	case ErrWindowClosed:
		return "The exam window has closed."

	// ─── Sessions ──────────────────────────────────────────────────────
	case ErrActiveSessionExists:
		return "You already have a session in progress for this exam."
	case ErrAttemptsExhausted:
		return "You have used all allowed attempts for this exam."
	case ErrAlreadyStarted:
		return "This session has already been started."
	case ErrNotInProgress:
		return "This session is not in progress."
	case ErrNoActiveSession:
		return "There is no session in progress to resume."
	case ErrPaperWithoutClock:
		return "Start the session before requesting the paper."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An unexpected error occurred. Please try again later."
	}
	return "Unknown error."
}
