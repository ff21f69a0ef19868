package model

// Permission is a fine-grained capability code carried in JWT claims and
// checked by the RBAC middleware.
type Permission string

const (
	// Organization management
	PermissionManageOrganization Permission = "manage_organization"
	PermissionManageDepartments  Permission = "manage_departments"
	PermissionManageUsers        Permission = "manage_users"
	PermissionManageRoles        Permission = "manage_roles"

	// Question banks and questions
	PermissionCreateQuestionBank  Permission = "create_question_bank"
	PermissionEditQuestionBank    Permission = "edit_question_bank"
	PermissionDeleteQuestionBank  Permission = "delete_question_bank"
	PermissionApproveQuestionBank Permission = "approve_question_bank"
	PermissionViewQuestionBank    Permission = "view_question_bank"
	PermissionCreateQuestion      Permission = "create_question"
	PermissionEditQuestion        Permission = "edit_question"
	PermissionDeleteQuestion      Permission = "delete_question"
	PermissionApproveQuestion     Permission = "approve_question"
	PermissionViewQuestion        Permission = "view_question"

	// Exam configuration
	PermissionCreateExam     Permission = "create_exam"
	PermissionEditExam       Permission = "edit_exam"
	PermissionDeleteExam     Permission = "delete_exam"
	PermissionScheduleExam   Permission = "schedule_exam"
	PermissionViewExamConfig Permission = "view_exam_config"

	// Enrollment management
	PermissionInviteCandidate        Permission = "invite_candidate"
	PermissionApproveEnrollment      Permission = "approve_enrollment"
	PermissionRejectEnrollment       Permission = "reject_enrollment"
	PermissionViewEnrollments        Permission = "view_enrollments"
	PermissionViewPendingInvitations Permission = "view_pending_invitations"
	PermissionAcceptEnrollment       Permission = "accept_enrollment"
	PermissionDeclineEnrollment      Permission = "decline_enrollment"

	// Exam sessions
	PermissionTakeExam        Permission = "take_exam"
	PermissionViewOwnResults  Permission = "view_own_results"
	PermissionViewAllSessions Permission = "view_all_sessions"
)

// Role groups permissions. The matrix is consumed as a yes/no gate by the
// middleware; the session core adds its own data-ownership checks on top.
type Role string

const (
	RoleSuperAdmin        Role = "SUPER_ADMIN"
	RoleOrgAdmin          Role = "ORG_ADMIN"
	RoleExamAuthor        Role = "EXAM_AUTHOR"
	RoleExamCoordinator   Role = "EXAM_COORDINATOR"
	RoleEnrollmentManager Role = "ENROLLMENT_MANAGER"
	RoleCandidate         Role = "CANDIDATE"
)

// RolePermissions maps each role to its permission set.
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionManageOrganization, PermissionManageDepartments,
		PermissionManageUsers, PermissionManageRoles,
		PermissionCreateQuestionBank, PermissionEditQuestionBank,
		PermissionDeleteQuestionBank, PermissionApproveQuestionBank,
		PermissionViewQuestionBank,
		PermissionCreateQuestion, PermissionEditQuestion,
		PermissionDeleteQuestion, PermissionApproveQuestion,
		PermissionViewQuestion,
		PermissionCreateExam, PermissionEditExam, PermissionDeleteExam,
		PermissionScheduleExam, PermissionViewExamConfig,
		PermissionInviteCandidate, PermissionApproveEnrollment,
		PermissionRejectEnrollment, PermissionViewEnrollments,
		PermissionViewAllSessions,
	},
	RoleOrgAdmin: {
		PermissionManageDepartments, PermissionManageUsers, PermissionManageRoles,
		PermissionViewQuestionBank, PermissionViewExamConfig,
		PermissionViewEnrollments, PermissionViewAllSessions,
	},
	RoleExamAuthor: {
		PermissionCreateQuestionBank, PermissionEditQuestionBank,
		PermissionDeleteQuestionBank, PermissionViewQuestionBank,
		PermissionCreateQuestion, PermissionEditQuestion,
		PermissionDeleteQuestion, PermissionViewQuestion,
	},
	RoleExamCoordinator: {
		PermissionViewQuestionBank,
		PermissionCreateExam, PermissionEditExam, PermissionDeleteExam,
		PermissionScheduleExam, PermissionViewExamConfig,
		PermissionInviteCandidate, PermissionViewEnrollments,
		PermissionViewAllSessions,
	},
	RoleEnrollmentManager: {
		PermissionInviteCandidate, PermissionApproveEnrollment,
		PermissionRejectEnrollment, PermissionViewEnrollments,
	},
	RoleCandidate: {
		PermissionTakeExam, PermissionViewOwnResults,
		PermissionViewPendingInvitations,
		PermissionAcceptEnrollment, PermissionDeclineEnrollment,
	},
}

// PermissionsFor returns the permission codes for a role as strings,
// in the form embedded into JWT claims.
func PermissionsFor(role Role) []string {
	perms := RolePermissions[role]
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
