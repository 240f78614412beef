package user

type Permission string

const (
	// Self service
	PermissionClockOwn           Permission = "time_record.clock_own"
	PermissionHourBankViewOwn    Permission = "hour_bank.view_own"
	PermissionOvertimeRequest    Permission = "overtime.request"
	PermissionCompensationCreate Permission = "compensation.create"

	// Administration
	PermissionTimeRecordManage   Permission = "time_record.manage"
	PermissionHourBankViewAll    Permission = "hour_bank.view_all"
	PermissionHourBankAdjust     Permission = "hour_bank.adjust"
	PermissionOvertimeApprove    Permission = "overtime.approve"
	PermissionOvertimeSettings   Permission = "overtime.settings"
	PermissionCompensationManage Permission = "compensation.manage"
)

var selfService = []Permission{
	PermissionClockOwn,
	PermissionHourBankViewOwn,
	PermissionOvertimeRequest,
	PermissionCompensationCreate,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: append(append([]Permission{}, selfService...),
		PermissionTimeRecordManage,
		PermissionHourBankViewAll,
		PermissionHourBankAdjust,
		PermissionOvertimeApprove,
		PermissionOvertimeSettings,
		PermissionCompensationManage,
	),
	RoleWorker: selfService,
	RoleIntern: selfService,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
