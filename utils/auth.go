package utils

import "github.com/samber/lo"

// Permission levels
const (
	SuperAdminPermission = "super_admin"
	DeveloperPermission  = "developer"
	AdminPermission      = "admin"
	UserPermission       = "user"
	GuestPermission      = "guest"
)

// CheckPermission checks the highest permission level for a given list of role IDs against the configured roles.
func CheckPermission(userRoleIDs []string, userID string, adminRoleIDs, userRoleIDsConfig, developerUserIDs, superAdminRoleIDs []string) string {
	if lo.Contains(developerUserIDs, userID) {
		return DeveloperPermission
	}

	if lo.Some(superAdminRoleIDs, userRoleIDs) {
		return SuperAdminPermission
	}

	if lo.Some(adminRoleIDs, userRoleIDs) {
		return AdminPermission
	}

	if lo.Some(userRoleIDsConfig, userRoleIDs) {
		return UserPermission
	}

	return GuestPermission
}

// CanManageModeration reports whether a permission level may change guild moderation settings.
func CanManageModeration(level string) bool {
	switch level {
	case DeveloperPermission, SuperAdminPermission, AdminPermission:
		return true
	default:
		return false
	}
}
