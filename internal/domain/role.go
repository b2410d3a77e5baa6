package domain

import "fmt"

// Role is the coarse-grained identity category. The set is closed:
// adding a role is a code change, not configuration.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAgent Role = "AGENT"
	RoleAdmin Role = "ADMIN"
)

// ParseRole validates an externally supplied role tag.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAgent, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Permission is a fine-grained capability tag checked before a
// privileged operation. Closed set, same rule as Role.
type Permission string

const (
	PermReadProfile   Permission = "READ_PROFILE"
	PermUpdateProfile Permission = "UPDATE_PROFILE"
	PermDeleteProfile Permission = "DELETE_PROFILE"

	PermReadCatalog   Permission = "READ_CATALOG"
	PermCreateCatalog Permission = "CREATE_CATALOG_ENTRY"
	PermUpdateCatalog Permission = "UPDATE_CATALOG_ENTRY"
	PermDeleteCatalog Permission = "DELETE_CATALOG_ENTRY"

	PermReadRecords   Permission = "READ_RECORDS"
	PermCreateRecord  Permission = "CREATE_RECORD"
	PermUpdateRecord  Permission = "UPDATE_RECORD"
	PermDeleteRecord  Permission = "DELETE_RECORD"
	PermApproveRecord Permission = "APPROVE_RECORD"

	PermManageUsers     Permission = "MANAGE_USERS"
	PermViewAnalytics   Permission = "VIEW_ANALYTICS"
	PermManageSystem    Permission = "MANAGE_SYSTEM"
	PermManageSessions  Permission = "MANAGE_SESSIONS"
	PermViewAllSessions Permission = "VIEW_ALL_SESSIONS"
)

// AllPermissions enumerates the closed permission set.
func AllPermissions() []Permission {
	return []Permission{
		PermReadProfile, PermUpdateProfile, PermDeleteProfile,
		PermReadCatalog, PermCreateCatalog, PermUpdateCatalog, PermDeleteCatalog,
		PermReadRecords, PermCreateRecord, PermUpdateRecord, PermDeleteRecord, PermApproveRecord,
		PermManageUsers, PermViewAnalytics, PermManageSystem,
		PermManageSessions, PermViewAllSessions,
	}
}

// rolePermissions is the static role to capability matrix. Built once at
// process start and never mutated afterwards.
var rolePermissions = buildRolePermissions()

func buildRolePermissions() map[Role]map[Permission]struct{} {
	grants := map[Role][]Permission{
		RoleUser: {
			PermReadProfile, PermUpdateProfile,
			PermReadCatalog,
			PermReadRecords, PermCreateRecord, PermUpdateRecord, PermDeleteRecord,
		},
		RoleAgent: {
			PermReadProfile, PermUpdateProfile,
			PermReadCatalog,
			PermReadRecords, PermUpdateRecord,
			PermManageSessions,
		},
		RoleAdmin: AllPermissions(),
	}

	matrix := make(map[Role]map[Permission]struct{}, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		matrix[role] = set
	}
	return matrix
}

// AssertAdminSuperset verifies the matrix invariant that ADMIN holds
// every permission granted to any other role. Called at startup.
func AssertAdminSuperset() error {
	admin := rolePermissions[RoleAdmin]
	for role, perms := range rolePermissions {
		if role == RoleAdmin {
			continue
		}
		for p := range perms {
			if _, ok := admin[p]; !ok {
				return fmt.Errorf("permission matrix: %s grants %s but ADMIN does not", role, p)
			}
		}
	}
	return nil
}

// HasPermission reports whether the role holds the permission.
func HasPermission(role Role, permission Permission) bool {
	_, ok := rolePermissions[role][permission]
	return ok
}

// HasAnyPermission reports whether the role holds at least one of the
// given permissions.
func HasAnyPermission(role Role, permissions ...Permission) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}
