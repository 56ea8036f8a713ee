// Package policy maps engine actions to the principals allowed to perform them.
//
// The administrator holds every permission. Other principals act only through
// roles; a role grants a fixed set of actions.
package policy

import (
	"slices"

	"relief/internal/issuance/models"
	id "relief/pkg/domain"
)

// Action names an engine operation subject to authorization.
type Action string

const (
	ActionIssue           Action = "issue"
	ActionSetRule         Action = "set_rule"
	ActionPause           Action = "pause"
	ActionUnpause         Action = "unpause"
	ActionSetMaxPerVictim Action = "set_max_per_victim"
	ActionSetMinSeverity  Action = "set_min_severity"
	ActionTransferAdmin   Action = "transfer_admin"
	ActionGrantRole       Action = "grant_role"
	ActionRevokeRole      Action = "revoke_role"
)

var rolePermissions = map[models.Role][]Action{
	models.RoleIssuer: {ActionIssue},
}

// grantable lists every role in a fixed order.
var grantable = []models.Role{models.RoleIssuer}

// IsAdmin reports whether caller is the current administrator.
func IsAdmin(admin, caller id.Principal) bool {
	return !caller.IsNil() && caller == admin
}

// RolesGranting returns the roles whose holders may perform action.
func RolesGranting(action Action) []models.Role {
	var roles []models.Role
	for _, role := range grantable {
		if RoleAllows(role, action) {
			roles = append(roles, role)
		}
	}
	return roles
}

// Roles returns every grantable role.
func Roles() []models.Role {
	return slices.Clone(grantable)
}

// RoleAllows reports whether role permits action.
func RoleAllows(role models.Role, action Action) bool {
	for _, a := range rolePermissions[role] {
		if a == action {
			return true
		}
	}
	return false
}
