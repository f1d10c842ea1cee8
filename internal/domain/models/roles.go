// internal/domain/models/roles.go
package models

// User roles. The *_role_request roles are transitional: the user has paid and
// is waiting for an admin decision.
const (
	RoleUser              = "user"
	RoleRestaurant        = "restaurant"
	RoleCharity           = "charity"
	RoleAdmin             = "admin"
	RoleCharityRequest    = "charity_role_request"
	RoleRestaurantRequest = "restaurant_role_request"
)

// RoleRequestRoles lists the transitional roles awaiting admin approval.
var RoleRequestRoles = []string{RoleCharityRequest, RoleRestaurantRequest}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleRestaurant, RoleCharity, RoleAdmin, RoleCharityRequest, RoleRestaurantRequest:
		return true
	}
	return false
}

// TargetRoleFor maps a role-request role to the role granted on approval.
// Returns "" for anything that is not a role-request role.
func TargetRoleFor(requestRole string) string {
	switch requestRole {
	case RoleCharityRequest:
		return RoleCharity
	case RoleRestaurantRequest:
		return RoleRestaurant
	}
	return ""
}
