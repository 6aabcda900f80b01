package authz

import (
	"strings"

	"travelagency/pkg/apperr"
)

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleAdmin, RoleSuperAdmin:
		return r, nil
	default:
		return "", apperr.Invalid("role", s, "unknown role: "+s)
	}
}

func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleSuperAdmin }

type Action string

const (
	ActionUpdateBookingStatus Action = "update booking status"
	ActionUpdatePaymentStatus Action = "update payment status"
	ActionViewBookings        Action = "view bookings"
	ActionExportBookings      Action = "export bookings"
	ActionModerateReview      Action = "moderate reviews"
	ActionDeleteReview        Action = "delete reviews"
	ActionUpdateApplication   Action = "update job applications"
	ActionViewApplications    Action = "view job applications"
	ActionManageJobs          Action = "manage job postings"
	ActionManageCatalog       Action = "manage tours and visa packages"
	ActionManageSettings      Action = "manage settings"
	ActionViewCustomers       Action = "view customers"
	ActionViewEmployees       Action = "view employees"
	ActionViewRecordEvents    Action = "view record history"
	ActionCreateEmployee      Action = "create employees"
	ActionChangeRole          Action = "change user roles"
)

// superAdminOnly lists actions closed to plain admins. Every other action
// is open to ADMIN and SUPER_ADMIN and closed to everyone else.
var superAdminOnly = map[Action]bool{
	ActionCreateEmployee: true,
	ActionChangeRole:     true,
}

// Authorize is the single server-side gate for admin mutations and views.
func Authorize(role Role, action Action) error {
	switch role {
	case RoleSuperAdmin:
		return nil
	case RoleAdmin:
		if superAdminOnly[action] {
			return apperr.Forbidden(string(role), string(action))
		}
		return nil
	default:
		return apperr.Forbidden(string(role), string(action))
	}
}

// CanAssign reports whether actor may grant role target to another account.
func CanAssign(actor, target Role) error {
	if err := Authorize(actor, ActionChangeRole); err != nil {
		return err
	}
	if _, err := ParseRole(string(target)); err != nil {
		return err
	}
	return nil
}
