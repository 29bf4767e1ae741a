package access

import (
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/departments"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

// Messages are the client-facing texts for each denial reason.
type Messages struct {
	Unauthenticated  string
	ForbiddenRole    string
	ForbiddenSubrole string
}

// Action is a named operation with its required roles and optional sub-role constraints.
type Action struct {
	Name          string
	RequiredRoles []models.Role
	// SubRoles maps a role to the SRC department it must hold for this action.
	SubRoles map[models.Role]string
	Messages Messages
}

// Message returns the client text for a denial reason, with defaults.
func (a Action) Message(r Reason) string {
	switch r {
	case ReasonUnauthenticated:
		if a.Messages.Unauthenticated != "" {
			return a.Messages.Unauthenticated
		}
		return "Not authenticated"
	case ReasonForbiddenRole:
		if a.Messages.ForbiddenRole != "" {
			return a.Messages.ForbiddenRole
		}
		return "Forbidden"
	case ReasonForbiddenSubrole:
		if a.Messages.ForbiddenSubrole != "" {
			return a.Messages.ForbiddenSubrole
		}
		return "Forbidden"
	}
	return ""
}

var everyone = []models.Role{models.RoleStudent, models.RoleSRC, models.RoleAdmin}

var (
	ViewDashboard   = Action{Name: "view-dashboard", RequiredRoles: everyone}
	ListDepartments = Action{Name: "list-departments", RequiredRoles: everyone}
	UploadAvatar    = Action{Name: "upload-avatar", RequiredRoles: everyone}
	SubmitReport    = Action{Name: "submit-report", RequiredRoles: everyone}
	ListReports     = Action{Name: "list-reports", RequiredRoles: []models.Role{models.RoleSRC, models.RoleAdmin}}
	DeleteReport    = Action{
		Name:          "delete-report",
		RequiredRoles: []models.Role{models.RoleSRC, models.RoleAdmin},
		SubRoles:      map[models.Role]string{models.RoleSRC: departments.President},
		Messages: Messages{
			Unauthenticated:  "Unauthorized",
			ForbiddenRole:    "Forbidden",
			ForbiddenSubrole: "Only SRC President can delete reports",
		},
	}
)

// Catalogue lists every action the service gates.
func Catalogue() []Action {
	return []Action{ViewDashboard, ListDepartments, UploadAvatar, SubmitReport, ListReports, DeleteReport}
}
