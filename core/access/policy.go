// Package access is the role policy: every authorization decision in the app
// is a pure projection of a user's role through the tables in this file.
// Unknown roles and unknown screens always fail closed.
package access

import (
	"github.com/kudzaic/educ8/core/user"
)

// Screens are the app's top-level feature areas. They double as the
// permission subjects for Can.
type Screen string

const (
	ScreenDashboard   Screen = "dashboard"
	ScreenStudents    Screen = "students"
	ScreenTeachers    Screen = "teachers"
	ScreenClasses     Screen = "classes"
	ScreenAssignments Screen = "assignments"
	ScreenGrades      Screen = "grades"
	ScreenFees        Screen = "fees"
	ScreenReports     Screen = "reports"
	ScreenSettings    Screen = "settings"
)

var AllScreens = []Screen{
	ScreenDashboard, ScreenStudents, ScreenTeachers, ScreenClasses,
	ScreenAssignments, ScreenGrades, ScreenFees, ScreenReports, ScreenSettings,
}

func KnownScreen(s Screen) bool {
	for _, screen := range AllScreens {
		if screen == s {
			return true
		}
	}
	return false
}

type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// NavItem is one entry of a role's navigation menu. Labels vary per role for
// the same screen ("Classes" vs "My Classes").
type NavItem struct {
	Screen Screen `json:"screen"`
	Label  string `json:"label"`
}

// navigation holds the per-role menus. Order is part of the contract: the
// menu renders in slice order, every time.
var navigation = map[string][]NavItem{
	user.RoleAdmin: {
		{ScreenDashboard, "Dashboard"},
		{ScreenStudents, "Students"},
		{ScreenTeachers, "Teachers"},
		{ScreenClasses, "Classes"},
		{ScreenGrades, "Grades"},
		{ScreenFees, "Fees"},
		{ScreenReports, "Reports"},
		{ScreenSettings, "Settings"},
	},
	user.RoleTeacher: {
		{ScreenDashboard, "Dashboard"},
		{ScreenStudents, "Students"},
		{ScreenClasses, "My Classes"},
		{ScreenGrades, "Grades"},
		{ScreenReports, "Reports"},
	},
	user.RoleStudent: {
		{ScreenDashboard, "Dashboard"},
		{ScreenStudents, "Classmates"},
		{ScreenClasses, "My Classes"},
		{ScreenGrades, "My Grades"},
	},
	user.RoleParent: {
		{ScreenDashboard, "Dashboard"},
		{ScreenStudents, "Children"},
		{ScreenGrades, "Grades"},
		{ScreenFees, "Fees"},
		{ScreenReports, "Reports"},
	},
	user.RoleBursar: {
		{ScreenDashboard, "Dashboard"},
		{ScreenStudents, "Students"},
		{ScreenFees, "Fees Management"},
		{ScreenReports, "Financial Reports"},
	},
	user.RoleHOD: {
		{ScreenDashboard, "Dashboard"},
		{ScreenStudents, "Students"},
		{ScreenTeachers, "Teachers"},
		{ScreenClasses, "Classes"},
		{ScreenGrades, "Grades"},
		{ScreenReports, "Reports"},
	},
}

// NavigationItems returns the ordered menu for a role. Unknown roles get the
// dashboard and nothing else.
func NavigationItems(role string) []NavItem {
	items, ok := navigation[role]
	if !ok {
		return []NavItem{{ScreenDashboard, "Dashboard"}}
	}
	// callers must not be able to reorder the shared tables
	out := make([]NavItem, len(items))
	copy(out, items)
	return out
}

// CanNavigate reports whether a screen appears in a role's menu.
func CanNavigate(role string, screen Screen) bool {
	for _, item := range NavigationItems(role) {
		if item.Screen == screen {
			return true
		}
	}
	return false
}

type actionSet map[Action]bool

var (
	createEdit = actionSet{ActionCreate: true, ActionEdit: true}
	edit       = actionSet{ActionEdit: true}
	all        = actionSet{ActionCreate: true, ActionEdit: true, ActionDelete: true}
)

// permissions maps (role, screen) to the allowed mutating actions.
// Read access is governed by navigation + ScopeFor, not this table.
var permissions = map[string]map[Screen]actionSet{
	user.RoleAdmin: {
		ScreenStudents:    all,
		ScreenTeachers:    all,
		ScreenClasses:     all,
		ScreenAssignments: all,
		ScreenGrades:      all,
		ScreenFees:        all,
		ScreenReports:     all,
		ScreenSettings:    all,
	},
	user.RoleTeacher: {
		ScreenStudents:    createEdit,
		ScreenClasses:     createEdit,
		ScreenAssignments: all,
		ScreenGrades:      createEdit,
	},
	user.RoleHOD: {
		ScreenTeachers: all,
		ScreenStudents: edit,
		ScreenClasses:  edit,
		ScreenGrades:   edit,
	},
	user.RoleBursar: {
		ScreenFees: edit,
	},
	// student submissions are owner-scoped rules in the assignment service,
	// not a screen-level grant; parents mutate nothing.
}

// Can reports whether a role may perform a mutating action on a screen.
func Can(role string, screen Screen, action Action) bool {
	screens, ok := permissions[role]
	if !ok {
		return false
	}
	return screens[screen][action]
}

// Scope describes which rows of a screen a viewer may see. The zero value
// matches nothing; services must check the flags and filter accordingly.
type Scope struct {
	// All grants unrestricted row access.
	All bool

	// TeacherID restricts rows to those owned by this teacher user.
	TeacherID string
	// ParentID restricts rows to those linked to this parent user.
	ParentID string
	// Department restricts rows to this department.
	Department string

	// OwnRecord restricts rows to the viewer's own record.
	OwnRecord bool
	// Classmates restricts student rows to the viewer's class, self excluded.
	Classmates bool
	// OwnClass restricts class rows to the class the viewer belongs to.
	OwnClass bool
}

func (s Scope) IsZero() bool { return s == Scope{} }

// ScopeFor returns the row-level visibility of a viewer on a screen.
func ScopeFor(viewer user.User, screen Screen) Scope {
	switch viewer.Role {
	case user.RoleAdmin:
		return Scope{All: true}

	case user.RoleHOD:
		switch screen {
		case ScreenTeachers:
			return Scope{Department: viewer.Department}
		case ScreenStudents, ScreenClasses, ScreenAssignments, ScreenGrades, ScreenReports:
			return Scope{All: true}
		}

	case user.RoleTeacher:
		switch screen {
		case ScreenStudents:
			return Scope{All: true}
		case ScreenClasses, ScreenAssignments, ScreenGrades, ScreenReports:
			return Scope{TeacherID: viewer.ID}
		}

	case user.RoleStudent:
		switch screen {
		case ScreenStudents:
			return Scope{Classmates: true}
		case ScreenClasses, ScreenAssignments:
			return Scope{OwnClass: true}
		case ScreenGrades:
			return Scope{OwnRecord: true}
		}

	case user.RoleParent:
		switch screen {
		case ScreenStudents, ScreenGrades, ScreenFees, ScreenReports:
			return Scope{ParentID: viewer.ID}
		}

	case user.RoleBursar:
		switch screen {
		case ScreenStudents, ScreenFees, ScreenReports:
			return Scope{All: true}
		}
	}
	return Scope{}
}
