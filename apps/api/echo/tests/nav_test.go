package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/kudzaic/educ8/apps/api/echo"
	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/user"
)

func Test_navApi_navigation(t *testing.T) {
	resetDB(t)

	tests := []struct {
		role      string
		wantItems []access.NavItem
		wantPerms map[string][]access.Action
	}{
		{
			role: user.RoleAdmin,
			wantItems: []access.NavItem{
				{Screen: access.ScreenDashboard, Label: "Dashboard"},
				{Screen: access.ScreenStudents, Label: "Students"},
				{Screen: access.ScreenTeachers, Label: "Teachers"},
				{Screen: access.ScreenClasses, Label: "Classes"},
				{Screen: access.ScreenGrades, Label: "Grades"},
				{Screen: access.ScreenFees, Label: "Fees"},
				{Screen: access.ScreenReports, Label: "Reports"},
				{Screen: access.ScreenSettings, Label: "Settings"},
			},
			wantPerms: map[string][]access.Action{
				"students": {access.ActionCreate, access.ActionEdit, access.ActionDelete},
				"teachers": {access.ActionCreate, access.ActionEdit, access.ActionDelete},
				"classes":  {access.ActionCreate, access.ActionEdit, access.ActionDelete},
				"grades":   {access.ActionCreate, access.ActionEdit, access.ActionDelete},
				"fees":     {access.ActionCreate, access.ActionEdit, access.ActionDelete},
				"reports":  {access.ActionCreate, access.ActionEdit, access.ActionDelete},
				"settings": {access.ActionCreate, access.ActionEdit, access.ActionDelete},
			},
		},
		{
			role: user.RoleTeacher,
			wantItems: []access.NavItem{
				{Screen: access.ScreenDashboard, Label: "Dashboard"},
				{Screen: access.ScreenStudents, Label: "Students"},
				{Screen: access.ScreenClasses, Label: "My Classes"},
				{Screen: access.ScreenGrades, Label: "Grades"},
				{Screen: access.ScreenReports, Label: "Reports"},
			},
			wantPerms: map[string][]access.Action{
				"students": {access.ActionCreate, access.ActionEdit},
				"classes":  {access.ActionCreate, access.ActionEdit},
				"grades":   {access.ActionCreate, access.ActionEdit},
			},
		},
		{
			role: user.RoleStudent,
			wantItems: []access.NavItem{
				{Screen: access.ScreenDashboard, Label: "Dashboard"},
				{Screen: access.ScreenStudents, Label: "Classmates"},
				{Screen: access.ScreenClasses, Label: "My Classes"},
				{Screen: access.ScreenGrades, Label: "My Grades"},
			},
			wantPerms: map[string][]access.Action{},
		},
		{
			role: user.RoleParent,
			wantItems: []access.NavItem{
				{Screen: access.ScreenDashboard, Label: "Dashboard"},
				{Screen: access.ScreenStudents, Label: "Children"},
				{Screen: access.ScreenGrades, Label: "Grades"},
				{Screen: access.ScreenFees, Label: "Fees"},
				{Screen: access.ScreenReports, Label: "Reports"},
			},
			wantPerms: map[string][]access.Action{},
		},
		{
			role: user.RoleBursar,
			wantItems: []access.NavItem{
				{Screen: access.ScreenDashboard, Label: "Dashboard"},
				{Screen: access.ScreenStudents, Label: "Students"},
				{Screen: access.ScreenFees, Label: "Fees Management"},
				{Screen: access.ScreenReports, Label: "Financial Reports"},
			},
			wantPerms: map[string][]access.Action{
				"fees": {access.ActionEdit},
			},
		},
		{
			role: user.RoleHOD,
			wantItems: []access.NavItem{
				{Screen: access.ScreenDashboard, Label: "Dashboard"},
				{Screen: access.ScreenStudents, Label: "Students"},
				{Screen: access.ScreenTeachers, Label: "Teachers"},
				{Screen: access.ScreenClasses, Label: "Classes"},
				{Screen: access.ScreenGrades, Label: "Grades"},
				{Screen: access.ScreenReports, Label: "Reports"},
			},
			wantPerms: map[string][]access.Action{
				"teachers": {access.ActionCreate, access.ActionEdit, access.ActionDelete},
				"students": {access.ActionEdit},
				"classes":  {access.ActionEdit},
				"grades":   {access.ActionEdit},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			usr := createUser(t, "User "+tt.role, "user_"+tt.role, tt.role+"@test.zw", tt.role, "", true)

			req, rec := newAuthRequest(http.MethodGet, "/v1/navigation", getToken(t, usr))
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp echoapi.NavigationResponse
			unmarshalInto(t, rec, &resp)
			assert.Equal(t, tt.role, resp.Role)
			assert.Equal(t, tt.wantItems, resp.Items)
			if len(tt.wantPerms) == 0 {
				assert.Empty(t, resp.Permissions)
			} else {
				assert.Equal(t, tt.wantPerms, resp.Permissions)
			}
		})
	}
}

func Test_navApi_screen(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "Ngoni Dube", "admin", "admin@test.zw", user.RoleAdmin, "", true)
	hero := createUser(t, "Hero Moyo", "hero", "hero@test.zw", user.RoleStudent, "", true)

	adminToken := getToken(t, admin)
	heroToken := getToken(t, hero)

	tests := []struct {
		name     string
		screen   string
		token    string
		wantCode int
		want     echoapi.ScreenResponse
	}{
		{name: "unknown screen", screen: "lol", token: adminToken, wantCode: http.StatusNotFound},
		{name: "screen not in role's menu", screen: "fees", token: heroToken, wantCode: http.StatusForbidden},
		{
			name: "built screen", screen: "students", token: adminToken, wantCode: http.StatusOK,
			want: echoapi.ScreenResponse{Screen: access.ScreenStudents, Status: "available", Endpoint: "/v1/students"},
		},
		{
			name: "placeholder screen", screen: "dashboard", token: heroToken, wantCode: http.StatusOK,
			want: echoapi.ScreenResponse{Screen: access.ScreenDashboard, Status: "coming_soon"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/screens/"+tt.screen, tt.token)
			app.ServeHTTP(rec, req)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode == http.StatusOK {
				var resp echoapi.ScreenResponse
				unmarshalInto(t, rec, &resp)
				assert.Equal(t, tt.want, resp)
			}
		})
	}
}
