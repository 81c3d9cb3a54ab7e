package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzaic/educ8/core/class"
	"github.com/kudzaic/educ8/core/user"
)

func Test_classApi_query(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "Ngoni Dube", "admin", "admin@test.zw", user.RoleAdmin, "", true)
	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	tarisai := createUser(t, "Tarisai Gumbo", "teacher2", "tarisai@test.zw", user.RoleTeacher, "", true)
	bursar := createUser(t, "Rudo Chirwa", "bursar", "rudo@test.zw", user.RoleBursar, "", true)
	mai := createUser(t, "Mai Moyo", "parent1", "mai@test.zw", user.RoleParent, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, mai.ID)

	form3b := createClass(t, "Form 3B", tarisai.ID, tarisai.Name)
	form4a := createClass(t, "Form 4A", sarah.ID, sarah.Name)

	// ordered by name
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Parent has no classes screen", token: getToken(t, mai), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Bursar has no classes screen", token: getToken(t, bursar), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "Admin sees every class", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, form3b, form4a),
		},
		{
			name: "Teacher sees the classes they teach", token: getToken(t, sarah), wantCode: http.StatusOK,
			wantData: marchallList(t, form4a),
		},
		{
			name: "Student sees their own class", token: getToken(t, heroUsr), wantCode: http.StatusOK,
			wantData: marchallList(t, form4a),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/classes"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_classApi_retrieve(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "Ngoni Dube", "admin", "admin@test.zw", user.RoleAdmin, "", true)
	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	tinashe := createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")
	chipo := createStudent(t, "Chipo Mukamuri", "Form 4A", "", "")

	form4a := createClass(t, "Form 4A", sarah.ID, sarah.Name)
	form3b := createClass(t, "Form 3B", sarah.ID, sarah.Name)

	t.Run("roster is resolved on read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classes/"+form4a.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got class.Class
		unmarshalInto(t, rec, &got)
		want := []class.RosterEntry{
			{StudentID: chipo.ID, Name: chipo.Name},
			{StudentID: tinashe.ID, Name: tinashe.Name},
		}
		assert.Equal(t, want, got.Students)
	})

	t.Run("student cannot read another class", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classes/"+form3b.ID, getToken(t, heroUsr))
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "this class is not visible to this role"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: wantData}, rec)
	})

	t.Run("unknown class", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classes/lol", getToken(t, admin))
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "class not found"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: wantData}, rec)
	})
}

func Test_classApi_createUpdateDelete(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "Ngoni Dube", "admin", "admin@test.zw", user.RoleAdmin, "", true)
	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	hod := createUser(t, "Tendai Ncube", "hod1", "tendai@test.zw", user.RoleHOD, "Sciences", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")

	body := marchallObj(t, class.NewClass{
		Name:        "Form 4A",
		TeacherID:   sarah.ID,
		TeacherName: sarah.Name,
		Room:        "Lab 2",
		Subjects:    []string{"Biology", "Chemistry"},
	})

	t.Run("student cannot create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", getToken(t, heroUsr), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("required fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", getToken(t, sarah))
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, map[string]string{
			"name":       "this field is required",
			"teacher_id": "this field is required",
		})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	var created class.Class
	t.Run("teacher creates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", getToken(t, sarah), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		unmarshalInto(t, rec, &created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, sarah.ID, created.TeacherID)
		assert.Equal(t, []string{"Biology", "Chemistry"}, created.Subjects)
	})

	t.Run("hod edits", func(t *testing.T) {
		update := marchallObj(t, class.UpdateClass{Room: "Lab 3"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/classes/"+created.ID, getToken(t, hod), update)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got class.Class
		unmarshalInto(t, rec, &got)
		assert.Equal(t, "Lab 3", got.Room)
		assert.Equal(t, "Form 4A", got.Name)
		assert.Equal(t, sarah.ID, got.TeacherID)
	})

	t.Run("only admin deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/classes/"+created.ID, getToken(t, hod))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodDelete, "/v1/classes/"+created.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/classes/"+created.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}
