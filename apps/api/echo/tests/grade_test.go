package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzaic/educ8/core/grade"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
)

func createGradeAt(t *testing.T, teacher user.User, st student.Student, subject, assignmt, letter string, pct float64, date time.Time) grade.Grade {
	t.Helper()

	g, err := grdSvc.Create(context.Background(), teacher, grade.NewGrade{
		StudentID:  st.ID,
		Subject:    subject,
		Assignment: assignmt,
		Grade:      letter,
		Percentage: pct,
		Date:       date,
		Term:       "Term 1",
	})
	if err != nil {
		t.Fatalf("grdSvc.Create(): %v", err)
	}
	return g
}

func Test_gradeApi_query(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "Ngoni Dube", "admin", "admin@test.zw", user.RoleAdmin, "", true)
	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	tarisai := createUser(t, "Tarisai Gumbo", "teacher2", "tarisai@test.zw", user.RoleTeacher, "", true)
	bursar := createUser(t, "Rudo Chirwa", "bursar", "rudo@test.zw", user.RoleBursar, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)
	mai := createUser(t, "Mai Moyo", "parent1", "mai@test.zw", user.RoleParent, "", true)

	tinashe := createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, mai.ID)
	chipo := createStudent(t, "Chipo Mukamuri", "Form 4A", "", "")

	base := time.Now().UTC().Truncate(time.Second)
	algebra := createGradeAt(t, sarah, tinashe, "Mathematics", "Algebra Test", "A", 85, base.AddDate(0, 0, -14))
	geometry := createGradeAt(t, sarah, chipo, "Mathematics", "Geometry Quiz", "B", 72, base.AddDate(0, 0, -7))
	essay := createGradeAt(t, tarisai, tinashe, "English", "Essay", "C", 55, base)

	// most recent first
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Bursar has no grades screen", token: getToken(t, bursar), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "Admin sees every grade", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, essay, geometry, algebra),
		},
		{
			name: "Teacher sees grades they recorded", token: getToken(t, sarah), wantCode: http.StatusOK,
			wantData: marchallList(t, geometry, algebra),
		},
		{
			name: "Other teacher sees their own", token: getToken(t, tarisai), wantCode: http.StatusOK,
			wantData: marchallList(t, essay),
		},
		{
			name: "Student sees own record only", token: getToken(t, heroUsr), wantCode: http.StatusOK,
			wantData: marchallList(t, essay, algebra),
		},
		{
			name: "Parent sees their children's grades", token: getToken(t, mai), wantCode: http.StatusOK,
			wantData: marchallList(t, essay, algebra),
		},
		{
			name: "subject filter", path: "/v1/grades?subject=Mathematics", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, geometry, algebra),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.path == "" {
			tt.path = "/v1/grades"
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_gradeApi_summary(t *testing.T) {
	resetDB(t)

	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	tinashe := createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")

	base := time.Now().UTC().Truncate(time.Second)
	createGradeAt(t, sarah, tinashe, "Mathematics", "Algebra Test", "A", 85, base.AddDate(0, 0, -14))
	createGradeAt(t, sarah, tinashe, "English", "Essay", "C", 55, base)

	req, rec := newAuthRequest(http.MethodGet, "/v1/grades/summary", getToken(t, heroUsr))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sum grade.Summary
	unmarshalInto(t, rec, &sum)
	assert.Equal(t, float64(70), sum.Average)
	assert.Equal(t, map[string]float64{"Mathematics": 85, "English": 55}, sum.AverageBySubject)
	assert.Equal(t, grade.TrendDeclining, sum.Trend)

	// an empty record is a steady trend, not an error
	resetDB(t)
	empty := createUser(t, "Tapiwa Sibanda", "empty", "tapiwa@test.zw", user.RoleStudent, "", true)
	createStudent(t, "Tapiwa Sibanda", "Form 2C", empty.ID, "")

	req, rec = newAuthRequest(http.MethodGet, "/v1/grades/summary", getToken(t, empty))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	unmarshalInto(t, rec, &sum)
	assert.Equal(t, float64(0), sum.Average)
	assert.Equal(t, grade.TrendSteady, sum.Trend)
}

func Test_gradeApi_create(t *testing.T) {
	resetDB(t)

	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)
	mai := createUser(t, "Mai Moyo", "parent1", "mai@test.zw", user.RoleParent, "", true)

	tinashe := createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, mai.ID)

	body := marchallObj(t, grade.NewGrade{
		StudentID:  tinashe.ID,
		Subject:    "Biology",
		Assignment: "Cell Structure Test",
		Grade:      "B+",
		Percentage: 78,
		Term:       "Term 2",
	})

	t.Run("student cannot record grades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, heroUsr), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("required fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, sarah))
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, map[string]string{
			"student_id": "this field is required",
			"subject":    "this field is required",
			"assignment": "this field is required",
			"grade":      "this field is required",
			"term":       "this field is required",
		})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("teacher records a grade", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, sarah), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var g grade.Grade
		unmarshalInto(t, rec, &g)
		assert.NotEmpty(t, g.ID)
		assert.Equal(t, sarah.ID, g.TeacherID)
		assert.Equal(t, "Sarah Mukamuri", g.TeacherName)
		assert.Equal(t, "Tinashe Moyo", g.StudentName)
		assert.Equal(t, "Form 4A", g.Class)
		assert.Equal(t, mai.ID, g.ParentID)
		assert.False(t, g.Date.IsZero())
	})
}

func Test_gradeApi_retrieveUpdateDelete(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "Ngoni Dube", "admin", "admin@test.zw", user.RoleAdmin, "", true)
	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	tarisai := createUser(t, "Tarisai Gumbo", "teacher2", "tarisai@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	tinashe := createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")
	chipo := createStudent(t, "Chipo Mukamuri", "Form 4A", "", "")

	base := time.Now().UTC().Truncate(time.Second)
	algebra := createGradeAt(t, sarah, tinashe, "Mathematics", "Algebra Test", "B", 72, base.AddDate(0, 0, -7))
	geometry := createGradeAt(t, sarah, chipo, "Mathematics", "Geometry Quiz", "B", 70, base)

	retrieves := []httpTest{
		{
			name: "student retrieves own grade", path: "/v1/grades/" + algebra.ID, token: getToken(t, heroUsr),
			wantCode: http.StatusOK, wantData: marchallObj(t, algebra),
		},
		{
			name: "student cannot see a classmate's grade", path: "/v1/grades/" + geometry.ID, token: getToken(t, heroUsr),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "this grade is not visible to this role"}),
		},
		{
			name: "unknown grade", path: "/v1/grades/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "grade not found"}),
		},
	}
	for _, tt := range retrieves {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("teacher revises their own grade", func(t *testing.T) {
		body := marchallObj(t, grade.UpdateGrade{Grade: "A-", Percentage: 88})
		req, rec := newAuthRequest(http.MethodPut, "/v1/grades/"+algebra.ID, getToken(t, sarah), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got grade.Grade
		unmarshalInto(t, rec, &got)
		assert.Equal(t, "A-", got.Grade)
		assert.Equal(t, float64(88), got.Percentage)
	})

	t.Run("teacher cannot revise another teacher's grade", func(t *testing.T) {
		body := marchallObj(t, grade.UpdateGrade{Grade: "F", Percentage: 10})
		req, rec := newAuthRequest(http.MethodPut, "/v1/grades/"+algebra.ID, getToken(t, tarisai), body)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "this grade is not visible to this role"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: wantData}, rec)
	})

	t.Run("only admin deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/grades/"+algebra.ID, getToken(t, sarah))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodDelete, "/v1/grades/"+algebra.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/grades/"+algebra.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}
