package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core/assignment"
	"github.com/kudzaic/educ8/core/class"
	"github.com/kudzaic/educ8/core/user"
)

func createAssignment(t *testing.T, author user.User, cls class.Class, title, atype string, points int) assignment.Assignment {
	t.Helper()

	na := assignment.NewAssignment{Title: title, Type: atype}
	if points > 0 {
		na.Points = null.IntFrom(points)
	}
	a, err := asgSvc.Create(context.Background(), author, cls.ID, na)
	if err != nil {
		t.Fatalf("asgSvc.Create(): %v", err)
	}
	return a
}

func Test_assignmentApi_classFeed(t *testing.T) {
	resetDB(t)

	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	tarisai := createUser(t, "Tarisai Gumbo", "teacher2", "tarisai@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")

	form4a := createClass(t, "Form 4A", sarah.ID, sarah.Name)

	homework := createAssignment(t, sarah, form4a, "Photosynthesis worksheet", assignment.TypeAssignment, 20)
	note := createAssignment(t, sarah, form4a, "Bring lab coats on Friday", assignment.TypeNote, 0)

	// newest first
	tests := []httpTest{
		{
			name: "teacher reads their class feed", token: getToken(t, sarah), wantCode: http.StatusOK,
			wantData: marchallList(t, note, homework),
		},
		{
			name: "student reads their class feed", token: getToken(t, heroUsr), wantCode: http.StatusOK,
			wantData: marchallList(t, note, homework),
		},
		{
			name: "other teacher cannot read it", token: getToken(t, tarisai), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "this class is not visible to this role"}),
		},
		{
			name: "type filter", path: "/v1/classes/" + form4a.ID + "/assignments?type=note", token: getToken(t, sarah),
			wantCode: http.StatusOK, wantData: marchallList(t, note),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.path == "" {
			tt.path = "/v1/classes/" + form4a.ID + "/assignments"
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_create(t *testing.T) {
	resetDB(t)

	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	tarisai := createUser(t, "Tarisai Gumbo", "teacher2", "tarisai@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")

	form4a := createClass(t, "Form 4A", sarah.ID, sarah.Name)
	path := "/v1/classes/" + form4a.ID + "/assignments"

	body := marchallObj(t, assignment.NewAssignment{
		Title:  "Photosynthesis worksheet",
		Type:   assignment.TypeAssignment,
		Points: null.IntFrom(20),
	})

	t.Run("student cannot post", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, heroUsr), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("teacher cannot post to another teacher's class", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, tarisai), body)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "this class is not visible to this role"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: wantData}, rec)
	})

	t.Run("required fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, sarah))
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, map[string]string{
			"title": "this field is required",
			"type":  "this field is required",
		})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("teacher posts to their class", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, sarah), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var a assignment.Assignment
		unmarshalInto(t, rec, &a)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, form4a.ID, a.ClassID)
		assert.Equal(t, sarah.ID, a.CreatedBy)
		assert.Equal(t, null.IntFrom(20), a.Points)
	})
}

func Test_assignmentApi_submissionLifecycle(t *testing.T) {
	resetDB(t)

	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)

	tinashe := createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")

	form4a := createClass(t, "Form 4A", sarah.ID, sarah.Name)
	homework := createAssignment(t, sarah, form4a, "Photosynthesis worksheet", assignment.TypeAssignment, 20)
	note := createAssignment(t, sarah, form4a, "Bring lab coats on Friday", assignment.TypeNote, 0)

	heroToken := getToken(t, heroUsr)
	sarahToken := getToken(t, sarah)
	base := "/v1/assignments/" + homework.ID

	t.Run("teachers do not submit", func(t *testing.T) {
		body := marchallObj(t, assignment.SubmissionInput{Content: "my answer"})
		req, rec := newAuthRequest(http.MethodPost, base+"/submissions/draft", sarahToken, body)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "only students submit work"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: wantData}, rec)
	})

	t.Run("notes do not accept submissions", func(t *testing.T) {
		body := marchallObj(t, assignment.SubmissionInput{Content: "my answer"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+note.ID+"/submissions/submit", heroToken, body)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "only assignments accept submissions"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("no submission yet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, base+"/submissions/mine", heroToken)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "submission not found"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: wantData}, rec)
	})

	t.Run("empty submission is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, base+"/submissions/submit", heroToken)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "a submission requires content or an attached file"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("draft then submit", func(t *testing.T) {
		body := marchallObj(t, assignment.SubmissionInput{Content: "draft answer"})
		req, rec := newAuthRequest(http.MethodPost, base+"/submissions/draft", heroToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sub assignment.Submission
		unmarshalInto(t, rec, &sub)
		assert.Equal(t, assignment.StatusDraft, sub.Status)
		assert.Equal(t, tinashe.ID, sub.StudentID)
		assert.False(t, sub.SubmittedAt.Valid)

		// the draft is visible under /mine
		req, rec = newAuthRequest(http.MethodGet, base+"/submissions/mine", heroToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshalInto(t, rec, &sub)
		assert.Equal(t, "draft answer", sub.Content)

		body = marchallObj(t, assignment.SubmissionInput{Content: "final answer"})
		req, rec = newAuthRequest(http.MethodPost, base+"/submissions/submit", heroToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshalInto(t, rec, &sub)
		assert.Equal(t, assignment.StatusSubmitted, sub.Status)
		assert.Equal(t, "final answer", sub.Content)
		assert.True(t, sub.SubmittedAt.Valid)
	})

	t.Run("resubmission is rejected", func(t *testing.T) {
		body := marchallObj(t, assignment.SubmissionInput{Content: "changed my mind"})
		req, rec := newAuthRequest(http.MethodPost, base+"/submissions/submit", heroToken, body)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "this assignment has already been submitted"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("teacher lists submissions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, base+"/submissions", sarahToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var subs []assignment.Submission
		unmarshalInto(t, rec, &subs)
		require.Len(t, subs, 1)
		assert.Equal(t, tinashe.ID, subs[0].StudentID)
		assert.Equal(t, "Tinashe Moyo", subs[0].StudentName)
	})
}

func Test_assignmentApi_gradeSubmission(t *testing.T) {
	resetDB(t)

	sarah := createUser(t, "Sarah Mukamuri", "teacher1", "sarah@test.zw", user.RoleTeacher, "", true)
	heroUsr := createUser(t, "Tinashe Moyo", "hero", "tinashe@test.zw", user.RoleStudent, "", true)
	chipoUsr := createUser(t, "Chipo Mukamuri", "chipo", "chipo@test.zw", user.RoleStudent, "", true)

	createStudent(t, "Tinashe Moyo", "Form 4A", heroUsr.ID, "")
	createStudent(t, "Chipo Mukamuri", "Form 4A", chipoUsr.ID, "")

	form4a := createClass(t, "Form 4A", sarah.ID, sarah.Name)
	homework := createAssignment(t, sarah, form4a, "Photosynthesis worksheet", assignment.TypeAssignment, 20)

	submitted, err := asgSvc.Submit(context.Background(), heroUsr, homework.ID, assignment.SubmissionInput{Content: "final answer"})
	require.NoError(t, err)
	draft, err := asgSvc.SaveDraft(context.Background(), chipoUsr, homework.ID, assignment.SubmissionInput{Content: "half done"})
	require.NoError(t, err)

	gradeBody := marchallObj(t, assignment.GradeInput{Grade: 17, Feedback: "Good work"})

	t.Run("students cannot grade", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/submissions/"+submitted.ID+"/grade", getToken(t, heroUsr), gradeBody)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "this role cannot grade submissions"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: wantData}, rec)
	})

	t.Run("drafts cannot be graded", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/submissions/"+draft.ID+"/grade", getToken(t, sarah), gradeBody)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "only submitted work can be graded"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("teacher grades submitted work", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/submissions/"+submitted.ID+"/grade", getToken(t, sarah), gradeBody)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sub assignment.Submission
		unmarshalInto(t, rec, &sub)
		assert.Equal(t, assignment.StatusGraded, sub.Status)
		assert.Equal(t, null.IntFrom(17), sub.Grade)
		assert.Equal(t, null.StringFrom("Good work"), sub.Feedback)
	})

	t.Run("unknown submission", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/submissions/lol/grade", getToken(t, sarah), gradeBody)
		app.ServeHTTP(rec, req)
		wantData := marchallObj(t, httpErr{Error: "submission not found"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: wantData}, rec)
	})
}
