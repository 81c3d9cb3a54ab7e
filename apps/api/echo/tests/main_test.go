package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/kudzaic/educ8/apps/api/echo"
	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/assignment"
	"github.com/kudzaic/educ8/core/class"
	"github.com/kudzaic/educ8/core/fee"
	"github.com/kudzaic/educ8/core/grade"
	"github.com/kudzaic/educ8/core/staff"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
	emailsvc "github.com/kudzaic/educ8/services/email"
	"github.com/kudzaic/educ8/services/filestore"
	logsvc "github.com/kudzaic/educ8/services/logger"
	inmemdb "github.com/kudzaic/educ8/storage/database/inmem"
)

var (
	conf *core.Config
	db   *inmemdb.DB
	app  Server

	usrRepo user.Repository
	usrSvc  user.Service
	stuSvc  student.Service
	stfSvc  staff.Service
	clsSvc  class.Service
	asgSvc  assignment.Service
	feeSvc  fee.Service
	grdSvc  grade.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "API TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	fileStore, err := filestore.NewLocalStore(filepath.Join(os.TempDir(), "educ8-test-uploads"))
	if err != nil {
		log.Fatalf("NewLocalStore(): %v", err)
	}
	usrSvc = user.NewServiceMock(usrRepo, mailSvc, conf)
	stuSvc = student.NewService(inmemdb.NewStudentRepository(db))
	stfSvc = staff.NewService(inmemdb.NewStaffRepository(db))
	clsSvc = class.NewService(inmemdb.NewClassRepository(db), stuSvc)
	asgSvc = assignment.NewService(inmemdb.NewAssignmentRepository(db), clsSvc, stuSvc, fileStore)
	feeSvc = fee.NewService(inmemdb.NewFeeRepository(db), stuSvc, usrSvc, mailSvc)
	grdSvc = grade.NewService(inmemdb.NewGradeRepository(db), stuSvc)

	// set up validation & templates
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			StudentSvc:     stuSvc,
			StaffSvc:       stfSvc,
			ClassSvc:       clsSvc,
			AssignmentSvc:  asgSvc,
			FeeSvc:         feeSvc,
			GradeSvc:       grdSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)

	os.Exit(m.Run())
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
	emailsvc.ClearSentMessages()
}

// Fixtures

func createUser(t *testing.T, name, uname, email, role, dept string, active bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:       name,
		Username:   uname,
		Email:      email,
		Role:       role,
		Department: dept,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	usr.SetActive(active)
	if err := usr.SetPassword("Test1234!"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createStudent(t *testing.T, name, cls, userID, parentID string) student.Student {
	t.Helper()

	st, err := stuSvc.Create(context.Background(), student.NewStudent{
		UserID:   userID,
		ParentID: parentID,
		Name:     name,
		Class:    cls,
	})
	if err != nil {
		t.Fatalf("stuSvc.Create(): %v", err)
	}
	return st
}

func createClass(t *testing.T, name, teacherID, teacherName string) class.Class {
	t.Helper()

	cls, err := clsSvc.Create(context.Background(), class.NewClass{
		Name:        name,
		TeacherID:   teacherID,
		TeacherName: teacherName,
	})
	if err != nil {
		t.Fatalf("clsSvc.Create(): %v", err)
	}
	return cls
}

func createFee(t *testing.T, studentID string, due, paid float64, feeType string, dueDate time.Time) fee.Fee {
	t.Helper()

	f, err := feeSvc.Create(context.Background(), fee.NewFee{
		StudentID:  studentID,
		AmountDue:  due,
		AmountPaid: paid,
		FeeType:    feeType,
		DueDate:    dueDate,
	})
	if err != nil {
		t.Fatalf("feeSvc.Create(): %v", err)
	}
	return f
}

func createGrade(t *testing.T, teacher user.User, studentID, subject, assignmt, letter string, pct float64, term string) grade.Grade {
	t.Helper()

	g, err := grdSvc.Create(context.Background(), teacher, grade.NewGrade{
		StudentID:  studentID,
		Subject:    subject,
		Assignment: assignmt,
		Grade:      letter,
		Percentage: pct,
		Term:       term,
	})
	if err != nil {
		t.Fatalf("grdSvc.Create(): %v", err)
	}
	return g
}

// HTTP helpers

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func unmarshalInto(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("json.Unmarshal(): %v (body: %s)", err, rec.Body.String())
	}
}
