// Package inmemdb provides map-backed repositories for tests and local
// development. All repositories share one DB and one lock.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kudzaic/educ8/core/assignment"
	"github.com/kudzaic/educ8/core/class"
	"github.com/kudzaic/educ8/core/fee"
	"github.com/kudzaic/educ8/core/grade"
	"github.com/kudzaic/educ8/core/staff"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	students    map[string]*student.Student
	teachers    map[string]*staff.Teacher
	classes     map[string]*class.Class
	assignments map[string]*assignment.Assignment
	submissions map[string]*assignment.Submission
	fees        map[string]*fee.Fee
	grades      map[string]*grade.Grade
}

func Open() *DB {
	return &DB{
		users:       make(map[string]*user.User),
		students:    make(map[string]*student.Student),
		teachers:    make(map[string]*staff.Teacher),
		classes:     make(map[string]*class.Class),
		assignments: make(map[string]*assignment.Assignment),
		submissions: make(map[string]*assignment.Submission),
		fees:        make(map[string]*fee.Fee),
		grades:      make(map[string]*grade.Grade),
	}
}

// Reset drops every stored record. Tests call it between cases.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[string]*user.User)
	db.students = make(map[string]*student.Student)
	db.teachers = make(map[string]*staff.Teacher)
	db.classes = make(map[string]*class.Class)
	db.assignments = make(map[string]*assignment.Assignment)
	db.submissions = make(map[string]*assignment.Submission)
	db.fees = make(map[string]*fee.Fee)
	db.grades = make(map[string]*grade.Grade)
}

func newPK() string { return uuid.New().String() }
