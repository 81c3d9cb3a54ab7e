package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core/assignment"
	"github.com/kudzaic/educ8/core/class"
	"github.com/kudzaic/educ8/core/fee"
	"github.com/kudzaic/educ8/core/grade"
	"github.com/kudzaic/educ8/core/staff"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
)

var errNotEmpty = errors.New("database is not empty; refusing to seed")

// seed loads a small demo dataset covering every role. All accounts share
// the password "demo123".
func (cli *commandLine) seed() error {
	ctx := context.Background()

	existing, err := cli.usrSvc.Query(ctx, &user.QueryFilter{}, nil)
	if err != nil {
		return errors.Wrap(err, "checking for existing users")
	}
	if len(existing) > 0 {
		return errNotEmpty
	}

	const pwd = "demo123"
	newUser := func(name, uname, email, role, dept string) (user.User, error) {
		return cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Username:        uname,
			Email:           email,
			Role:            role,
			Department:      dept,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
	}

	if _, err = newUser("Ngoni Dube", "admin", "admin@educ8.test", user.RoleAdmin, ""); err != nil {
		return err
	}
	sarah, err := newUser("Sarah Mukamuri", "teacher1", "sarah.mukamuri@educ8.test", user.RoleTeacher, "")
	if err != nil {
		return err
	}
	tinasheUsr, err := newUser("Tinashe Moyo", "student1", "tinashe.moyo@educ8.test", user.RoleStudent, "")
	if err != nil {
		return err
	}
	mai, err := newUser("Mai Moyo", "parent1", "mai.moyo@educ8.test", user.RoleParent, "")
	if err != nil {
		return err
	}
	if _, err = newUser("Rudo Chirwa", "bursar", "rudo.chirwa@educ8.test", user.RoleBursar, ""); err != nil {
		return err
	}
	if _, err = newUser("Tendai Ncube", "hod1", "tendai.ncube@educ8.test", user.RoleHOD, "Sciences"); err != nil {
		return err
	}
	baba, err := newUser("Baba Mukamuri", "parent2", "baba.mukamuri@educ8.test", user.RoleParent, "")
	if err != nil {
		return err
	}

	if _, err = cli.stfSvc.Create(ctx, staff.NewTeacher{
		UserID:     sarah.ID,
		Name:       sarah.Name,
		Email:      sarah.Email,
		Phone:      "+263 77 123 4567",
		Subjects:   []string{"Biology", "Chemistry"},
		Classes:    []string{"Form 4A", "Form 3B"},
		Department: "Sciences",
		Experience: "8 years",
	}); err != nil {
		return errors.Wrap(err, "seeding staff")
	}

	tinashe, err := cli.stuSvc.Create(ctx, student.NewStudent{
		UserID:           tinasheUsr.ID,
		ParentID:         mai.ID,
		Name:             "Tinashe Moyo",
		Class:            "Form 4A",
		Age:              16,
		GuardianPhone:    "+263 71 555 0101",
		Email:            tinasheUsr.Email,
		Address:          "12 Samora Machel Ave, Harare",
		DateOfBirth:      time.Date(2010, time.March, 14, 0, 0, 0, 0, time.UTC),
		Extracurriculars: []string{"Soccer", "Debate Club"},
	})
	if err != nil {
		return errors.Wrap(err, "seeding students")
	}
	chipo, err := cli.stuSvc.Create(ctx, student.NewStudent{
		ParentID:      baba.ID,
		Name:          "Chipo Mukamuri",
		Class:         "Form 4A",
		Age:           15,
		GuardianPhone: "+263 71 555 0202",
		Email:         "chipo.mukamuri@educ8.test",
		Address:       "48 Second St, Bulawayo",
		DateOfBirth:   time.Date(2010, time.November, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return errors.Wrap(err, "seeding students")
	}
	john, err := cli.stuSvc.Create(ctx, student.NewStudent{
		ParentID:      baba.ID,
		Name:          "John Mukamuri",
		Class:         "Form 3B",
		Age:           14,
		GuardianPhone: "+263 71 555 0202",
		Email:         "john.mukamuri@educ8.test",
		Address:       "48 Second St, Bulawayo",
		DateOfBirth:   time.Date(2012, time.January, 27, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return errors.Wrap(err, "seeding students")
	}

	form4a, err := cli.clsSvc.Create(ctx, class.NewClass{
		Name:        "Form 4A",
		TeacherID:   sarah.ID,
		TeacherName: sarah.Name,
		Room:        "Lab 2",
		Schedule:    "Mon-Fri 08:00-10:00",
		Subjects:    []string{"Biology", "Chemistry"},
	})
	if err != nil {
		return errors.Wrap(err, "seeding classes")
	}
	if _, err = cli.clsSvc.Create(ctx, class.NewClass{
		Name:        "Form 3B",
		TeacherID:   sarah.ID,
		TeacherName: sarah.Name,
		Room:        "Room 14",
		Schedule:    "Mon-Fri 10:30-12:30",
		Subjects:    []string{"Biology"},
	}); err != nil {
		return errors.Wrap(err, "seeding classes")
	}

	now := time.Now().UTC()

	// posted as the class teacher
	if _, err = cli.asgSvc.Create(ctx, sarah, form4a.ID, assignment.NewAssignment{
		Title:       "Cell structure essay",
		Description: "Describe the organelles of a plant cell and their functions.",
		Type:        assignment.TypeAssignment,
		DueDate:     null.TimeFrom(now.AddDate(0, 0, 14)),
		Points:      null.IntFrom(20),
	}); err != nil {
		return errors.Wrap(err, "seeding assignments")
	}
	if _, err = cli.asgSvc.Create(ctx, sarah, form4a.ID, assignment.NewAssignment{
		Title:       "Mid-term revision notes",
		Description: "Chapters 4 through 7 are examinable.",
		Type:        assignment.TypeNote,
	}); err != nil {
		return errors.Wrap(err, "seeding assignments")
	}

	grades := []grade.NewGrade{
		{StudentID: tinashe.ID, Subject: "Biology", Assignment: "Cell structure essay", Grade: "A", Percentage: 88, Term: "Term 1", Date: now.AddDate(0, 0, -7)},
		{StudentID: tinashe.ID, Subject: "Chemistry", Assignment: "Acids and bases quiz", Grade: "B", Percentage: 74, Term: "Term 1", Date: now.AddDate(0, 0, -3)},
		{StudentID: chipo.ID, Subject: "Biology", Assignment: "Cell structure essay", Grade: "B", Percentage: 71, Term: "Term 1", Date: now.AddDate(0, 0, -7)},
		{StudentID: john.ID, Subject: "Biology", Assignment: "Photosynthesis test", Grade: "C", Percentage: 58, Term: "Term 1", Date: now.AddDate(0, 0, -1)},
	}
	for _, ng := range grades {
		if _, err = cli.grdSvc.Create(ctx, sarah, ng); err != nil {
			return errors.Wrap(err, "seeding grades")
		}
	}

	fees := []fee.NewFee{
		{StudentID: tinashe.ID, AmountDue: 350, AmountPaid: 150, FeeType: "Tuition", DueDate: now.AddDate(0, 1, 0)},
		{StudentID: chipo.ID, AmountDue: 350, AmountPaid: 350, FeeType: "Tuition", DueDate: now.AddDate(0, 1, 0)},
		{StudentID: john.ID, AmountDue: 300, AmountPaid: 0, FeeType: "Tuition", DueDate: now.AddDate(0, 0, -5)},
	}
	for _, nf := range fees {
		if _, err = cli.feeSvc.Create(ctx, nf); err != nil {
			return errors.Wrap(err, "seeding fees")
		}
	}

	fmt.Fprintln(cli.out, "Demo dataset loaded.")
	return nil
}
