package main

import (
	"log"
	"os"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/assignment"
	"github.com/kudzaic/educ8/core/class"
	"github.com/kudzaic/educ8/core/fee"
	"github.com/kudzaic/educ8/core/grade"
	"github.com/kudzaic/educ8/core/session"
	"github.com/kudzaic/educ8/core/staff"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
	emailsvc "github.com/kudzaic/educ8/services/email"
	"github.com/kudzaic/educ8/services/filestore"
	"github.com/kudzaic/educ8/storage/database"
	pgdb "github.com/kudzaic/educ8/storage/database/pg"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	mailSvc := emailsvc.NewConsoleService(conf)
	fileStore, err := filestore.NewLocalStore(conf.WorkDir + "/uploads")
	errAndDie(err)

	usrRepo := pgdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	stuSvc := student.NewService(pgdb.NewStudentRepository(db))
	stfSvc := staff.NewService(pgdb.NewStaffRepository(db))
	clsSvc := class.NewService(pgdb.NewClassRepository(db), stuSvc)
	asgSvc := assignment.NewService(pgdb.NewAssignmentRepository(db), clsSvc, stuSvc, fileStore)
	feeSvc := fee.NewService(pgdb.NewFeeRepository(db), stuSvc, usrSvc, mailSvc)
	grdSvc := grade.NewService(pgdb.NewGradeRepository(db), stuSvc)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		usrSvc:  usrSvc,
		stuSvc:  stuSvc,
		stfSvc:  stfSvc,
		clsSvc:  clsSvc,
		asgSvc:  asgSvc,
		feeSvc:  feeSvc,
		grdSvc:  grdSvc,
		sess:    session.New(usrSvc, session.NewFileStore(conf.SessionFile)),
		out:     os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
