package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, role, dept, pwd string) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	if !user.KnownRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	if role == user.RoleHOD && dept == "" {
		return errors.New("-department is required for hod accounts")
	}

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}}); err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.Name = core.CleanString(name)
	usr.Role = role
	usr.Department = core.CleanString(dept)
	usr.UpdatedAt = time.Now().UTC()
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
