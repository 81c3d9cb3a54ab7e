package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) login(uname, pwd string) error {
	usr, err := cli.sess.Login(context.Background(), uname, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s)\n", usr.Name, usr.Role)
	return nil
}

func (cli *commandLine) logout() error {
	cli.sess.Restore()
	if err := cli.sess.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out.")
	return nil
}

func (cli *commandLine) whoami() error {
	cli.sess.Restore()
	usr, ok := cli.sess.User()
	if !ok {
		fmt.Fprintln(cli.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(cli.out, "%s (%s) <%s>\n", usr.Name, usr.Role, usr.Email)
	return nil
}
