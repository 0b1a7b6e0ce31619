package cli

import (
	"context"

	"github.com/dmitrijs2005/taskgate/internal/common"
)

func (a *App) Login(ctx context.Context) error {
	a.ctrl.ShowLogin()

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.printf("Signing in...\n")
	if err := a.ctrl.Login(ctx, email, password); err != nil {
		return a.report(err)
	}

	a.printf("Welcome, %s\n", a.ctrl.State().User.Name)
	return nil
}

func (a *App) Signup(ctx context.Context) error {
	a.ctrl.ShowSignup()

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.printf("Creating account...\n")
	if err := a.ctrl.Signup(ctx, name, email, password); err != nil {
		return a.report(err)
	}

	a.printf("Welcome, %s\n", a.ctrl.State().User.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.ctrl.Logout(ctx); err != nil {
		return a.report(err)
	}
	a.printf("Logged out\n")
	return nil
}
