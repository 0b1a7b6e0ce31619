package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskgate/internal/client/controller"
	"github.com/dmitrijs2005/taskgate/internal/common"
)

// App is the interactive front end over a Controller.
type App struct {
	ctrl   *controller.Controller
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctrl *controller.Controller, in io.Reader, out io.Writer) *App {
	return &App{ctrl: ctrl, reader: bufio.NewReader(in), out: out}
}

// Run restores any stored session and then blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to taskgate (type 'help' for commands)")

	if err := a.ctrl.Start(ctx); err != nil {
		return err
	}
	if a.isLoggedIn() {
		a.printf("Signed in as %s\n", a.ctrl.State().User.Name)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// Start restores a stored session without entering the REPL.
func (a *App) Start(ctx context.Context) error {
	return a.ctrl.Start(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.State().Authenticated()
}

func (a *App) getStatus() string {
	s := a.ctrl.State()
	if s.User == nil {
		return "(" + string(s.View) + ")"
	}
	return fmt.Sprintf("(%s)", s.User.Email)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints the controller's user-facing error, falling back to err.
func (a *App) report(err error) error {
	if errors.Is(err, common.ErrorUnauthorized) {
		a.printf("Please log in first\n")
		return err
	}
	if msg := a.ctrl.State().Error; msg != "" {
		a.printf("Error: %s\n", msg)
	} else {
		a.printf("Error: %v\n", err)
	}
	return err
}
