package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/neuralart/internal/client/routes"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
)

// Test seams for interactive input.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errEmptyField = errors.New("value cannot be empty")

func (a *App) askText(prompt string) (string, error) {
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s: %w", strings.ToLower(prompt), errEmptyField)
	}
	return v, nil
}

// Signup asks for an email and the password twice. A mismatch is caught
// locally; on success the new account is signed in.
func (a *App) Signup(ctx context.Context) error {
	if !a.visit(routes.Signup) {
		return nil
	}

	email, err := a.askText("Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	if err := session.CheckPasswords(password, confirm); err != nil {
		return err
	}

	if err := a.session.Signup(ctx, email, password); err != nil {
		a.logger.Info(ctx, "signup failed", "error", err)
		return err
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", a.session.User().Identity()))
	return a.Library(ctx)
}

// Login asks for an email (or username) and password.
func (a *App) Login(ctx context.Context) error {
	if !a.visit(routes.Login) {
		return nil
	}

	identifier, err := a.askText("Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, identifier, password); err != nil {
		a.logger.Info(ctx, "login failed", "error", err)
		return err
	}
	printlnFn(fmt.Sprintf("Logged in as %s", a.session.User().Identity()))
	return a.Library(ctx)
}

// Logout ends the session and drops the current selection.
func (a *App) Logout(ctx context.Context) error {
	if a.session.State() != session.Authenticated {
		printlnFn("You are not logged in.")
		return nil
	}
	a.upload.Reset()
	err := a.session.Logout(ctx)
	printlnFn("Logged out.")
	return err
}
