package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/neuralart/internal/client/routes"
)

const privacyText = `We store your email, a hash of your password and the images you upload
or generate. Images are kept until you delete them from your library.
Your session is kept in a cookie or a locally stored token; logging out
removes it.`

// Notices lists the messages currently on the board.
func (a *App) Notices(_ context.Context) error {
	ns := a.notices.Active()
	if len(ns) == 0 {
		printlnFn("No notices.")
		return nil
	}
	for _, line := range noticeLines(ns) {
		printlnFn(line)
	}
	return nil
}

func (a *App) Dismiss(_ context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: dismiss <n>", errUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: invalid notice %q", errUsage, args[0])
	}
	if !a.notices.Dismiss(n) {
		printlnFn("No such notice.")
	}
	return nil
}

func (a *App) Home(_ context.Context) error {
	if !a.visit(routes.Home) {
		return nil
	}
	printlnFn(title("Turn your photos into art."))
	printlnFn("Type 'signup' to create an account or 'login' if you have one.")
	return nil
}

func (a *App) Privacy(_ context.Context) error {
	a.visit(routes.Privacy)
	printlnFn(title("Privacy"))
	printlnFn(privacyText)
	return nil
}
