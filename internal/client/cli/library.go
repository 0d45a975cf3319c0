package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/neuralart/internal/client/routes"
)

// Library loads the gallery and keeps following images still being made.
func (a *App) Library(ctx context.Context) error {
	if !a.visit(routes.Library) {
		return nil
	}
	entries, err := a.library.List(ctx)
	if err != nil {
		return err
	}
	pending, has := a.library.Pending()
	for _, line := range libraryLines(entries, pending, has) {
		printlnFn(line)
	}
	if n := a.library.WatchPending(); n > 0 {
		a.logger.Debug(ctx, "watching running jobs", "count", n)
	}
	return nil
}

// Delete asks for confirmation before anything is sent.
func (a *App) Delete(_ context.Context, args []string) error {
	if !a.visit(routes.Library) {
		return nil
	}
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.library.RequestDelete(id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Delete image #%d? Type 'confirm' or 'cancel'.", id))
	return nil
}

func (a *App) Confirm(ctx context.Context) error {
	if !a.visit(routes.Library) {
		return nil
	}
	id, ok := a.library.Pending()
	if !ok {
		printlnFn("Nothing to confirm.")
		return nil
	}
	removed, err := a.library.ConfirmDelete(ctx)
	if err != nil {
		return err
	}
	if removed {
		printlnFn(fmt.Sprintf("Image #%d deleted.", id))
	}
	return nil
}

func (a *App) Cancel(_ context.Context) error {
	if !a.visit(routes.Library) {
		return nil
	}
	a.library.CancelDelete()
	printlnFn("Cancelled.")
	return nil
}
