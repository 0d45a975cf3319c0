package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/neuralart/internal/client/jobs"
	"github.com/dmitrijs2005/neuralart/internal/client/routes"
	"github.com/dmitrijs2005/neuralart/internal/client/upload"
)

// DownloadFailedMessage is the notice shown when saving a result fails.
const DownloadFailedMessage = "Could not download the image"

var errUsage = errors.New("usage")

// Select reads the file named by args into slot.
func (a *App) Select(_ context.Context, slot upload.Slot, args []string) error {
	if !a.visit(routes.Generate) {
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: %s <file>", errUsage, slot)
	}
	path := strings.Join(args, " ")

	if err := a.upload.SelectPath(slot, path); err != nil {
		return err
	}
	f, p, _ := a.upload.Selected(slot)
	printlnFn(selectionLine(slot, f, p))
	if a.upload.CanSubmit() {
		printlnFn("Ready. Type 'generate' to create your image.")
	}
	return nil
}

// Generate submits the selected pair. Progress is reported as the job
// moves on.
func (a *App) Generate(ctx context.Context) error {
	if !a.visit(routes.Generate) {
		return nil
	}
	if err := a.upload.Ready(); err != nil {
		return err
	}
	printlnFn(badge(jobs.StatusUploading) + " Uploading images...")
	id, err := a.upload.Submit(ctx)
	if err != nil {
		if j, ok := a.upload.Job(); ok && j.Status == jobs.StatusFailed {
			printlnFn(jobLine(j))
		}
		return err
	}
	printlnFn(jobLine(jobs.Job{ID: id, Status: jobs.StatusProcessing}))
	return nil
}

// Status shows the state of the current job.
func (a *App) Status(_ context.Context) error {
	if !a.visit(routes.Generate) {
		return nil
	}
	for _, slot := range []upload.Slot{upload.SlotContent, upload.SlotStyle} {
		if f, p, ok := a.upload.Selected(slot); ok {
			printlnFn(selectionLine(slot, f, p))
		}
	}
	j, ok := a.upload.Job()
	if !ok {
		if id, handed := a.upload.HandedOff(); handed {
			printlnFn(handedOffLine(id))
			return nil
		}
		printlnFn(badge(jobs.StatusIdle) + " No job yet.")
		return nil
	}
	printlnFn(jobLine(j))
	return nil
}

// Download saves a finished result. Without an id it saves the current
// job's result; with one it saves that library entry.
func (a *App) Download(ctx context.Context, args []string) error {
	var (
		id  int64
		ref string
	)
	if len(args) == 0 {
		if !a.visit(routes.Generate) {
			return nil
		}
		j, ok := a.upload.Job()
		if !ok || j.Status != jobs.StatusCompleted {
			printlnFn("Nothing to download yet.")
			return nil
		}
		id, ref = j.ID, j.Result
	} else {
		if !a.visit(routes.Library) {
			return nil
		}
		var err error
		if id, err = parseID(args); err != nil {
			return err
		}
		e, ok := a.library.Entry(id)
		if !ok {
			if _, err := a.library.List(ctx); err != nil {
				return err
			}
			e, ok = a.library.Entry(id)
		}
		if !ok || !e.Completed() {
			printlnFn(fmt.Sprintf("Image #%d is not ready.", id))
			return nil
		}
		ref = e.Result
	}

	path, err := a.downloads.Save(ctx, id, ref)
	if err != nil {
		a.notices.Push(DownloadFailedMessage)
		a.logger.Warn(ctx, "download result", "id", id, "error", err)
		return fmt.Errorf("%s: %w", DownloadFailedMessage, err)
	}
	printlnFn("Saved", path)
	return nil
}

// Reset clears both images and the job.
func (a *App) Reset(_ context.Context) error {
	if !a.visit(routes.Generate) {
		return nil
	}
	a.upload.Reset()
	printlnFn("Selection cleared.")
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: missing image id", errUsage)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid image id %q", errUsage, args[0])
	}
	return id, nil
}
