package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/neuralart/internal/client/client"
	"github.com/dmitrijs2005/neuralart/internal/client/jobs"
	"github.com/dmitrijs2005/neuralart/internal/client/library"
	"github.com/dmitrijs2005/neuralart/internal/client/notice"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
	"github.com/dmitrijs2005/neuralart/internal/client/upload"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badgeStyle  = lipgloss.NewStyle().Bold(true)

	statusColors = map[jobs.Status]lipgloss.Color{
		jobs.StatusIdle:       "8",
		jobs.StatusPending:    "8",
		jobs.StatusUploading:  "12",
		jobs.StatusProcessing: "11",
		jobs.StatusCompleted:  "10",
		jobs.StatusFailed:     "9",
	}
)

func title(s string) string { return titleStyle.Render(s) }

// badge renders a status as a bracketed, colored label.
func badge(s jobs.Status) string {
	st := badgeStyle
	if c, ok := statusColors[s]; ok {
		st = st.Foreground(c)
	}
	return st.Render("[" + s.String() + "]")
}

func jobLine(j jobs.Job) string {
	switch {
	case j.ID == 0:
		return badge(j.Status)
	case j.Status == jobs.StatusCompleted:
		return fmt.Sprintf("Job #%d %s %s", j.ID, badge(j.Status), j.Result)
	case j.Status == jobs.StatusProcessing:
		return fmt.Sprintf("Job #%d %s Processing... this might take a while", j.ID, badge(j.Status))
	default:
		return fmt.Sprintf("Job #%d %s", j.ID, badge(j.Status))
	}
}

func handedOffLine(id int64) string {
	return fmt.Sprintf("Job #%d continues on the server. Check 'library' for its result.", id)
}

func selectionLine(slot upload.Slot, f upload.File, p upload.Preview) string {
	line := fmt.Sprintf("%s image: %s (%s)", slot, f.Name, f.MediaType)
	if p.Path != "" {
		line += mutedStyle.Render(" preview " + p.Path)
	}
	return line
}

// libraryLines renders the gallery; the entry pending deletion is marked.
func libraryLines(entries []library.Entry, pending int64, hasPending bool) []string {
	if len(entries) == 0 {
		return []string{mutedStyle.Render("No images yet. Create your first one with 'content', 'style' and 'generate'.")}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("#%d %s", e.ID, badge(e.Status))
		if e.Completed() {
			line += " " + e.Result
		}
		if hasPending && e.ID == pending {
			line += noticeStyle.Render("  delete? (confirm/cancel)")
		}
		out = append(out, line)
	}
	return out
}

func noticeLines(ns []notice.Notice) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, noticeStyle.Render(fmt.Sprintf("(%d) %s", n.ID, n.Message)))
	}
	return out
}

func redirectLine(from, to string, st session.State) string {
	if st == session.Authenticated {
		return mutedStyle.Render(fmt.Sprintf("You are already signed in; showing %s instead of %s.", to, from))
	}
	return mutedStyle.Render(fmt.Sprintf("Please log in to open %s.", from))
}

// userMessage turns the errors handlers return into what the user reads.
func userMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrPasswordMismatch):
		return "Passwords do not match!"
	case errors.Is(err, client.ErrInvalidCredentials):
		return "Login failed. Check your email and password."
	case errors.Is(err, client.ErrAccountConflict):
		return "Signup failed. Email might already exist."
	case errors.Is(err, session.ErrOperationInProgress):
		return "Please wait for the current request to finish."
	case errors.Is(err, upload.ErrInvalidFileType):
		return upload.InvalidFileMessage
	case errors.Is(err, upload.ErrIncomplete):
		return "Select both a content and a style image first."
	case errors.Is(err, upload.ErrSubmitInProgress):
		return "A submission is already in progress."
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, client.ErrUnauthorized):
		return "Your session has ended. Please log in again."
	case errors.Is(err, client.ErrTransport):
		return "Could not reach the server."
	default:
		return err.Error()
	}
}

func errorLine(err error) string {
	return errorStyle.Render(strings.TrimSpace("Error: " + userMessage(err)))
}
