package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/neuralart/internal/client/jobs"
	"github.com/dmitrijs2005/neuralart/internal/client/library"
	"github.com/dmitrijs2005/neuralart/internal/client/notice"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
)

func TestJobLine(t *testing.T) {
	assert.Equal(t, "[IDLE]", jobLine(jobs.Job{Status: jobs.StatusIdle}))
	assert.Equal(t, "Job #3 [COMPLETED] /output/3.png",
		jobLine(jobs.Job{ID: 3, Status: jobs.StatusCompleted, Result: "/output/3.png"}))
	assert.Contains(t, jobLine(jobs.Job{ID: 3, Status: jobs.StatusProcessing}), "Processing...")
	assert.Equal(t, "Job #3 [FAILED]", jobLine(jobs.Job{ID: 3, Status: jobs.StatusFailed}))
}

func TestLibraryLines(t *testing.T) {
	lines := libraryLines(nil, 0, false)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "No images yet.")

	entries := []library.Entry{
		{ID: 1, Status: jobs.StatusCompleted, Result: "/output/1.png"},
		{ID: 2, Status: jobs.StatusProcessing},
	}
	lines = libraryLines(entries, 2, true)
	require.Len(t, lines, 2)
	assert.Equal(t, "#1 [COMPLETED] /output/1.png", lines[0])
	assert.Contains(t, lines[1], "#2 [PROCESSING]")
	assert.Contains(t, lines[1], "delete? (confirm/cancel)")
}

func TestNoticeLines(t *testing.T) {
	lines := noticeLines([]notice.Notice{{ID: 4, Message: "Could not load your images."}})
	assert.Equal(t, []string{"(4) Could not load your images."}, lines)
}

func TestRedirectLine(t *testing.T) {
	assert.Equal(t, "Please log in to open /library.", redirectLine("/library", "/", session.Unauthenticated))
	assert.Contains(t, redirectLine("/login", "/library", session.Authenticated), "showing /library")
}
