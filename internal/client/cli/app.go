package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/neuralart/internal/client/artifact"
	"github.com/dmitrijs2005/neuralart/internal/client/client"
	"github.com/dmitrijs2005/neuralart/internal/client/config"
	"github.com/dmitrijs2005/neuralart/internal/client/credentials"
	"github.com/dmitrijs2005/neuralart/internal/client/db"
	"github.com/dmitrijs2005/neuralart/internal/client/guard"
	"github.com/dmitrijs2005/neuralart/internal/client/jobs"
	"github.com/dmitrijs2005/neuralart/internal/client/library"
	"github.com/dmitrijs2005/neuralart/internal/client/notice"
	"github.com/dmitrijs2005/neuralart/internal/client/routes"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
	"github.com/dmitrijs2005/neuralart/internal/client/upload"
	"github.com/dmitrijs2005/neuralart/internal/logging"
)

// App is the interactive client. It owns every long-lived component and
// tracks which route the user is looking at.
type App struct {
	config *config.Config
	logger logging.Logger

	db        *sql.DB
	api       *client.HTTPClient
	session   *session.Store
	poller    *jobs.Poller
	upload    *upload.Coordinator
	library   *library.Controller
	notices   *notice.Board
	downloads *artifact.Downloader

	reader *bufio.Reader
	out    io.Writer

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	view string
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)

	a := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		ctx:    ctx,
		cancel: cancel,
		view:   routes.PublicLanding,
	}

	creds, err := a.openCredentials(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	a.api, err = client.NewHTTPClient(c.ServerURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithCredentials(creds),
		client.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.notices = notice.NewBoard(c.NoticeTTL)
	a.session = session.NewStore(a.api, creds, session.NavigatorFunc(a.navigate), logger)

	a.poller = jobs.NewPoller(a.api, c.PollInterval,
		jobs.WithGate(a.session),
		jobs.WithLogger(logger),
		jobs.WithObserver(a.onJob),
	)
	a.upload = upload.NewCoordinator(ctx, a.api, a.session, a.poller,
		upload.NewPreviewStore(c.PreviewDir), a.notices, logger)
	a.library = library.NewController(ctx, a.api, a.session, a.notices, logger, c.PollInterval)
	a.session.OnChange(a.onSession)

	fetcher, err := a.newFetcher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.downloads = artifact.NewDownloader(fetcher, c.DownloadDir)

	return a, nil
}

// openCredentials picks the credential manager for the configured mode.
// Token mode keeps the token in the local database.
func (a *App) openCredentials(ctx context.Context) (credentials.Manager, error) {
	mode, err := credentials.ParseMode(a.config.CredentialMode)
	if err != nil {
		return nil, err
	}
	if mode == credentials.ModeCookie {
		return credentials.NewCookieStore(a.config.ServerURL)
	}

	a.db, err = db.Open(ctx, a.config.DatabasePath)
	if err != nil {
		a.logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	return credentials.NewTokenStore(a.db), nil
}

func (a *App) newFetcher(ctx context.Context) (artifact.Fetcher, error) {
	hf, err := artifact.NewHTTPFetcher(a.config.ServerURL, &http.Client{Timeout: a.config.RequestTimeout})
	if err != nil {
		return nil, err
	}
	router := artifact.Router{HTTP: hf}

	s3cfg := artifact.S3Config(a.config.S3)
	if s3cfg.Enabled() {
		router.S3, err = artifact.NewS3Fetcher(ctx, s3cfg)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
	}
	return router, nil
}

// Run resolves the session, then serves the REPL until the user leaves or
// ctx is cancelled. Everything is disposed on return.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn(title("Neural Art") + " type 'help' for commands")

	// Entry navigation happens while the session is still being checked.
	a.visit(routes.PublicLanding)
	off := a.session.OnChange(func(session.State) { a.recheck() })
	defer off()

	a.session.Init(ctx)
	a.recheck()

	runREPL(ctx, a, a.prompt, a.reader)
}

// Close stops polling, releases previews and closes the database.
func (a *App) Close() {
	if a.upload != nil {
		a.upload.Dispose()
	}
	if a.library != nil {
		a.library.Dispose()
	}
	if a.session != nil {
		a.session.Dispose()
	}
	a.cancel()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "close database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) View() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) setView(path string) {
	a.mu.Lock()
	a.view = routes.Clean(path)
	a.mu.Unlock()
}

func (a *App) state() session.State { return a.session.State() }

// visit navigates to path through the guard. It reports whether the user
// actually landed on path; a redirect prints where they ended up instead.
func (a *App) visit(path string) bool {
	d := guard.Decide(path, a.session.State())
	if d.Allowed() {
		a.setView(path)
		return true
	}
	a.logger.Debug(a.ctx, "navigation redirected", "from", path, "to", d.To)
	a.setView(d.To)
	printlnFn(redirectLine(path, d.To, a.session.State()))
	return false
}

// navigate is the session store's navigator.
func (a *App) navigate(path string) {
	d := guard.Decide(path, a.session.State())
	if !d.Allowed() {
		path = d.To
	}
	a.setView(path)
}

// recheck re-applies the guard to the current view after a session change.
func (a *App) recheck() {
	view := a.View()
	if d := guard.Decide(view, a.session.State()); !d.Allowed() {
		a.setView(d.To)
	}
}

// onSession stops all polling as soon as the session ends, whether by
// logout or because the server rejected a request. It runs on the goroutine
// that changed the state, which may be a poller, so nothing here waits.
func (a *App) onSession(st session.State) {
	if st != session.Unauthenticated {
		return
	}
	a.upload.Suspend()
	a.library.StopWatching()
}

// onJob reports transitions of the job being generated.
func (a *App) onJob(j jobs.Job) {
	printlnFn(jobLine(j))
	if j.Status == jobs.StatusCompleted {
		printlnFn("Type 'download' to save the result.")
	}
}

func (a *App) prompt() string {
	var who string
	switch a.session.State() {
	case session.Checking:
		who = "…"
	case session.Authenticated:
		who = a.session.User().Identity()
	default:
		who = "guest"
	}
	return fmt.Sprintf("neuralart (%s) %s", who, a.View())
}
