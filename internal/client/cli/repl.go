package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/neuralart/internal/client/session"
	"github.com/dmitrijs2005/neuralart/internal/client/upload"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// commander is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a recording stub.
type commander interface {
	state() session.State
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Select(ctx context.Context, slot upload.Slot, args []string) error
	Generate(ctx context.Context) error
	Status(ctx context.Context) error
	Download(ctx context.Context, args []string) error
	Reset(ctx context.Context) error
	Library(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Confirm(ctx context.Context) error
	Cancel(ctx context.Context) error
	Notices(ctx context.Context) error
	Dismiss(ctx context.Context, args []string) error
	Home(ctx context.Context) error
	Privacy(ctx context.Context) error
}

const (
	guestHelp = "Available commands: signup, login, privacy, notices, help, exit"
	userHelp  = "Available commands: content <file>, style <file>, generate, status, download [id], reset, " +
		"(l)ibrary, delete <id>, confirm, cancel, notices, dismiss <n>, privacy, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// Errors returned by handlers are shown to the user and never end the
// loop. It returns on EOF, on "exit" or "quit", or when ctx is done.
//
// The prompt shows statusFn's output: who is signed in and the current
// route.
func runREPL(ctx context.Context, a commander, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("%s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			switch a.state() {
			case session.Authenticated:
				printlnFn(userHelp)
			case session.Checking:
				printlnFn("Checking your session...")
			default:
				printlnFn(guestHelp)
			}

		case "signup", "register":
			cmdErr = a.Signup(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "content":
			cmdErr = a.Select(ctx, upload.SlotContent, args)

		case "style":
			cmdErr = a.Select(ctx, upload.SlotStyle, args)

		case "generate", "g":
			cmdErr = a.Generate(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "download":
			cmdErr = a.Download(ctx, args)

		case "reset":
			cmdErr = a.Reset(ctx)

		case "l", "library":
			cmdErr = a.Library(ctx)

		case "delete":
			cmdErr = a.Delete(ctx, args)

		case "confirm", "y":
			cmdErr = a.Confirm(ctx)

		case "cancel", "n":
			cmdErr = a.Cancel(ctx)

		case "notices":
			cmdErr = a.Notices(ctx)

		case "dismiss":
			cmdErr = a.Dismiss(ctx, args)

		case "home":
			cmdErr = a.Home(ctx)

		case "privacy":
			cmdErr = a.Privacy(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(errorLine(cmdErr))
		}
	}
}
