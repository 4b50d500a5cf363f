package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/forecast-dashboard/internal/app"
	"github.com/jrsteele09/forecast-dashboard/internal/config"
	ierrors "github.com/jrsteele09/forecast-dashboard/internal/errors"
	"github.com/jrsteele09/forecast-dashboard/router"
	"github.com/jrsteele09/forecast-dashboard/session"
	"github.com/rs/zerolog/log"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitNotSignedIn = 3 // the command needs a session and there is none
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *cliEnv, args []string) int
}

type cliEnv struct {
	app *app.App
	in  io.Reader
	out io.Writer
}

var commands = []command{
	{"login", "login [-u USER] [-p PASSWORD]   sign in (prompts for missing values)", runLogin},
	{"logout", "logout                          end the session", runLogout},
	{"whoami", "whoami [-refresh]               show the signed-in user", runWhoami},
	{"view", "view                            list the latest forecast rows", runView},
	{"upload", "upload FILE                     replace the forecast with a CSV file", runUpload},
	{"open", "open PATH                       navigate to a route and print where you land", runOpen},
	{"banner", "banner                          print the application banner", runBanner},
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "usage: dashboard <command> [arguments]")
	fmt.Fprintln(out)
	for _, c := range commands {
		fmt.Fprintf(out, "  %s\n", c.usage)
	}
}

// run executes one CLI command and returns the process exit code.
func run(ctx context.Context, cfg config.Config, args []string, in io.Reader, out io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		usage(out)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(out, "unknown command %q\n\n", args[0])
		usage(out)
		return exitUsage
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return exitFailure
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Err(err).Msg("failed to close app")
		}
	}()

	return cmd.run(ctx, &cliEnv{app: a, in: in, out: out}, args[1:])
}

// enter navigates to path and reports whether the guard let us in.
func (e *cliEnv) enter(path string) bool {
	rt, err := e.app.Router.Push(path)
	if err != nil {
		fmt.Fprintf(e.out, "error: %v\n", err)
		return false
	}
	if rt.Path != path {
		if rt.Path == router.PathLogin {
			fmt.Fprintln(e.out, "not signed in, run: dashboard login")
		} else {
			fmt.Fprintf(e.out, "redirected to %s\n", rt.Path)
		}
		return false
	}
	return true
}

func runLogin(ctx context.Context, e *cliEnv, args []string) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(e.out)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	reader := bufio.NewReader(e.in)
	if *username == "" {
		*username = prompt(e.out, reader, "Username: ")
	}
	if *password == "" {
		*password = prompt(e.out, reader, "Password: ")
	}

	e.app.Session.Login(ctx, session.Credentials{Identifier: *username, Secret: *password})
	if msg := e.app.Session.ErrorMessage(); msg != "" {
		fmt.Fprintf(e.out, "login failed: %s\n", msg)
		return exitFailure
	}
	if !e.app.Session.IsAuthenticated() {
		fmt.Fprintln(e.out, "login failed")
		return exitFailure
	}
	fmt.Fprintf(e.out, "signed in as %s\n", e.app.Session.User().Username)
	return exitOK
}

func prompt(out io.Writer, r *bufio.Reader, label string) string {
	fmt.Fprint(out, label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func runLogout(ctx context.Context, e *cliEnv, _ []string) int {
	e.app.Session.Logout(ctx)
	fmt.Fprintln(e.out, "signed out")
	return exitOK
}

func runWhoami(ctx context.Context, e *cliEnv, args []string) int {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(e.out)
	refresh := fs.Bool("refresh", false, "fetch the profile from the server")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *refresh {
		e.app.Session.FetchUser(ctx)
	}
	u := e.app.Session.User()
	if !e.app.Session.IsAuthenticated() || u == nil {
		fmt.Fprintln(e.out, "not signed in")
		return exitNotSignedIn
	}
	fmt.Fprintf(e.out, "%s (%s)\n", u.Username, u.Role)
	return exitOK
}

func runView(ctx context.Context, e *cliEnv, _ []string) int {
	if !e.enter(router.PathDashboard) {
		return exitNotSignedIn
	}

	rows, err := e.app.Forecast.View(ctx)
	if err != nil {
		return reportAPIError(e.out, err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(e.out, "no forecast data")
		return exitOK
	}

	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tPERIOD\tCALLS\tAHT\tFTE\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.1f\t%.1f\t\n", r.Date, r.Period, r.CallsForecast, r.AHTForecast, r.FTERequired)
	}
	if err := tw.Flush(); err != nil {
		return exitFailure
	}
	return exitOK
}

func runUpload(ctx context.Context, e *cliEnv, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(e.out, "usage: dashboard upload FILE")
		return exitUsage
	}
	if !e.enter(router.PathUpload) {
		return exitNotSignedIn
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(e.out, "error: %v\n", err)
		return exitFailure
	}
	defer f.Close()

	res, err := e.app.Forecast.Upload(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return reportAPIError(e.out, err)
	}
	fmt.Fprintf(e.out, "%s (%d rows)\n", res.Message, res.Rows)
	return exitOK
}

func runOpen(_ context.Context, e *cliEnv, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(e.out, "usage: dashboard open PATH")
		return exitUsage
	}
	rt, err := e.app.Router.Push(args[0])
	if err != nil {
		fmt.Fprintf(e.out, "error: %v\n", err)
		if errors.Is(err, ierrors.ErrRouteNotFound) {
			return exitUsage
		}
		return exitFailure
	}
	fmt.Fprintf(e.out, "%s %s\n", rt.Name, rt.Path)
	return exitOK
}

func runBanner(_ context.Context, e *cliEnv, _ []string) int {
	displayAppname(e.app.Config.GetAppName())
	return exitOK
}

func reportAPIError(out io.Writer, err error) int {
	if errors.Is(err, ierrors.ErrNotAuthenticated) {
		fmt.Fprintln(out, "session expired, run: dashboard login")
		return exitNotSignedIn
	}
	fmt.Fprintf(out, "error: %v\n", err)
	return exitFailure
}
