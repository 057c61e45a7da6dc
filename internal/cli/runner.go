package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/bridge"
	"github.com/Makepad-fr/tada/internal/client"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options tune behavior from root flags.
type Options struct {
	Config *config.Config
	Group  bool      // ls grouped by pending/done
	In     io.Reader // where auth login reads the token, stdin when nil
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Config == nil {
		opt.Config = config.Default()
	}
	if len(args) == 0 {
		args = []string{"ui"}
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ui":
		return doUI(ctx, opt.Config)

	case "serve":
		return doServe(ctx, opt.Config)

	case "ls":
		return doList(ctx, opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: tada add <text...>")
			return 2
		}
		return doAdd(ctx, opt.Config, strings.Join(a, " "))

	case "done", "rm":
		if len(a) != 1 {
			ui.Fail("usage: tada " + cmd + " <id>")
			return 2
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			ui.Fail(cmd + ": not a number: " + a[0])
			return 2
		}
		if cmd == "done" {
			return doToggle(ctx, opt.Config, id)
		}
		return doRemove(ctx, opt.Config, id)

	case "auth":
		if len(a) != 1 {
			ui.Fail("usage: tada auth <login|logout|status>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin(opt.In)
		case "logout":
			return doAuthLogout()
		case "status":
			return doAuthStatus()
		default:
			ui.Fail("usage: tada auth <login|logout|status>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Err)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprint(ui.Out, `tada - a todo list with a backend

Usage:
  tada [flags] <subcommand> [args]

Subcommands:
  ui                 Interactive list (default)
  serve              Run the backend
  ls                 Print every todo
  add <text...>      Add a todo (text can be multiple words)
  done <id>          Flip the status of todo <id>
  rm <id>            Delete todo <id>
  auth <login|logout|status>   Bearer token for the backend

Examples:
  tada serve &
  tada add "Buy milk"
  tada ls
  tada done 2
`)
}

// remote builds the client every one-shot command and the UI share.
func remote(cfg *config.Config, logger *log.Logger) (*client.Client, error) {
	token, err := auth.Token()
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	return client.New(bridge.NewHTTPInvoker(cfg.ClientBase(), token, cfg.Client.Timeout, logger)), nil
}

// describe turns a remote failure into one line for the user.
func describe(err error) string {
	var be *bridge.Error
	if errors.As(err, &be) {
		return be.Cmd + ": " + be.Message
	}
	return err.Error()
}

// -------------- long-running subcommands ----------------

func doUI(ctx context.Context, cfg *config.Config) int {
	logger, closeLog, err := logging.OpenFile(cfg.Log)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer closeLog()

	c, err := remote(cfg, logger)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	logger.Info("ui start", "backend", cfg.ClientBase())
	if err := tui.Run(ctx, c, logger); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		ui.Fail("ui: " + err.Error())
		return 1
	}
	return 0
}

// releaseGin silences gin's debug route dump unless GIN_MODE asks for it.
func releaseGin() {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}

func doServe(ctx context.Context, cfg *config.Config) int {
	releaseGin()
	logger := logging.New(os.Stderr, cfg.Log)

	repo, err := store.Open(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		logger.Error("open store", "kind", cfg.Store.Kind, "path", cfg.Store.Path, "err", err)
		return 1
	}
	defer repo.Close()

	srv, err := server.New(repo, server.Options{Token: cfg.Server.Token, Logger: logger})
	if err != nil {
		logger.Error("build server", "err", err)
		return 1
	}
	logger.Info("store ready", "kind", cfg.Store.Kind, "path", cfg.Store.Path, "auth", cfg.Server.Token != "")
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.Error("serve", "err", err)
		return 1
	}
	return 0
}

// -------------- one-shot subcommands ----------------

func doList(ctx context.Context, opt Options) int {
	c, err := remote(opt.Config, nil)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	todos, err := c.GetTodos(ctx)
	if err != nil {
		ui.Fail("ls: " + describe(err))
		return 1
	}

	d, p := stats(todos)
	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymUnchecked), p,
		ui.C(t.Accent, "Total"), len(todos),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")
	if opt.Group {
		lines = append(lines, groupLines(todos)...)
	} else {
		lines = append(lines, flatLines(todos)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `tada add \"Buy milk\"`"))
	ui.Panel(lines)
	return 0
}

func doAdd(ctx context.Context, cfg *config.Config, text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		ui.Fail("add: empty text")
		return 2
	}
	c, err := remote(cfg, nil)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if err := c.AddTodo(ctx, text); err != nil {
		ui.Fail("add: " + describe(err))
		return 1
	}
	ui.OK("added")
	return 0
}

func doToggle(ctx context.Context, cfg *config.Config, id int64) int {
	c, err := remote(cfg, nil)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	todos, err := c.GetTodos(ctx)
	if err != nil {
		ui.Fail("done: " + describe(err))
		return 1
	}
	for _, t := range todos {
		if t.ID != id {
			continue
		}
		t.Status = t.Status.Toggle()
		if err := c.UpdateTodo(ctx, t); err != nil {
			ui.Fail("done: " + describe(err))
			return 1
		}
		ui.OK(fmt.Sprintf("#%d is now %s", id, t.Status))
		return 0
	}
	ui.Fail(fmt.Sprintf("no todo with id %d", id))
	fmt.Fprintln(ui.Err, ui.Dim("Hint: run `tada ls` to see ids"))
	return 2
}

func doRemove(ctx context.Context, cfg *config.Config, id int64) int {
	c, err := remote(cfg, nil)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if err := c.DeleteTodo(ctx, id); err != nil {
		ui.Fail("rm: " + describe(err))
		return 1
	}
	ui.OK("removed")
	return 0
}

// -------------- auth subcommands ----------------

func doAuthLogin(in io.Reader) int {
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(ui.Out, "Paste your token: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(ui.Out)
		ui.Fail("read token: " + err.Error())
		return 1
	}
	if err := auth.SetToken(line); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout() int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by TADA_TOKEN env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus() int {
	ti, err := auth.GetToken()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if ti == nil {
		fmt.Fprintln(ui.Out, ui.Dim("not logged in"))
		fmt.Fprintln(ui.Out, "Run: tada auth login")
		return 0
	}
	fmt.Fprintf(ui.Out, "source: %s\n", ti.Source)
	if !ti.CreatedAt.IsZero() {
		fmt.Fprintf(ui.Out, "saved: %s\n", ti.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	fmt.Fprintln(ui.Out, "env override: TADA_TOKEN")
	return 0
}

// -------------- rendering helpers --------------

func stats(todos []model.Todo) (done, pending int) {
	for _, t := range todos {
		if t.Done() {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(todos []model.Todo) []string {
	t := ui.Current()
	if len(todos) == 0 {
		return []string{ui.C(t.Muted, "no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		box, color := t.BoxUnchecked, t.Muted
		if td.Done() {
			box, color = t.BoxChecked, t.Success
		}
		text := td.Description
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.Dim(fmt.Sprintf("%3d.", td.ID)), ui.C(color, box), text))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Done() {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	t := ui.Current()
	var lines []string
	lines = append(lines, ui.C(t.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
