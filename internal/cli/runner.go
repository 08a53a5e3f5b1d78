package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/bingo/internal/auth"
	"github.com/Makepad-fr/bingo/internal/client"
	"github.com/Makepad-fr/bingo/internal/config"
	"github.com/Makepad-fr/bingo/internal/model"
	"github.com/Makepad-fr/bingo/internal/server"
	"github.com/Makepad-fr/bingo/internal/store/jsonstore"
	"github.com/Makepad-fr/bingo/internal/tui"
	"github.com/Makepad-fr/bingo/internal/ui"
)

// Options carry the resolved configuration plus root flag overrides.
type Options struct {
	Config  config.Config
	Persist bool // save the card on quit from play when it changed
	Logger  *log.Logger
	Out     io.Writer
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Logger == nil {
		opt.Logger = log.StandardLogger()
	}
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "play":
		return doPlay(ctx, opt)

	case "show":
		return doShow(opt)

	case "export":
		return doExport(opt)

	case "done", "undone":
		if len(a) != 2 {
			ui.Fail("usage: bingo " + cmd + " <row> <col>")
			return 2
		}
		row, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail(cmd + ": not a number: " + a[0])
			return 2
		}
		col, err := strconv.Atoi(a[1])
		if err != nil {
			ui.Fail(cmd + ": not a number: " + a[1])
			return 2
		}
		return doMark(opt, row, col, cmd == "done")

	case "serve":
		return doServe(ctx, opt)

	case "remote":
		return doRemote(ctx, opt)

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: bingo auth <login|logout|status>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin()
		case "logout":
			return doAuthLogout()
		case "status":
			return doAuthStatus(opt)
		default:
			ui.Fail("usage: bingo auth <login|logout|status>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	ui.Hint("run `bingo help` for the list of subcommands")
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`bingo - a checklist bingo card

Usage:
  bingo [flags] <subcommand> [args]

Subcommands:
  play               Play the card in an interactive grid
  show               Print the card
  export             Print the card as a name -> done JSON object
  done <row> <col>   Mark a cell done in the data file (0-based)
  undone <row> <col> Mark a cell not done in the data file
  serve              Serve the card over HTTP
  remote             Play a card fetched from a bingo server
  auth <login|logout|status>   Token for remote

Flags:
  -data <file>       Card file (default: bundled card, or BINGO_DATA)
  -grid <n>          Grid side length (default 8, or BINGO_GRID_SIZE)
  -theme <name>      classic, neon or mono
  -color <mode>      auto, always or never (auto honours NO_COLOR)
  -persist           Save changes made in play

Examples:
  bingo play
  bingo -data card.json done 0 3
  bingo serve
`)
}

func (o Options) store() *jsonstore.Store {
	return jsonstore.New(o.Config.DataPath, o.Config.GridSize)
}

// -------------- subcommand impls ----------------

func doPlay(ctx context.Context, opt Options) int {
	st := opt.store()
	if opt.Persist && st.Path() == "" {
		ui.Fail(jsonstore.ErrReadOnly.Error())
		return 2
	}
	logger, closeLog, err := tuiLogger(opt)
	if err != nil {
		ui.Fail("log file: " + err.Error())
		return 1
	}
	defer closeLog()

	res, err := tui.Run(ctx, st.Game, tui.Options{LongPress: opt.Config.LongPress, Logger: logger})
	if err != nil {
		ui.Fail("play: " + err.Error())
		return 1
	}
	if opt.Persist && res.Changed {
		if err := st.Save(res.Game); err != nil {
			ui.Fail("save: " + err.Error())
			return 1
		}
		ui.OK("saved")
	}
	return 0
}

func doRemote(ctx context.Context, opt Options) int {
	token := ""
	ti, err := auth.GetToken()
	if err != nil {
		opt.Logger.WithError(err).Warn("ignoring unreadable credentials")
	} else if ti != nil {
		token = ti.Token
	}
	logger, closeLog, err := tuiLogger(opt)
	if err != nil {
		ui.Fail("log file: " + err.Error())
		return 1
	}
	defer closeLog()

	c := client.New(opt.Config.ServerURL, token, nil)
	if _, err := tui.Run(ctx, c.FetchGame, tui.Options{
		Title:     "Bingo @ " + opt.Config.ServerURL,
		LongPress: opt.Config.LongPress,
		Logger:    logger,
	}); err != nil {
		ui.Fail("remote: " + err.Error())
		return 1
	}
	return 0
}

func doShow(opt Options) int {
	g, err := opt.store().Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	t := ui.Current()
	d, p := g.Stats()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Bingo"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymUnchecked), p,
		ui.C(t.Accent, "Total"), g.Len(),
	)
	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)), ""}
	lines = append(lines, gridLines(g, 14)...)
	ui.Panel(opt.Out, lines)
	return 0
}

func doExport(opt Options) int {
	g, err := opt.store().Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	fmt.Fprintln(opt.Out, string(g.Save()))
	return 0
}

func doMark(opt Options, row, col int, done bool) int {
	st := opt.store()
	if st.Path() == "" {
		ui.Fail(jsonstore.ErrReadOnly.Error())
		return 2
	}
	g, err := st.Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	// The model only checks the linear index, so out-of-grid coordinates
	// are rejected here before they can alias another cell.
	n := g.GridSize()
	if row < 0 || row >= n || col < 0 || col >= n {
		ui.Fail(fmt.Sprintf("cell out of range: grid is %dx%d, got (%d, %d)", n, n, row, col))
		return 2
	}
	if err := g.SetItemCompleted(row, col, done); err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			ui.Fail(err.Error())
			ui.Hint("run `bingo show` to see populated cells")
			return 2
		}
		ui.Fail(err.Error())
		return 1
	}
	if err := st.Save(g); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	if done {
		ui.OK("done")
	} else {
		ui.OK("undone")
	}
	return 0
}

func doServe(ctx context.Context, opt Options) int {
	st := opt.store()
	if _, err := st.Load(); err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	e := server.New(st, server.Options{Token: opt.Config.ServerToken, StaticDir: opt.Config.StaticDir}, opt.Logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			opt.Logger.WithError(err).Error("shutdown")
		}
	}()

	opt.Logger.WithField("addr", opt.Config.Addr).Info("bingo server starting")
	if err := e.Start(opt.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		opt.Logger.WithError(err).Error("server stopped")
		return 1
	}
	return 0
}

// -------------- auth ----------------

func doAuthLogin() int {
	fmt.Print("Paste your token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		ui.Fail("read token: " + err.Error())
		return 1
	}
	if err := auth.SetToken(token); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout() int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by BINGO_TOKEN env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus(opt Options) int {
	ti, err := auth.GetToken()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if ti == nil {
		fmt.Fprintln(opt.Out, ui.C(ui.Current().Muted, "not logged in"))
		fmt.Fprintln(opt.Out, "Run: bingo auth login")
		return 0
	}
	fmt.Fprintf(opt.Out, "source: %s\n", ti.Source)
	if !ti.CreatedAt.IsZero() {
		fmt.Fprintf(opt.Out, "saved: %s\n", ti.CreatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(opt.Out, "server: %s\n", opt.Config.ServerURL)
	fmt.Fprintln(opt.Out, "env override: BINGO_TOKEN")
	return 0
}

// -------------- helpers --------------

// tuiLogger keeps log output off the alternate screen.
func tuiLogger(opt Options) (*log.Logger, func(), error) {
	l := log.New()
	l.SetLevel(opt.Logger.GetLevel())
	if opt.Config.LogFile == "" {
		l.SetOutput(io.Discard)
		return l, func() {}, nil
	}
	f, err := os.OpenFile(opt.Config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l.SetOutput(f)
	return l, func() { f.Close() }, nil
}

func gridLines(g *model.Game, width int) []string {
	t := ui.Current()
	box := ui.VisibleWidth(t.BoxChecked)
	n := g.GridSize()
	lines := make([]string, 0, n)
	for row := 0; row < n; row++ {
		line := ui.C(ui.Dim, fmt.Sprintf("%2d", row))
		for col := 0; col < n; col++ {
			it, ok := g.Item(row, col)
			switch {
			case !ok:
				line += " " + ui.C(t.Muted, pad(t.SymEmpty, box)+" "+ui.Cell("", width))
			case it.Done:
				line += " " + ui.C(t.Success, t.BoxChecked+" "+ui.Cell(it.Name, width))
			default:
				line += " " + t.BoxUnchecked + " " + ui.Cell(it.Name, width)
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// pad right-fills s with spaces to width columns.
func pad(s string, width int) string {
	if w := ui.VisibleWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
