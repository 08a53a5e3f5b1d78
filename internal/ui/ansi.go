package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"
)

// Dim is the faint attribute, for row and column labels.
const Dim = "\033[2m"

var (
	forceColor   bool
	disableColor bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

// SetColorMode applies a -color flag value: auto, always or never.
// auto also honours NO_COLOR.
func SetColorMode(mode string) error {
	switch mode {
	case "", "auto":
		SetColorForcing(false, os.Getenv("NO_COLOR") != "")
	case "always":
		SetColorForcing(true, false)
	case "never":
		SetColorForcing(false, true)
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
	return nil
}

func colorTerminal() bool {
	f, ok := stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// C wraps s in color when stdout is a terminal or color is forced.
func C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || colorTerminal() {
		return color + s + reset
	}
	return s
}

func OK(msg string) {
	t := current
	fmt.Fprintln(stdout, C(t.Success, t.SymDone+" "+msg))
}

func Fail(msg string) {
	t := current
	fmt.Fprintln(stderr, C(t.Error, t.SymFail+" "+msg))
}

// Hint prints a muted follow-up line under a failure.
func Hint(msg string) {
	fmt.Fprintln(stderr, C(current.Muted, "Hint: "+msg))
}
