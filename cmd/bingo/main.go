package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/bingo/internal/cli"
	"github.com/Makepad-fr/bingo/internal/config"
	"github.com/Makepad-fr/bingo/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(2)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	// Root flags (apply to every subcommand)
	dataPath := flag.String("data", cfg.DataPath, "card file (name -> done JSON object)")
	gridSize := flag.Int("grid", cfg.GridSize, "grid side length")
	theme := flag.String("theme", "classic", "output theme: classic, neon or mono")
	color := flag.String("color", "auto", "color output: auto, always or never")
	persist := flag.Bool("persist", false, "save changes made in play to the card file")
	flag.Parse()

	if *gridSize <= 0 {
		ui.Fail(fmt.Sprintf("invalid -grid %d: must be greater than zero", *gridSize))
		os.Exit(2)
	}
	if err := ui.SetColorMode(*color); err != nil {
		ui.Fail("invalid -color: " + err.Error())
		os.Exit(2)
	}
	if !ui.SetTheme(*theme) {
		ui.Fail("unknown theme: " + *theme)
		os.Exit(2)
	}
	cfg.DataPath, cfg.GridSize = *dataPath, *gridSize

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, args, cli.Options{
		Config:  cfg,
		Persist: *persist,
		Logger:  log.StandardLogger(),
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
