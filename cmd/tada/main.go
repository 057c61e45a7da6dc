package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	cfgPath := flag.String("config", "", "config file (.toml or .yaml)")
	addr := flag.String("addr", "", "backend address for the client commands")
	theme := flag.String("theme", "", "classic, neon or mono")
	color := flag.String("color", "", "auto, always or never")
	groupPending := flag.Bool("group", false, "group ls output by pending/done")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(2)
	}
	// flags win over file and environment
	if *addr != "" {
		cfg.Client.Addr = *addr
	}
	if *theme != "" {
		cfg.UI.Theme = *theme
	}
	if *color != "" {
		cfg.UI.Color = *color
	}
	ui.SetColorMode(cfg.UI.Color)
	ui.SetTheme(cfg.UI.Theme)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, flag.Args(), cli.Options{
		Config: cfg,
		Group:  *groupPending,
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
