package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amirasaad/fxwidget/infra/initializer"
	"github.com/amirasaad/fxwidget/pkg/app"
	"github.com/amirasaad/fxwidget/pkg/config"
	log "github.com/charmbracelet/log"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		return 1
	}

	// Keep the terminal for results unless a level was asked for.
	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		cfg.Log.Level = int(log.WarnLevel)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize:", err)
		return 1
	}
	defer deps.Close() //nolint: errcheck

	ctx := context.Background()
	c := newCLI(app.New(deps, cfg).WidgetService, os.Stdout)
	if len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := c.interactive(ctx, os.Stdin); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	return exitCode(c.run(ctx, args))
}
