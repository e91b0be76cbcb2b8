// cmd/roster/main.go
//
// Entry point for the roster admin TUI.
//
// Flow:
// 1. Resolve the working directory and make sure .roster/ exists
// 2. Load config.yaml (plus ROSTER_* env overrides)
// 3. Wire logging, the id strategy and the HTTP store client
// 4. Run the employee list until the user quits

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kingrea/roster/internal/config"
	"github.com/kingrea/roster/internal/employee"
	"github.com/kingrea/roster/internal/logging"
	"github.com/kingrea/roster/internal/store"
	"github.com/kingrea/roster/internal/tui"
)

func main() {
	projectDir := flag.String("dir", "", "directory holding .roster/ (defaults to cwd)")
	storeURL := flag.String("store", "", "employee store base URL (overrides config)")
	flag.Parse()

	dir := *projectDir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		die("resolve directory: %v", err)
	}
	if err := config.InitRosterDir(dir); err != nil {
		die("init .roster: %v", err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		die("load config: %v", err)
	}
	if override := strings.TrimSpace(*storeURL); override != "" {
		if err := cfg.SetStoreURL(override); err != nil {
			die("-store: %v", err)
		}
	}

	logger, journal, flush := logging.New(logging.OptionsFromConfig(cfg))
	defer flush()

	newID, err := employee.GeneratorFor(employee.IDStrategy(cfg.IDStrategy()))
	if err != nil {
		die("id strategy: %v", err)
	}
	client := store.NewClient(cfg.StoreURL(),
		store.WithTimeout(cfg.StoreTimeout()),
		store.WithLogger(logger.Named("store")),
	)
	logger.Info("roster starting",
		zap.String("store", client.BaseURL()),
		zap.String("ids", cfg.IDStrategy()),
		zap.Duration("timeout", cfg.StoreTimeout()))

	app := tui.NewApp(client,
		tui.WithLogger(logger.Named("tui")),
		tui.WithJournal(journal),
		tui.WithIDGenerator(newID),
	)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		flush()
		die("run TUI: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "roster: "+format+"\n", args...)
	os.Exit(1)
}
