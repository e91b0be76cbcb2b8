// cmd/roster-store/main.go
//
// Runs the development employee store: an in-memory JSON collection served
// over HTTP at /employees, the same contract the TUI's client speaks.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/roster/internal/config"
	"github.com/kingrea/roster/internal/devstore"
	"github.com/kingrea/roster/internal/employee"
	"github.com/kingrea/roster/internal/logging"
)

func main() {
	projectDir := flag.String("dir", "", "directory holding .roster/ (defaults to cwd)")
	seedFile := flag.String("seed", "", "JSON file with an array of employees to preload")
	persist := flag.Bool("persist", false, "keep the collection in .roster/employees.json between runs")
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

	opts := logging.OptionsFromConfig(cfg)
	opts.Filename = filepath.Join(cfg.LogsDir(), "roster-store.log")
	opts.Console = true
	logger, _, flush := logging.New(opts)
	defer flush()

	seed, err := loadSeed(*seedFile)
	if err != nil {
		die("load seed: %v", err)
	}

	var snapshot *devstore.Snapshot
	if *persist {
		snapshot = devstore.NewSnapshot(filepath.Join(cfg.RosterDir, "employees.json"))
		saved, err := snapshot.Load()
		if err != nil {
			die("load snapshot: %v", err)
		}
		// saved records win over the seed file on id collisions
		seed = append(saved, seed...)
	}

	srv := devstore.NewServer(devstore.SettingsFromConfig(cfg),
		devstore.WithMemory(devstore.NewMemory(seed...)),
		devstore.WithSnapshot(snapshot),
		devstore.WithLogger(logger),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		flush()
		die("start store: %v", err)
	}
	logger.Info("dev store ready", zap.String("url", srv.BaseURL()), zap.Int("employees", srv.Memory().Len()))

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func loadSeed(path string) ([]employee.Employee, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed []employee.Employee
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return seed, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "roster-store: "+format+"\n", args...)
	os.Exit(1)
}
