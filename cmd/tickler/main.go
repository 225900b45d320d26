package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanvo/tickler/internal/alert"
	"github.com/hanvo/tickler/internal/credential"
	"github.com/hanvo/tickler/internal/logging"
	"github.com/hanvo/tickler/internal/model"
	"github.com/hanvo/tickler/internal/remote"
	"github.com/hanvo/tickler/internal/session"
	"github.com/hanvo/tickler/internal/store"
	"github.com/hanvo/tickler/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tickler: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := model.DefaultConfigPath()
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is not configured; edit %s", configPath)
	}

	log, logFile, err := logging.New(filepath.Dir(configPath), cfg.LogLevel)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	token, err := credential.APIToken()
	if err != nil {
		log.Warn().Err(err).Msg("no API token found, calling unauthenticated")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LedgerPath), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	ledger, err := store.OpenLedger(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	client := remote.NewClient(cfg.BaseURL, token)
	sess := session.New(cfg, client, ledger, &alert.Briefing{}, log)

	if err := sess.Start(context.Background()); err != nil {
		// The session runs with an empty set until a refresh succeeds.
		log.Warn().Err(err).Msg("initial fetch failed")
	}
	defer sess.Stop()

	program := tea.NewProgram(ui.New(sess, cfg.Sector), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}

	return nil
}
