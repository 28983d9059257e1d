package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tatianab/blueprince/internal/config"
	"github.com/tatianab/blueprince/internal/cycle"
	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/mcpserver"
	"github.com/tatianab/blueprince/internal/memory"
	"github.com/tatianab/blueprince/internal/oracle"
	"github.com/tatianab/blueprince/internal/perception"
	"github.com/tatianab/blueprince/internal/tui"
)

func main() {
	day := flag.Int("day", 1, "day number for a fresh run")
	load := flag.String("load", "", "snapshot id to resume")
	saveID := flag.String("save", "current", "snapshot id to write")
	scenario := flag.String("scenario", "", "scripted scenario file instead of manual observation")
	resetMemory := flag.Bool("reset-memory", false, "wipe long-term memory before starting")
	mcpAddr := flag.String("mcp", "", "serve MCP on this address instead of the TUI")
	flag.Parse()

	if err := run(*day, *load, *saveID, *scenario, *resetMemory, *mcpAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(day int, load, saveID, scenario string, resetMemory bool, mcpAddr string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	journal, err := memory.Open(cfg.MemoryPath)
	if err != nil {
		return fmt.Errorf("open memory journal: %w", err)
	}
	defer journal.Close()
	if resetMemory {
		if err := journal.Reset(); err != nil {
			return fmt.Errorf("reset memory journal: %w", err)
		}
	}

	store := game.NewFileStore(cfg.SaveDir)

	state := game.NewState(day)
	pendingPhase := ""
	if load != "" {
		snap, err := store.Load(ctx, load)
		if errors.Is(err, game.ErrNotFound) {
			return fmt.Errorf("no saved game named %q", load)
		}
		if err != nil {
			return err
		}
		if err := state.RestoreSnapshot(snap); err != nil {
			return err
		}
		pendingPhase = snap.PendingPhase
	}
	state.SetMemory(journal)

	var observer perception.Observer
	if scenario != "" {
		script, err := perception.LoadScenario(scenario)
		if err != nil {
			return err
		}
		observer = script
	} else {
		observer = &perception.Manual{State: state}
	}

	orc, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("create oracle: %w", err)
	}
	defer orc.Close()

	c := cycle.New(state, store, observer, orc, journal, saveID)

	if pendingPhase != "" {
		// Pick the interrupted cycle back up before handing control to
		// the operator surface.
		if _, err := c.Recover(ctx, pendingPhase); err != nil {
			return fmt.Errorf("recover suspended cycle: %w", err)
		}
	}

	if mcpAddr != "" {
		server := mcpserver.New(c, state, journal)
		return mcpserver.RunHTTP(server, mcpAddr, "/mcp", nil, cfg.MCPToken)
	}
	return tui.Run(c, state)
}
