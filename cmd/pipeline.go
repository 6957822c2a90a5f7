package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/commishdev/commish/internal/ai"
	"github.com/commishdev/commish/internal/cache"
	"github.com/commishdev/commish/internal/exec"
	"github.com/commishdev/commish/internal/knowledge"
	"github.com/commishdev/commish/internal/orchestrator"
	"github.com/commishdev/commish/internal/platform"
	"github.com/commishdev/commish/internal/query"
	"github.com/commishdev/commish/internal/store"
	"github.com/commishdev/commish/internal/synth"
	"github.com/commishdev/commish/internal/usage"
	"github.com/spf13/viper"
)

// pipeline bundles everything one CLI session needs. Close flushes the
// usage ledger and releases the store.
type pipeline struct {
	orch   *orchestrator.Orchestrator
	store  store.Store
	cache  *cache.QueryCache
	ledger *usage.Ledger
}

func buildPipeline() (*pipeline, error) {
	debug := viper.GetBool("debug")

	// Operators can pin models per provider/tier without touching the main
	// config file.
	if path := viper.GetString("ai.tiers_file"); path != "" {
		if err := ai.LoadTierFile(path); err != nil {
			return nil, fmt.Errorf("failed to load tier config: %w", err)
		}
	}

	st, err := store.NewSQLiteStore(storePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	ledger := usage.NewLedger()
	provider := ai.ResolveProvider()
	client := ai.NewClient(provider, ai.ResolveAPIKey(provider), ledger, debug)

	queryCache := cache.New(
		viper.GetInt("cache.max_size"),
		time.Duration(viper.GetInt("cache.ttl_minutes"))*time.Minute,
		debug,
	)

	commands := loadCorpus(viper.GetString("docs.commands"), debug)
	setupGuide := loadCorpus(viper.GetString("docs.setup_guide"), debug)

	roles := platform.StaticRoles{Commissioners: viper.GetStringSlice("league.commissioners")}
	messenger := platform.NewConsole(os.Stdout)

	orch := orchestrator.New(orchestrator.Config{
		Cache:       queryCache,
		Matcher:     query.NewMatcher(st, debug),
		Executor:    exec.New(st, nil, messenger, nil, roles, debug),
		Synthesizer: synth.New(client, debug),
		Commands:    commands,
		SetupGuide:  setupGuide,
		Debug:       debug,
	})

	return &pipeline{orch: orch, store: st, cache: queryCache, ledger: ledger}, nil
}

func (p *pipeline) Close() error {
	if err := usage.AppendToFile(usagePath(), p.ledger.Records()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to flush usage records: %v\n", err)
	}
	return p.store.Close()
}

// loadCorpus reads a knowledge file; a missing corpus degrades to the
// "not documented" path instead of failing startup.
func loadCorpus(path string, debug bool) *knowledge.Corpus {
	corpus, err := knowledge.LoadFile(path)
	if err != nil {
		if debug {
			fmt.Printf("[corpus] could not load %s: %v\n", path, err)
		}
		return knowledge.Parse("")
	}
	return corpus
}
