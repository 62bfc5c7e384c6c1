package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/cache"
	"github.com/ldellis/rolo/internal/config"
	"github.com/ldellis/rolo/internal/engine"
	"github.com/ldellis/rolo/internal/seal"
	"github.com/ldellis/rolo/internal/store"
	"github.com/ldellis/rolo/internal/tui"
)

// emailIndexFile is the email index database inside the cache dir.
const emailIndexFile = "emails.db"

// runtimeOptions selects the optional collaborators a command needs.
type runtimeOptions struct {
	// Sealing wires the card sealer. Commands that never touch card
	// payloads leave it off so a missing key does not block them.
	Sealing bool

	// Progress shows the loader surface when stderr is a terminal.
	Progress bool
}

// runtime is the assembled engine plus the adapters commands talk to
// directly.
type runtime struct {
	Engine   *engine.Engine
	Store    *store.Client
	Snapshot *cache.Snapshot
	Emails   *cache.EmailIndex

	cleanups []func()
}

// Close releases runtime resources in reverse build order.
func (r *runtime) Close() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
	r.cleanups = nil
}

// buildRuntime assembles the engine and its adapters from the global
// configuration. The caller owns the returned runtime and must Close
// it.
func buildRuntime(cmd *cobra.Command, opts runtimeOptions) (*runtime, error) {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	if err := config.EnsureSubDirs(); err != nil {
		return nil, err
	}

	client := store.NewClient(cfg.Store.BaseURL, &http.Client{
		Timeout: time.Duration(cfg.Store.TimeoutSeconds) * time.Second,
	})
	if cfg.Store.PageSize > 0 {
		client.PageSize = cfg.Store.PageSize
	}
	client.MinVersion = cfg.Store.MinVersion
	if client.MinVersion != "" {
		if err := client.CheckVersion(ctx); err != nil {
			return nil, fmt.Errorf("store version check: %w", err)
		}
	}

	cacheDir, err := config.GetCacheDir()
	if err != nil {
		return nil, err
	}
	ttl := cache.DefaultTTL
	if cfg.Cache.TTL != "" {
		ttl, err = cache.ParseTTL(cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("cache TTL: %w", err)
		}
	}
	snapshot, err := cache.NewSnapshot(cacheDir, ttl)
	if err != nil {
		return nil, err
	}
	emails, err := cache.NewEmailIndex(filepath.Join(cacheDir, emailIndexFile))
	if err != nil {
		return nil, err
	}

	rt := &runtime{Store: client, Snapshot: snapshot, Emails: emails}
	rt.cleanups = append(rt.cleanups, func() {
		if closeErr := emails.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Str("component", "cli").Msg("email index close failed")
		}
	})

	engCfg := engine.Config{
		Store:     client,
		Syncer:    client,
		Notifier:  printNotifier{out: cmd.OutOrStdout()},
		Confirmer: promptConfirmer{in: cmd.InOrStdin(), out: cmd.ErrOrStderr(), interactive: isTerminal(os.Stdin)},
		Bus:       &eventPrinter{snapshot: snapshot},
		Tracker:   logTracker{},
		Navigator: logNavigator{},
		Caches:    []engine.ContactCache{snapshot, emails},
	}

	if opts.Sealing {
		sealer, sealErr := buildSealer(cfg)
		if sealErr != nil {
			rt.Close()
			return nil, sealErr
		}
		engCfg.Encryptor = sealer
	}

	if opts.Progress && isTerminal(os.Stderr) {
		loader := tui.NewLoader(tea.WithOutput(os.Stderr))
		engCfg.Loader = loader
		engCfg.ProgressListeners = []engine.ProgressFunc{loader.Progress}
	}

	eng, err := engine.New(engCfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Engine = eng

	return rt, nil
}

// buildSealer resolves the configured sealing key into a card sealer.
func buildSealer(cfg *config.Config) (*seal.Sealer, error) {
	encoded, err := cfg.Seal.ResolveKey()
	if err != nil {
		return nil, fmt.Errorf(
			"%w: set seal.key or seal.key_file in the config, or pass --no-seal to import cards as-is", err)
	}
	key, err := seal.ParseKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("seal key: %w", err)
	}
	return seal.New(key)
}
