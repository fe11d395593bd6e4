// Package cli holds what every command shares: the loaded configuration,
// the store and the services built on it.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/habithero/internal/analytics"
	"github.com/julianstephens/habithero/internal/backup"
	"github.com/julianstephens/habithero/internal/clock"
	"github.com/julianstephens/habithero/internal/config"
	"github.com/julianstephens/habithero/internal/content"
	"github.com/julianstephens/habithero/internal/gamification"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/lock"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/registry"
	"github.com/julianstephens/habithero/internal/storage"
)

// ContentFileName is the optional quotes and suggestions file in the data dir.
const ContentFileName = "content.toml"

type Context struct {
	Config     *config.Config
	ConfigPath string
	Store      storage.Provider
	Clock      clock.Clock
	Locker     lock.Locker
	Log        logger.Logger

	Registry  *registry.Registry
	Ledger    *ledger.Ledger
	Analytics *analytics.Engine
	Engine    *gamification.Engine
	Content   content.Provider

	// Out receives command output. Stdout when nil.
	Out io.Writer
	// In is read for confirmations. Stdin when nil.
	In io.Reader
}

// Options override the defaults NewContext derives from the config.
type Options struct {
	Clock  clock.Clock
	Locker lock.Locker
	Log    logger.Logger
}

// NewContext wires the services for cfg on top of store.
func NewContext(cfg *config.Config, store storage.Provider, opts Options) (*Context, error) {
	clk := opts.Clock
	if clk == nil {
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		clk = clock.Real{Location: loc}
	}
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}
	timeout, err := cfg.LockTimeout()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("invalid badge catalog: %w", err)
	}

	locker := opts.Locker
	if locker == nil {
		locker = lock.NewLocal()
	}

	l := ledger.New(store, clk, log)
	return &Context{
		Config:    cfg,
		Store:     store,
		Clock:     clk,
		Locker:    locker,
		Log:       log,
		Registry:  registry.New(store, clk, log),
		Ledger:    l,
		Analytics: analytics.New(l, clk),
		Engine: gamification.New(store, gamification.Options{
			ProfileID:   cfg.Profile,
			Catalog:     catalog,
			Locker:      locker,
			LockTimeout: timeout,
			Clock:       clk,
			Logger:      log,
		}),
		Content: content.Open(filepath.Join(cfg.DataDir, ContentFileName), log),
	}, nil
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Stdin() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Today is the current calendar day in the configured timezone.
func (c *Context) Today() string {
	return clock.Today(c.Clock)
}

// BackupManager returns nil for PostgreSQL, which is backed up by its own tools.
func (c *Context) BackupManager() *backup.Manager {
	if c.Config.IsPostgres() || c.Config.Database == "" {
		return nil
	}
	return backup.NewManager(c.Store.GetConfigPath(), c.Config.Backup.Keep, c.Log)
}

// PerformAutomaticBackup snapshots the database before destructive commands.
// Failures are logged and never stop the command.
func (c *Context) PerformAutomaticBackup() {
	if !c.Config.Backup.Enabled {
		return
	}
	mgr := c.BackupManager()
	if mgr == nil {
		return
	}
	if _, err := mgr.Create(); err != nil {
		c.Log.Warn("Automatic backup failed", "error", err)
	}
}

// Quote returns a quote to print, or "" when quotes are off or unavailable.
func (c *Context) Quote() string {
	if !c.Config.Quotes {
		return ""
	}
	return content.QuoteOrEmpty(c.Content, c.Log)
}
