package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/cli/backups"
	"github.com/julianstephens/habithero/internal/cli/habits"
	"github.com/julianstephens/habithero/internal/cli/rewards"
	"github.com/julianstephens/habithero/internal/cli/system"
	"github.com/julianstephens/habithero/internal/config"
	"github.com/julianstephens/habithero/internal/constants"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/keyring"
	"github.com/julianstephens/habithero/internal/lock"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/storage"
	"github.com/julianstephens/habithero/internal/storage/postgres"
	"github.com/julianstephens/habithero/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	DB      string `name:"db" help:"SQLite path or PostgreSQL connection string, overriding the config. PostgreSQL passwords must NOT be embedded; use the OS keyring (database = \"keyring\") or .pgpass instead."`

	Init    system.InitCmd    `cmd:"" help:"Initialize habithero storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"1"`

	Habit   habits.HabitCmd        `cmd:"" help:"Manage habits."`
	Checkin rewards.CheckInCmd     `cmd:"" name:"checkin" help:"Check in a habit and collect XP."`
	Stats   rewards.StatsCmd       `cmd:"" help:"Show streaks and success rates."`
	Profile rewards.ProfileCmd     `cmd:"" help:"Show level, XP and badges."`
	Badges  rewards.BadgesCmd      `cmd:"" help:"Show the badge catalog."`
	History rewards.HistoryCmd     `cmd:"" help:"Show recent rewards."`
	Suggest habits.HabitSuggestCmd `cmd:"" help:"Suggest habits to start."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Settings system.ConfigCmd `cmd:"" name:"config" help:"Manage the configuration file."`
}

// Commands that run before (or without) an initialized database.
var noLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
	"config":  true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracking with streaks, XP, levels and badges"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	command := topCommand(kctx)

	cfg, err := config.Load(CLI.Config)
	if err != nil && command != "config" {
		apperrors.Fatal(err)
	}
	if cfg == nil {
		// config show/init still work when the file is broken
		cfg = config.Default()
		cfg.DataDir = config.ExpandPath(cfg.DataDir)
		cfg.Database = config.ExpandPath(cfg.Database)
	}
	if CLI.DB != "" {
		cfg.Database = config.ExpandPath(CLI.DB)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, DataDir: cfg.DataDir}); err != nil {
		apperrors.Fatal(fmt.Errorf("failed to initialize logger: %w", err))
	}
	logger.Debug("Starting", "command", command, "version", constants.Version)

	var (
		store  storage.Provider
		locker lock.Locker
	)
	// keyring and config never touch the database
	if command != "keyring" && command != "config" {
		store, err = openStore(cfg)
		if err != nil {
			apperrors.Fatal(err)
		}
		defer store.Close()

		var closeLocker func()
		locker, closeLocker, err = openLocker(cfg)
		if err != nil {
			apperrors.Fatal(err)
		}
		defer closeLocker()
	}

	appCtx, err := cli.NewContext(cfg, store, cli.Options{Locker: locker})
	if err != nil {
		apperrors.Fatal(err)
	}
	appCtx.ConfigPath = config.ExpandPath(CLI.Config)

	if store != nil && !noLoad[command] && !(command == "backup" && isRestore(kctx)) {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		apperrors.Fatal(err)
	}
}

func topCommand(kctx *kong.Context) string {
	if sel := kctx.Selected(); sel != nil {
		n := sel
		for n.Parent != nil && n.Parent.Parent != nil {
			n = n.Parent
		}
		return n.Name
	}
	return ""
}

// isRestore reports whether the selected command is backup restore, which
// must work on a database too broken to load.
func isRestore(kctx *kong.Context) bool {
	sel := kctx.Selected()
	return sel != nil && sel.Name == "restore"
}

func openStore(cfg *config.Config) (storage.Provider, error) {
	if !cfg.IsPostgres() {
		return sqlite.NewStore(cfg.Database), nil
	}

	connStr := cfg.Database
	if connStr == constants.DatabaseFromKeyring {
		s, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in the OS keyring; run '%s keyring set <connection-string>' first", constants.AppName)
			}
			return nil, err
		}
		// Stored in the encrypted keyring, so an embedded password is allowed.
		return postgres.New(s), nil
	}

	if err := postgres.ValidateConnString(connStr); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("%w; store the connection string with '%s keyring set' and set database = %q, or use .pgpass",
				err, constants.AppName, constants.DatabaseFromKeyring)
		}
		return nil, err
	}
	return postgres.New(connStr), nil
}

func openLocker(cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.Lock.Backend != constants.LockBackendRedis {
		return lock.NewLocal(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r, err := lock.NewRedis(ctx, lock.RedisConfig{
		Addr:     cfg.Lock.RedisAddr,
		Password: cfg.Lock.RedisPassword,
		DB:       cfg.Lock.RedisDB,
	}, logger.With("component", "lock"))
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}
