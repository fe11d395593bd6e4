package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete the existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if ctx.Config.IsPostgres() {
			return fmt.Errorf("--force is only supported with SQLite storage")
		}
		if err := removeDatabase(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized habithero storage at: %s\n", ctx.Store.GetConfigPath())

	if m, ok := ctx.Store.(storage.Migrator); ok {
		if v, err := m.SchemaVersion(); err == nil {
			ctx.Printf("Schema version: %d\n", v)
		}
	}
	return nil
}

func removeDatabase(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	ctx.PerformAutomaticBackup()
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	ctx.Printf("Deleted existing database at: %s\n", path)
	return nil
}
