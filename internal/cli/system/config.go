package system

import (
	"fmt"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/config"
)

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a config file with the default settings."`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration." default:"1"`
}

type ConfigInitCmd struct{}

func (c *ConfigInitCmd) Run(ctx *cli.Context) error {
	cfg := config.Default()
	if err := config.Init(ctx.ConfigPath, cfg); err != nil {
		return err
	}
	ctx.Printf("✓ Config written to %s\n", config.ExpandPath(ctx.ConfigPath))
	return nil
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	m := &config.Manager{}
	if err := m.Write(ctx.Stdout(), ctx.Config); err != nil {
		return fmt.Errorf("failed to print config: %w", err)
	}
	return nil
}
