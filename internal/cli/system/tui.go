package system

import (
	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	return tui.Run(ctx)
}
