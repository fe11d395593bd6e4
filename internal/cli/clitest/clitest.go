// Package clitest builds command contexts backed by a throwaway SQLite store.
package clitest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/clock"
	"github.com/julianstephens/habithero/internal/config"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/storage/sqlite"
)

type Env struct {
	Ctx   *cli.Context
	Out   *bytes.Buffer
	Clock *clock.Stub
	Store *sqlite.Store
	Dir   string
}

// New returns an initialized environment whose clock reads today.
func New(t *testing.T, today string) *Env {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Database = filepath.Join(dir, "habithero.db")
	cfg.DataDir = dir
	cfg.Quotes = false

	store := sqlite.NewStore(cfg.Database)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clk := clock.NewStubDay(today)
	ctx, err := cli.NewContext(cfg, store, cli.Options{Clock: clk, Log: logger.Nop{}})
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")

	return &Env{Ctx: ctx, Out: out, Clock: clk, Store: store, Dir: dir}
}

// Output returns and clears everything written so far.
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
