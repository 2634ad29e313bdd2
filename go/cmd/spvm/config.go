// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/Fantom-foundation/Expr/go/interpreter/spvm"
	"github.com/Fantom-foundation/Expr/go/store"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

// Config summarizes the settings shared by all commands. It is loaded from
// an optional TOML file, e.g.
//
//	interpreter = "spvm-stats"
//	caller = "0x00000000000000000000000000000000000000aa"
//
//	[limits]
//	max-stack-height = 256
//
//	[store]
//	path = "kv.db"
type Config struct {
	Interpreter string         `toml:"interpreter"`
	HashCache   bool           `toml:"hash-cache"`
	Caller      expr.Address   `toml:"caller"`
	Namespace   expr.Namespace `toml:"namespace"`
	Limits      LimitsConfig   `toml:"limits"`
	Store       StoreConfig    `toml:"store"`
}

type LimitsConfig struct {
	MaxStackHeight        int `toml:"max-stack-height"`
	MaxDoWhileIterations  int `toml:"max-do-while-iterations"`
	VerificationCacheSize int `toml:"verification-cache-size"`
}

// StoreConfig selects the backend of committed key/value entries. An empty
// path selects a volatile in-memory store.
type StoreConfig struct {
	Path string `toml:"path"`
}

func defaultConfig() Config {
	return Config{
		Interpreter: "spvm",
		HashCache:   true,
	}
}

// loadConfig parses the given TOML file on top of the default config. An
// empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	res := defaultConfig()
	if path == "" {
		return res, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &res); err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return res, nil
}

func loadConfigFromContext(ctx *cli.Context) (Config, error) {
	return loadConfig(ctx.String(configFlag.Name))
}

func (c *Config) newInterpreter() (expr.Interpreter, error) {
	if expr.GetInterpreterFactory(c.Interpreter) == nil {
		names := maps.Keys(expr.GetAllRegisteredInterpreters())
		slices.Sort(names)
		return nil, fmt.Errorf("invalid interpreter %q, use one of: %v", c.Interpreter, names)
	}
	return expr.NewInterpreter(c.Interpreter, spvm.Config{
		MaxStackHeight:        c.Limits.MaxStackHeight,
		MaxDoWhileIterations:  c.Limits.MaxDoWhileIterations,
		VerificationCacheSize: c.Limits.VerificationCacheSize,
		WithHashCache:         c.HashCache,
	})
}

// openStore opens the configured store. The returned function releases it.
func (c *Config) openStore() (expr.Store, func() error, error) {
	if c.Store.Path == "" {
		return store.NewMemory(), func() error { return nil }, nil
	}
	db, err := store.OpenSQLite(c.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}
