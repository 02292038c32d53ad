// Copyright 2025 The go-kromer Authors
// This file is part of go-kromer.
//
// go-kromer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-kromer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-kromer. If not, see <http://www.gnu.org/licenses/>.

// kromer is the Krist-compatible currency server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/core"
	"github.com/reconnectedcc/go-kromer/db"
	"github.com/reconnectedcc/go-kromer/event"
	"github.com/reconnectedcc/go-kromer/node"
	"github.com/reconnectedcc/go-kromer/params"
	"github.com/reconnectedcc/go-kromer/ws"
)

var (
	urlFlag = &cli.StringFlag{
		Name:    "url",
		Usage:   "listen address for the HTTP server",
		Value:   "0.0.0.0:8080",
		EnvVars: []string{"SERVER_URL"},
	}
	databaseURLFlag = &cli.StringFlag{
		Name:    "database-url",
		Usage:   "PostgreSQL connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
	keyFlag = &cli.StringFlag{
		Name:    "key",
		Usage:   "shared secret for the internal API (Kromer-Key header)",
		EnvVars: []string{"INTERNAL_KEY"},
	}
	debugFlag = &cli.BoolFlag{
		Name:    "debug",
		Usage:   "enable debug logging",
		EnvVars: []string{"DEBUG"},
	}
	insecureFlag = &cli.BoolFlag{
		Name:    "insecure",
		Usage:   "advertise ws:// gateway URLs instead of wss://",
		EnvVars: []string{"FORCE_WS_INSECURE"},
	}
)

func main() {
	// A missing .env is fine; flags and the process environment still apply.
	godotenv.Load()

	app := &cli.App{
		Name:    params.PackageName,
		Usage:   "Krist-compatible currency server",
		Version: version(),
		Flags: []cli.Flag{
			urlFlag,
			databaseURLFlag,
			keyFlag,
			debugFlag,
			insecureFlag,
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func version() string {
	if params.GitCommit != "" {
		return params.Version + "-" + params.GitCommit
	}
	return params.Version
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(c *cli.Context) error {
	log, err := newLogger(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer log.Sync()

	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return fmt.Errorf("no database configured, set --database-url or DATABASE_URL")
	}

	publicURL := os.Getenv("PUBLIC_URL")
	if publicURL == "" {
		publicURL = c.String("url")
	}

	if err := db.Migrate(databaseURL); err != nil {
		return err
	}
	log.Info("database schema up to date")

	ctx := context.Background()
	pool, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	feed := event.NewFeed[api.WebSocketEvent](event.DefaultBuffer, log)
	ledger := core.NewLedger(pool, feed, log)

	wsServer := ws.NewServer(ledger, log)
	sub := feed.Subscribe()
	go wsServer.Run(sub)

	cfg := node.Config{
		ListenAddr:      c.String("url"),
		DatabaseURL:     databaseURL,
		PublicURL:       publicURL,
		InternalKey:     c.String("key"),
		ForceInsecureWS: c.Bool("insecure"),
		Debug:           c.Bool("debug"),
	}
	n := node.New(cfg, ledger, wsServer, log)
	if err := n.Start(); err != nil {
		return err
	}
	log.Info("kromer started",
		zap.String("version", version()),
		zap.String("listen", cfg.ListenAddr),
		zap.String("public", cfg.PublicURL))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Info("shutting down")

	sub.Unsubscribe()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return n.Stop(shutdownCtx)
}
