// Playdeck Core
// Copyright (c) 2026 The Playdeck Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Playdeck Core.
//
// Playdeck Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Playdeck Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Playdeck Core.  If not, see <http://www.gnu.org/licenses/>.

// playdeckd is the game session tracking daemon. It speaks line-delimited
// JSON with its host launcher over stdin/stdout; all logging goes to file
// and stderr.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	"github.com/PlaydeckProject/playdeck-core/pkg/helpers"
	"github.com/PlaydeckProject/playdeck-core/pkg/service"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	showVersion := flag.Bool(
		"version",
		false,
		"print version and exit",
	)
	quiet := flag.Bool(
		"quiet",
		false,
		"do not mirror logs to stderr",
	)
	debug := flag.Bool(
		"debug",
		false,
		"enable debug logging",
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		return nil
	}

	var logWriters []io.Writer
	if !*quiet {
		logWriters = []io.Writer{os.Stderr}
	}
	if err := helpers.InitLogging(helpers.LogDir(), logWriters); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if *debug {
		cfg.SetDebugLogging(true)
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	stopSvc, done, err := service.Start(cfg, helpers.DataDir())
	if err != nil {
		log.Error().Msgf("error starting service: %s", err)
		return fmt.Errorf("error starting service: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Info().Msgf("received signal: %s", sig)
		if stopErr := stopSvc(); stopErr != nil {
			log.Error().Msgf("error stopping service: %s", stopErr)
		}
	case <-done:
	}

	return nil
}
