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

// Package service assembles the daemon: play history database, process
// tracker, monitor loop, IPC gateway, and the optional HTTP API.
package service

import (
	"context"
	"io"
	"os"

	"github.com/PlaydeckProject/playdeck-core/pkg/api"
	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	"github.com/PlaydeckProject/playdeck-core/pkg/database/userdb"
	"github.com/PlaydeckProject/playdeck-core/pkg/ipc"
	"github.com/PlaydeckProject/playdeck-core/pkg/ipc/models"
	"github.com/PlaydeckProject/playdeck-core/pkg/process"
	"github.com/PlaydeckProject/playdeck-core/pkg/scanner"
	"github.com/PlaydeckProject/playdeck-core/pkg/scanner/epic"
	"github.com/PlaydeckProject/playdeck-core/pkg/scanner/steam"
	"github.com/PlaydeckProject/playdeck-core/pkg/tracker"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// notificationBuffer sizes the channel between monitor ticks and the IPC
// writer. Ticks block if the writer falls this far behind.
const notificationBuffer = 100

type settings struct {
	in    io.Reader
	out   io.Writer
	query process.Query
	clock clockwork.Clock
}

// Option overrides a daemon dependency, mainly for tests.
type Option func(*settings)

// WithStreams replaces stdin/stdout as the IPC transport.
func WithStreams(in io.Reader, out io.Writer) Option {
	return func(s *settings) {
		s.in = in
		s.out = out
	}
}

// WithProcessQuery replaces the OS process table.
func WithProcessQuery(query process.Query) Option {
	return func(s *settings) {
		s.query = query
	}
}

// WithClock replaces the real clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// Start brings the daemon up and returns. stop shuts everything down and
// blocks until cleanup finishes; done closes once the daemon has exited for
// any reason, including the host closing stdin or sending shutdown.
func Start(cfg *config.Instance, dataDir string, opts ...Option) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)
	log.Info().Msgf("config: %s", cfg.Path())

	s := settings{
		in:    os.Stdin,
		out:   os.Stdout,
		query: process.NewSystemQuery(),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	ctx, cancel := context.WithCancel(context.Background())

	log.Info().Msg("opening user database")
	db, err := userdb.OpenUserDB(dataDir)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	cleanupSessionsOnStartup(ctx, cfg, db)

	ns := make(chan models.Notification, notificationBuffer)
	tr := tracker.New(s.query,
		tracker.WithClock(s.clock),
		tracker.WithNotifications(ns),
		tracker.WithSink(db),
	)
	monitor := tracker.NewMonitor(tr, cfg.PollInterval(), s.clock)
	gateway := ipc.New(cfg, tr, ns, s.in, s.out,
		ipc.WithClock(s.clock),
		ipc.WithShutdownFunc(cancel),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		monitor.Run(gctx)
		return nil
	})

	g.Go(func() error {
		// Gateway exit means the host is gone or asked us to stop, either
		// way the daemon has no reason to keep running.
		defer cancel()
		return gateway.Run(gctx)
	})

	if cfg.APIEnabled() {
		log.Info().Msg("starting API service")
		apiSrv := api.NewServer(cfg, tr, db, buildScanners(cfg))
		g.Go(func() error {
			return apiSrv.Run(gctx)
		})
	}

	doneCh := make(chan struct{})
	go func() {
		if waitErr := g.Wait(); waitErr != nil {
			log.Error().Err(waitErr).Msg("daemon exited with error")
		}
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing user database")
		}
		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		return nil
	}

	return stop, doneCh, nil
}

func buildScanners(cfg *config.Instance) []scanner.Scanner {
	var scanners []scanner.Scanner
	if dirs := cfg.SteamDirs(); len(dirs) > 0 {
		scanners = append(scanners, steam.NewScanner(dirs))
	}
	if dir := cfg.EpicManifestDir(); dir != "" {
		scanners = append(scanners, epic.NewScanner(dir))
	}
	return scanners
}

func cleanupSessionsOnStartup(ctx context.Context, cfg *config.Instance, db *userdb.UserDB) {
	retention := cfg.PlaytimeRetention()
	if retention <= 0 {
		log.Debug().Msg("session cleanup disabled (retention set to 0)")
		return
	}

	log.Info().Msgf("cleaning up sessions older than %d days", retention)
	rowsDeleted, err := db.CleanupSessions(ctx, retention)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("error cleaning up old sessions")
	case rowsDeleted > 0:
		log.Info().Msgf("deleted %d old sessions", rowsDeleted)
	default:
		log.Debug().Msg("no old sessions to clean up")
	}
}
