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

// Package api exposes a read-only HTTP view of the daemon: live sessions,
// play history, per-game totals, and the installed game libraries. The IPC
// stream stays the only write path.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	"github.com/PlaydeckProject/playdeck-core/pkg/database/userdb"
	"github.com/PlaydeckProject/playdeck-core/pkg/ipc/models"
	"github.com/PlaydeckProject/playdeck-core/pkg/scanner"
	"github.com/PlaydeckProject/playdeck-core/pkg/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// VersionResponse identifies the daemon.
type VersionResponse struct {
	App      string `json:"app"`
	Version  string `json:"version"`
	DeviceID string `json:"device_id"`
}

// SessionsResponse is the live tracker snapshot.
type SessionsResponse struct {
	Sessions []models.SessionEntry `json:"sessions"`
}

// HistoryEntry is one finished session in the play history.
type HistoryEntry struct {
	GameName  string `json:"game_name"`
	ExePath   string `json:"exe_path"`
	ID        int64  `json:"id"`
	StartedAt int64  `json:"started_at"`
	Runtime   int64  `json:"runtime"`
}

// HistoryResponse is a page of play history, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// PlaytimeEntry is the aggregate playtime of one game.
type PlaytimeEntry struct {
	GameName     string `json:"game_name"`
	ExePath      string `json:"exe_path"`
	TotalRuntime int64  `json:"total_runtime"`
	SessionCount int64  `json:"session_count"`
	LastPlayed   int64  `json:"last_played"`
}

// PlaytimeResponse lists per-game totals, most-played first.
type PlaytimeResponse struct {
	Games []PlaytimeEntry `json:"games"`
}

// GamesResponse lists installed games across all configured launchers.
type GamesResponse struct {
	Games []scanner.Game `json:"games"`
}

// Server is the HTTP façade over the daemon's state.
type Server struct {
	cfg      *config.Instance
	tracker  *tracker.Tracker
	db       *userdb.UserDB
	scanners []scanner.Scanner
	httpSrv  *http.Server
}

// NewServer wires the API routes. db and scanners may be nil/empty; the
// corresponding endpoints then serve empty results.
func NewServer(
	cfg *config.Instance,
	tr *tracker.Tracker,
	db *userdb.UserDB,
	scanners []scanner.Scanner,
) *Server {
	s := &Server{
		cfg:      cfg,
		tracker:  tr,
		db:       db,
		scanners: scanners,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.Timeout(config.APIRequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{},
	}))

	r.Get("/api/v1/version", s.handleVersion)
	r.Get("/api/v1/sessions", s.handleSessions)
	r.Get("/api/v1/history", s.handleHistory)
	r.Get("/api/v1/playtime", s.handlePlaytime)
	r.Get("/api/v1/games", s.handleGames)

	s.httpSrv = &http.Server{
		Addr:              cfg.APIListen(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the route tree, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpSrv.Addr).Msg("api server listening")
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("api server shutdown error")
		}
		<-errCh
		return nil
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, VersionResponse{
		App:      config.AppName,
		Version:  config.AppVersion,
		DeviceID: s.cfg.DeviceID(),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, SessionsResponse{Sessions: s.tracker.Snapshot(r.Context())})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, HistoryResponse{Entries: []HistoryEntry{}})
		return
	}

	var lastID int64
	if v := r.URL.Query().Get("last_id"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid last_id", http.StatusBadRequest)
			return
		}
		lastID = parsed
	}

	sessions, err := s.db.GetSessions(r.Context(), lastID)
	if err != nil {
		log.Error().Err(err).Msg("error querying play history")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	entries := make([]HistoryEntry, 0, len(sessions))
	for _, entry := range sessions {
		entries = append(entries, HistoryEntry{
			ID:        entry.DBID,
			GameName:  entry.GameName,
			ExePath:   entry.ExePath,
			StartedAt: entry.StartedAt.Unix(),
			Runtime:   int64(entry.Runtime / time.Second),
		})
	}
	writeJSON(w, HistoryResponse{Entries: entries})
}

func (s *Server) handlePlaytime(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, PlaytimeResponse{Games: []PlaytimeEntry{}})
		return
	}

	totals, err := s.db.GetGameTotals(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("error querying playtime totals")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	games := make([]PlaytimeEntry, 0, len(totals))
	for _, total := range totals {
		games = append(games, PlaytimeEntry{
			GameName:     total.GameName,
			ExePath:      total.ExePath,
			TotalRuntime: int64(total.TotalRuntime / time.Second),
			SessionCount: total.SessionCount,
			LastPlayed:   total.LastPlayed.Unix(),
		})
	}
	writeJSON(w, PlaytimeResponse{Games: games})
}

func (s *Server) handleGames(w http.ResponseWriter, _ *http.Request) {
	games := make([]scanner.Game, 0)
	for _, sc := range s.scanners {
		found, err := sc.Scan()
		if err != nil {
			log.Error().Err(err).Str("source", sc.Source()).Msg("error scanning game library")
			continue
		}
		games = append(games, found...)
	}
	writeJSON(w, GamesResponse{Games: games})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding api response")
	}
}
