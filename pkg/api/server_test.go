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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	"github.com/PlaydeckProject/playdeck-core/pkg/database/userdb"
	"github.com/PlaydeckProject/playdeck-core/pkg/process"
	"github.com/PlaydeckProject/playdeck-core/pkg/scanner"
	"github.com/PlaydeckProject/playdeck-core/pkg/testing/mocks"
	"github.com/PlaydeckProject/playdeck-core/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	games []scanner.Game
	err   error
}

func (*stubScanner) Source() string { return "stub" }

func (s *stubScanner) Scan() ([]scanner.Game, error) {
	return s.games, s.err
}

func newTestServer(t *testing.T, db *userdb.UserDB, scanners []scanner.Scanner) (*Server, *mocks.FakeProcessQuery, *tracker.Tracker) {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	query := mocks.NewFakeProcessQuery()
	tr := tracker.New(query)

	return NewServer(cfg, tr, db, scanners), query, tr
}

func getJSON(t *testing.T, srv *Server, path string, dst any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if dst != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
	}
	return rec
}

func TestHandleVersion(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)

	var resp VersionResponse
	rec := getJSON(t, srv, "/api/v1/version", &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, config.AppName, resp.App)
	assert.Equal(t, config.AppVersion, resp.Version)
	assert.NotEmpty(t, resp.DeviceID)
}

func TestHandleSessions(t *testing.T) {
	t.Parallel()

	srv, query, tr := newTestServer(t, nil, nil)
	query.Add(process.Info{PID: 100, Name: "game", Exe: "/games/game", CreateTime: 1000})
	require.True(t, tr.StartTracking(t.Context(), 1, "/games/game", "Game"))

	var resp SessionsResponse
	rec := getJSON(t, srv, "/api/v1/sessions", &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "Game", resp.Sessions[0].GameName)
}

func TestHandleHistoryAndPlaytime(t *testing.T) {
	t.Parallel()

	db, err := userdb.OpenUserDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	started := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, db.RecordSession(t.Context(), "Rogue", "/games/rogue", started, 30*time.Minute))
	require.NoError(t, db.RecordSession(t.Context(), "Rogue", "/games/rogue", started.Add(time.Hour), 15*time.Minute))

	srv, _, _ := newTestServer(t, db, nil)

	var history HistoryResponse
	rec := getJSON(t, srv, "/api/v1/history", &history)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, history.Entries, 2)
	assert.Equal(t, int64(15*60), history.Entries[0].Runtime)

	var playtime PlaytimeResponse
	rec = getJSON(t, srv, "/api/v1/playtime", &playtime)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, playtime.Games, 1)
	assert.Equal(t, int64(45*60), playtime.Games[0].TotalRuntime)
	assert.Equal(t, int64(2), playtime.Games[0].SessionCount)
}

func TestHandleHistory_InvalidLastID(t *testing.T) {
	t.Parallel()

	db, err := userdb.OpenUserDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	srv, _, _ := newTestServer(t, db, nil)
	rec := getJSON(t, srv, "/api/v1/history?last_id=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHistory_NoDatabase(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, nil, nil)

	var resp HistoryResponse
	rec := getJSON(t, srv, "/api/v1/history", &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Entries)
}

func TestHandleGames_MergesScannersAndSkipsFailures(t *testing.T) {
	t.Parallel()

	scanners := []scanner.Scanner{
		&stubScanner{games: []scanner.Game{{Source: "steam", AppID: "440", Name: "Team Fortress 2"}}},
		&stubScanner{err: errors.New("library offline")},
	}
	srv, _, _ := newTestServer(t, nil, scanners)

	var resp GamesResponse
	rec := getJSON(t, srv, "/api/v1/games", &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Games, 1)
	assert.Equal(t, "Team Fortress 2", resp.Games[0].Name)
}
