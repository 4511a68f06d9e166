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

// Package userdb stores the user's play history: one row per finished
// session, with aggregate queries for per-game totals.
package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("UserDB is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

// SessionEntry is one finished play session.
type SessionEntry struct {
	StartedAt time.Time
	GameName  string
	ExePath   string
	DBID      int64
	Runtime   time.Duration
}

// GameTotal aggregates all sessions of one game, keyed by executable path.
type GameTotal struct {
	LastPlayed   time.Time
	GameName     string
	ExePath      string
	TotalRuntime time.Duration
	SessionCount int64
}

// UserDB is the on-disk play history database.
type UserDB struct {
	sql     *sql.DB
	dataDir string
}

// OpenUserDB opens (creating and migrating if necessary) the user database
// under dataDir.
func OpenUserDB(dataDir string) (*UserDB, error) {
	db := &UserDB{sql: nil, dataDir: dataDir}
	err := db.Open()
	return db, err
}

func (db *UserDB) Open() error {
	exists := true
	dbPath := db.GetDBPath()
	if _, err := os.Stat(dbPath); err != nil {
		exists = false
		if mkdirErr := os.MkdirAll(filepath.Dir(dbPath), 0o750); mkdirErr != nil {
			return fmt.Errorf("failed to create directory for database: %w", mkdirErr)
		}
	}
	sqlInstance, err := sql.Open("sqlite3", dbPath+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	if !exists {
		return db.Allocate()
	}
	return db.MigrateUp()
}

func (db *UserDB) GetDBPath() string {
	return filepath.Join(db.dataDir, config.UserDbFile)
}

func (db *UserDB) Allocate() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

func (db *UserDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

func (db *UserDB) Truncate(ctx context.Context) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlTruncate(ctx, db.sql)
}

func (db *UserDB) Vacuum(ctx context.Context) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlVacuum(ctx, db.sql)
}

// RecordSession inserts one finished session. Implements the tracker's
// persistence sink.
func (db *UserDB) RecordSession(
	ctx context.Context, gameName, exePath string, startedAt time.Time, runtime time.Duration,
) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlAddSession(ctx, db.sql, SessionEntry{
		GameName:  gameName,
		ExePath:   exePath,
		StartedAt: startedAt,
		Runtime:   runtime,
	})
}

// GetSessions returns sessions newest-first, token-paginated on DBID. Pass
// lastID 0 for the first page.
func (db *UserDB) GetSessions(ctx context.Context, lastID int64) ([]SessionEntry, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetSessions(ctx, db.sql, lastID)
}

// GetGameTotals returns per-game playtime aggregates, most-played first.
func (db *UserDB) GetGameTotals(ctx context.Context) ([]GameTotal, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetGameTotals(ctx, db.sql)
}

// CleanupSessions deletes sessions older than retentionDays and reports how
// many rows were removed.
func (db *UserDB) CleanupSessions(ctx context.Context, retentionDays int) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlCleanupSessions(ctx, db.sql, retentionDays)
}

func (db *UserDB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
