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

package userdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/PlaydeckProject/playdeck-core/pkg/database"
	"github.com/rs/zerolog/log"
)

// Queries go here to keep the interface clean

//go:embed migrations/*.sql
var migrationFiles embed.FS

func sqlMigrateUp(db *sql.DB) error {
	if err := database.MigrateUp(db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run user database migrations: %w", err)
	}
	return nil
}

//goland:noinspection SqlWithoutWhere
func sqlTruncate(ctx context.Context, db *sql.DB) error {
	sqlStmt := `
	delete from Sessions;
	vacuum;
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return fmt.Errorf("failed to truncate database: %w", err)
	}
	return nil
}

func sqlVacuum(ctx context.Context, db *sql.DB) error {
	sqlStmt := `
	vacuum;
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

//nolint:gocritic // struct passed for DB insertion
func sqlAddSession(ctx context.Context, db *sql.DB, entry SessionEntry) error {
	stmt, err := db.PrepareContext(ctx, `
		insert into Sessions(
			GameName, ExePath, StartedAt, Runtime
		) values (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare session insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()
	_, err = stmt.ExecContext(ctx,
		entry.GameName,
		entry.ExePath,
		entry.StartedAt.Unix(),
		int64(entry.Runtime/time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to execute session insert: %w", err)
	}
	return nil
}

func sqlGetSessions(ctx context.Context, db *sql.DB, lastID int64) ([]SessionEntry, error) {
	list := make([]SessionEntry, 0, 25)
	// Token-based pagination on DBID instead of offset
	if lastID == 0 {
		lastID = 2147483646
	}

	q, err := db.PrepareContext(ctx, `
		select
		DBID, GameName, ExePath, StartedAt, Runtime
		from Sessions
		where DBID < ?
		order by DBID DESC
		limit 25;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare sessions query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx, lastID)
	if err != nil {
		return list, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	for rows.Next() {
		var entry SessionEntry
		var startedAt, runtime int64
		if err := rows.Scan(&entry.DBID, &entry.GameName, &entry.ExePath, &startedAt, &runtime); err != nil {
			return list, fmt.Errorf("failed to scan session row: %w", err)
		}
		entry.StartedAt = time.Unix(startedAt, 0)
		entry.Runtime = time.Duration(runtime) * time.Second
		list = append(list, entry)
	}
	if err := rows.Err(); err != nil {
		return list, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	return list, nil
}

func sqlGetGameTotals(ctx context.Context, db *sql.DB) ([]GameTotal, error) {
	list := make([]GameTotal, 0, 25)

	q, err := db.PrepareContext(ctx, `
		select
		ExePath, max(GameName), sum(Runtime), count(*), max(StartedAt)
		from Sessions
		group by ExePath
		order by sum(Runtime) DESC;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare totals query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return list, fmt.Errorf("failed to query game totals: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	for rows.Next() {
		var total GameTotal
		var totalRuntime, lastPlayed int64
		if err := rows.Scan(&total.ExePath, &total.GameName, &totalRuntime, &total.SessionCount, &lastPlayed); err != nil {
			return list, fmt.Errorf("failed to scan totals row: %w", err)
		}
		total.TotalRuntime = time.Duration(totalRuntime) * time.Second
		total.LastPlayed = time.Unix(lastPlayed, 0)
		list = append(list, total)
	}
	if err := rows.Err(); err != nil {
		return list, fmt.Errorf("failed to iterate totals rows: %w", err)
	}

	return list, nil
}

func sqlCleanupSessions(ctx context.Context, db *sql.DB, retentionDays int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -retentionDays).Unix()

	stmt, err := db.PrepareContext(ctx, `DELETE FROM Sessions WHERE StartedAt < ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare session cleanup statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to execute session cleanup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Vacuum to reclaim disk space after cleanup
	if rowsAffected > 0 {
		if err := sqlVacuum(ctx, db); err != nil {
			return rowsAffected, fmt.Errorf("cleanup succeeded but vacuum failed: %w", err)
		}
	}

	return rowsAffected, nil
}
