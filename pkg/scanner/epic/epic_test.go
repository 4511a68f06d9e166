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

package epic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_FindsInstalledGames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := `{
		"DisplayName": "Rocket League",
		"AppName": "Sugar",
		"CatalogItemId": "abc123",
		"InstallLocation": "/games/rocketleague",
		"LaunchExecutable": "Binaries/Win64/RocketLeague.exe"
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ABC.item"), []byte(manifest), 0o600))

	s := NewScanner(dir)
	games, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, games, 1)

	g := games[0]
	assert.Equal(t, "epic", g.Source)
	assert.Equal(t, "Sugar", g.AppID)
	assert.Equal(t, "Rocket League", g.Name)
	assert.Equal(t, filepath.Join("/games/rocketleague", "Binaries/Win64/RocketLeague.exe"), g.ExePath)
	assert.Contains(t, g.LaunchURI, "com.epicgames.launcher://apps/Sugar")
}

func TestScan_SkipsMalformedAndIncompleteManifests(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.item"), []byte(`{not json`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.item"), []byte(`{"AppName": ""}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignore me`), 0o600))

	s := NewScanner(dir)
	games, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestScan_MissingDirectoryIsNotFatal(t *testing.T) {
	t.Parallel()

	s := NewScanner(filepath.Join(t.TempDir(), "nope"))
	games, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, games)
}
