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

package steam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/PlaydeckProject/playdeck-core/pkg/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSteamLibrary(t *testing.T) string {
	t.Helper()

	libraryRoot := t.TempDir()
	steamApps := filepath.Join(libraryRoot, "steamapps")
	require.NoError(t, os.MkdirAll(steamApps, 0o750))

	libraryFolders := fmt.Sprintf(`"libraryfolders"
{
	"0"
	{
		"path"		%q
	}
}
`, libraryRoot)
	require.NoError(t, os.WriteFile(filepath.Join(steamApps, "libraryfolders.vdf"), []byte(libraryFolders), 0o600))

	manifest := `"AppState"
{
	"appid"		"440"
	"name"		"Team Fortress 2"
	"installdir"		"Team Fortress 2"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(steamApps, "appmanifest_440.acf"), []byte(manifest), 0o600))

	return steamApps
}

func TestScan_FindsInstalledApps(t *testing.T) {
	t.Parallel()

	steamApps := writeSteamLibrary(t)
	s := NewScanner([]string{steamApps})

	games, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, games, 1)

	g := games[0]
	assert.Equal(t, "steam", g.Source)
	assert.Equal(t, "440", g.AppID)
	assert.Equal(t, "Team Fortress 2", g.Name)
	assert.Equal(t, "steam://rungameid/440", g.LaunchURI)
	assert.Equal(t, filepath.Join(steamApps, "common", "Team Fortress 2"), g.InstallDir)
}

func TestScan_MissingLibraryIsNotFatal(t *testing.T) {
	t.Parallel()

	s := NewScanner([]string{filepath.Join(t.TempDir(), "nope")})
	games, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestScan_SkipsMalformedManifest(t *testing.T) {
	t.Parallel()

	steamApps := writeSteamLibrary(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(steamApps, "appmanifest_999.acf"),
		[]byte(`"AppState" { broken`),
		0o600,
	))

	s := NewScanner([]string{steamApps})
	games, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "440", games[0].AppID)
}

func TestScan_FindsNonSteamShortcuts(t *testing.T) {
	t.Parallel()

	steamApps := writeSteamLibrary(t)
	steamRoot := filepath.Dir(steamApps)

	configDir := filepath.Join(steamRoot, "userdata", "12345678", "config")
	require.NoError(t, os.MkdirAll(configDir, 0o750))

	var buf bytes.Buffer
	writeStr := func(key, value string) {
		buf.WriteByte(0x01)
		buf.WriteString(key + "\x00" + value + "\x00")
	}
	buf.WriteByte(0x00)
	buf.WriteString("shortcuts\x00")
	buf.WriteByte(0x00)
	buf.WriteString("0\x00")
	buf.WriteByte(0x02)
	buf.WriteString("appid\x00")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(777)))
	writeStr("AppName", "Lutris Game")
	writeStr("Exe", `"/games/lutris/run"`)
	writeStr("StartDir", "/games/lutris")
	buf.Write([]byte{0x08, 0x08, 0x08})
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "shortcuts.vdf"), buf.Bytes(), 0o600))

	s := NewScanner([]string{steamApps})
	games, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, games, 2)

	var shortcut scanner.Game
	var found bool
	for _, g := range games {
		if g.Name == "Lutris Game" {
			shortcut, found = g, true
		}
	}
	require.True(t, found, "shortcut not found in scan results")
	assert.Equal(t, "/games/lutris/run", shortcut.ExePath)

	// BPID = (777 << 32) | 0x02000000
	assert.Equal(t, "steam://rungameid/3337223143424", shortcut.LaunchURI)
}

func TestNormalizeVDFKeys_LowercasesNestedKeys(t *testing.T) {
	t.Parallel()

	m := normalizeVDFKeys(map[string]any{
		"AppState": map[string]any{
			"AppID": "440",
		},
	})

	appState, ok := m["appstate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "440", appState["appid"])
}
