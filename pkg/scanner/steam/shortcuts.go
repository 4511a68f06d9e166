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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PlaydeckProject/playdeck-core/internal/vdfbinary"
	"github.com/PlaydeckProject/playdeck-core/pkg/scanner"
	"github.com/rs/zerolog/log"
)

// scanShortcuts scans non-Steam games (user-added shortcuts) for every Steam
// user under the given Steam root directory.
func scanShortcuts(steamRoot string) []scanner.Game {
	var results []scanner.Game

	userdataDir := filepath.Join(steamRoot, "userdata")
	userDirs, err := os.ReadDir(userdataDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", userdataDir).Msg("error reading Steam userdata directory")
		}
		return results
	}

	for _, userDir := range userDirs {
		if !userDir.IsDir() {
			continue
		}

		shortcutsPath := filepath.Join(userdataDir, userDir.Name(), "config", "shortcuts.vdf")
		//nolint:gosec // Safe: reads Steam config files for game library scanning
		shortcutsData, err := os.ReadFile(shortcutsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", shortcutsPath).Msg("error reading shortcuts.vdf")
			}
			continue
		}

		shortcuts, err := vdfbinary.ParseShortcuts(bytes.NewReader(shortcutsData))
		if err != nil {
			log.Error().Err(err).Msgf("error parsing shortcuts.vdf: %s", shortcutsPath)
			continue
		}

		for _, shortcut := range shortcuts {
			if shortcut.AppName == "" {
				continue
			}

			// Launching a non-Steam game needs the 64-bit "Big Picture ID":
			// BPID = (AppID << 32) | 0x02000000
			bpid := (uint64(shortcut.AppID) << 32) | 0x02000000

			results = append(results, scanner.Game{
				Source:     "steam",
				AppID:      strconv.FormatUint(bpid, 10),
				Name:       shortcut.AppName,
				InstallDir: strings.Trim(shortcut.StartDir, `"`),
				ExePath:    strings.Trim(shortcut.Exe, `"`),
				LaunchURI:  "steam://rungameid/" + strconv.FormatUint(bpid, 10),
			})
		}
	}

	return results
}
