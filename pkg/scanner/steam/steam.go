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

// Package steam scans Steam libraries for installed games by walking
// libraryfolders.vdf and the per-game appmanifest files.
package steam

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/PlaydeckProject/playdeck-core/pkg/scanner"
	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
)

// Scanner scans one or more Steam steamapps directories.
type Scanner struct {
	steamDirs []string
}

// NewScanner creates a Steam scanner over the given steamapps directories
// (e.g. ~/.steam/steam/steamapps).
func NewScanner(steamDirs []string) *Scanner {
	return &Scanner{steamDirs: steamDirs}
}

func (*Scanner) Source() string { return "steam" }

// Scan reads every configured library and returns installed apps plus
// non-Steam shortcuts. Scan errors on individual libraries or manifests are
// logged and skipped so one broken file cannot hide the rest of the library.
func (s *Scanner) Scan() ([]scanner.Game, error) {
	var results []scanner.Game
	for _, dir := range s.steamDirs {
		results = append(results, scanLibraryFolders(dir)...)
		results = append(results, scanShortcuts(filepath.Dir(dir))...)
	}
	return results, nil
}

func scanLibraryFolders(steamDir string) []scanner.Game {
	var results []scanner.Game

	//nolint:gosec // Safe: reads Steam config files for game library scanning
	f, err := os.Open(filepath.Join(steamDir, "libraryfolders.vdf"))
	if err != nil {
		log.Error().Err(err).Msg("error opening libraryfolders.vdf")
		return results
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing libraryfolders.vdf")
		}
	}()

	p := vdf.NewParser(f)
	m, err := p.Parse()
	if err != nil {
		log.Error().Err(err).Msg("error parsing libraryfolders.vdf")
		return results
	}
	m = normalizeVDFKeys(m)

	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		log.Error().Msg("libraryfolders is not a map")
		return results
	}
	for l, v := range lfs {
		ls, ok := v.(map[string]any)
		if !ok {
			log.Error().Msgf("library %s is not a map", l)
			continue
		}

		libraryPath, ok := ls["path"].(string)
		if !ok {
			log.Error().Msgf("library %s path is not a string", l)
			continue
		}

		results = append(results, scanManifests(filepath.Join(libraryPath, "steamapps"))...)
	}

	return results
}

func scanManifests(steamAppsDir string) []scanner.Game {
	var results []scanner.Game

	entries, err := os.ReadDir(steamAppsDir)
	if err != nil {
		log.Error().Err(err).Msg("error listing steamapps folder")
		return results
	}

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "appmanifest_") {
			continue
		}

		game, ok := parseAppManifest(filepath.Join(steamAppsDir, entry.Name()))
		if !ok {
			continue
		}
		game.InstallDir = filepath.Join(steamAppsDir, "common", game.InstallDir)
		results = append(results, game)
	}

	return results
}

func parseAppManifest(path string) (scanner.Game, bool) {
	//nolint:gosec // Safe: reads Steam manifest files for game library scanning
	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Msgf("error opening manifest: %s", path)
		return scanner.Game{}, false
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing manifest file")
		}
	}()

	p := vdf.NewParser(f)
	m, err := p.Parse()
	if err != nil {
		log.Error().Err(err).Msgf("error parsing manifest: %s", path)
		return scanner.Game{}, false
	}
	m = normalizeVDFKeys(m)

	appState, ok := m["appstate"].(map[string]any)
	if !ok {
		log.Error().Msgf("appstate is not a map in manifest: %s", path)
		return scanner.Game{}, false
	}

	appID, ok := appState["appid"].(string)
	if !ok {
		log.Error().Msgf("appid is not a string in manifest: %s", path)
		return scanner.Game{}, false
	}

	appName, ok := appState["name"].(string)
	if !ok {
		log.Error().Msgf("name is not a string in manifest: %s", path)
		return scanner.Game{}, false
	}

	installDir, _ := appState["installdir"].(string)

	return scanner.Game{
		Source:     "steam",
		AppID:      appID,
		Name:       appName,
		InstallDir: installDir,
		LaunchURI:  "steam://rungameid/" + appID,
	}, true
}
