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

// Package epic scans the Epic Games Launcher manifest directory for
// installed games. Each installed game has one .item file, a JSON document
// written by the launcher.
package epic

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/PlaydeckProject/playdeck-core/pkg/scanner"
	"github.com/rs/zerolog/log"
)

// itemManifest is the subset of the launcher's .item document we care about.
type itemManifest struct {
	DisplayName      string `json:"DisplayName"`
	AppName          string `json:"AppName"`
	CatalogItemID    string `json:"CatalogItemId"`
	InstallLocation  string `json:"InstallLocation"`
	LaunchExecutable string `json:"LaunchExecutable"`
}

// Scanner scans one Epic Games Launcher manifest directory.
type Scanner struct {
	manifestDir string
}

// NewScanner creates an Epic scanner over the given manifest directory
// (e.g. C:\ProgramData\Epic\EpicGamesLauncher\Data\Manifests).
func NewScanner(manifestDir string) *Scanner {
	return &Scanner{manifestDir: manifestDir}
}

func (*Scanner) Source() string { return "epic" }

// Scan reads every .item manifest in the directory. Malformed manifests are
// logged and skipped.
func (s *Scanner) Scan() ([]scanner.Game, error) {
	var results []scanner.Game

	entries, err := os.ReadDir(s.manifestDir)
	if err != nil {
		log.Error().Err(err).Str("dir", s.manifestDir).Msg("error listing Epic manifest directory")
		return results, nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".item") {
			continue
		}

		path := filepath.Join(s.manifestDir, entry.Name())
		//nolint:gosec // Safe: reads Epic manifest files for game library scanning
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Msgf("error reading Epic manifest: %s", path)
			continue
		}

		var item itemManifest
		if err := json.Unmarshal(data, &item); err != nil {
			log.Error().Err(err).Msgf("error parsing Epic manifest: %s", path)
			continue
		}
		if item.DisplayName == "" || item.AppName == "" {
			continue
		}

		var exePath string
		if item.InstallLocation != "" && item.LaunchExecutable != "" {
			exePath = filepath.Join(item.InstallLocation, item.LaunchExecutable)
		}

		results = append(results, scanner.Game{
			Source:     "epic",
			AppID:      item.AppName,
			Name:       item.DisplayName,
			InstallDir: item.InstallLocation,
			ExePath:    exePath,
			LaunchURI:  "com.epicgames.launcher://apps/" + item.AppName + "?action=launch&silent=true",
		})
	}

	return results, nil
}
