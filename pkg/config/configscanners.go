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

package config

// Scanners configures game library discovery.
type Scanners struct {
	SteamDirs    []string `toml:"steam_dirs,omitempty,multiline"`
	EpicManifest string   `toml:"epic_manifest_dir,omitempty"`
}

// SteamDirs returns extra steamapps directories to scan in addition to the
// platform defaults. Paths are used as-is.
func (c *Instance) SteamDirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dirs := make([]string, len(c.vals.Scanners.SteamDirs))
	copy(dirs, c.vals.Scanners.SteamDirs)
	return dirs
}

// EpicManifestDir returns the Epic Games manifests directory override.
// Returns an empty string to use the platform default.
func (c *Instance) EpicManifestDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scanners.EpicManifest
}
