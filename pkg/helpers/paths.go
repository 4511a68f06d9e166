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

package helpers

import (
	"path/filepath"
	"strings"

	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	"github.com/adrg/xdg"
)

// ConfigDir returns the directory where the config file is stored.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir returns the directory where databases and other app data live.
func DataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

// LogDir returns the directory for log files.
func LogDir() string {
	return filepath.Join(xdg.StateHome, config.AppName)
}

// NormalizePathForComparison normalizes a path for cross-platform
// case-insensitive comparison. Converts to forward slashes and lowercases so
// matching works for FAT32/exFAT filesystems on all platforms.
func NormalizePathForComparison(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	return strings.ToLower(p)
}
