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

// Package scanner defines the shared result type for installed game
// discovery across launcher backends.
package scanner

// Game is one installed game found by a launcher scan.
type Game struct {
	Source     string `json:"source"`
	AppID      string `json:"app_id"`
	Name       string `json:"name"`
	InstallDir string `json:"install_dir,omitempty"`
	ExePath    string `json:"exe_path,omitempty"`
	LaunchURI  string `json:"launch_uri,omitempty"`
}

// Scanner discovers installed games for one launcher backend.
type Scanner interface {
	Source() string
	Scan() ([]Game, error)
}
