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

// Playtime configures play time history persistence.
type Playtime struct {
	Retention *int `toml:"retention,omitempty"`
}

// PlaytimeRetention returns the number of days to retain play time history.
// Returns 0 if cleanup is disabled, or 365 (1 year) by default.
func (c *Instance) PlaytimeRetention() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playtime.Retention == nil {
		return 365 // Default: keep 365 days (1 year) of play time history
	}
	return *c.vals.Playtime.Retention
}

// SetPlaytimeRetention sets the number of days to retain play time history.
// Pass 0 to disable cleanup.
func (c *Instance) SetPlaytimeRetention(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Playtime.Retention = &days
}
