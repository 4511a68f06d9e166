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

import (
	"fmt"
	"time"
)

const (
	// DefaultPollInterval is how often the monitor loop checks process
	// liveness and retries pending session resolution.
	DefaultPollInterval = 2 * time.Second

	// DefaultPendingTimeout is how long a pending session waits for its
	// process to appear before tracking is abandoned.
	DefaultPendingTimeout = 5 * time.Minute
)

// Tracker configures the process tracking monitor loop.
type Tracker struct {
	PollInterval   string `toml:"poll_interval,omitempty"`
	PendingTimeout string `toml:"pending_timeout,omitempty"`
}

// PollInterval returns the monitor loop poll interval.
// Returns the default if not configured or if the duration cannot be parsed.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tracker.PollInterval == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(c.vals.Tracker.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// SetPollInterval sets the monitor poll interval from a duration string
// (e.g., "2s", "30s"). Returns an error if the duration string is invalid.
func (c *Instance) SetPollInterval(duration string) error {
	if duration != "" {
		_, err := time.ParseDuration(duration)
		if err != nil {
			return fmt.Errorf("invalid poll interval duration: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tracker.PollInterval = duration
	return nil
}

// PendingTimeout returns how long pending sessions wait for their process.
// Returns the default if not configured or if the duration cannot be parsed.
func (c *Instance) PendingTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tracker.PendingTimeout == "" {
		return DefaultPendingTimeout
	}
	d, err := time.ParseDuration(c.vals.Tracker.PendingTimeout)
	if err != nil || d <= 0 {
		return DefaultPendingTimeout
	}
	return d
}

// SetPendingTimeout sets the pending session timeout from a duration string
// (e.g., "300s", "10m"). Returns an error if the duration string is invalid.
func (c *Instance) SetPendingTimeout(duration string) error {
	if duration != "" {
		_, err := time.ParseDuration(duration)
		if err != nil {
			return fmt.Errorf("invalid pending timeout duration: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tracker.PendingTimeout = duration
	return nil
}
