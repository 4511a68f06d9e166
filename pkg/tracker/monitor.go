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

package tracker

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Monitor drives the tracker's periodic tick. It runs until its context is
// cancelled; cancellation is cooperative and takes effect at the next
// wakeup.
type Monitor struct {
	tracker  *Tracker
	clock    clockwork.Clock
	interval time.Duration
}

// NewMonitor creates a monitor ticking at the given interval. If clock is
// nil the real clock is used.
func NewMonitor(t *Tracker, interval time.Duration, clock clockwork.Clock) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		tracker:  t,
		clock:    clock,
		interval: interval,
	}
}

// Run blocks, ticking the tracker until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", m.interval).Msg("process monitor started")

	for {
		select {
		case <-ticker.Chan():
			m.tracker.Tick(ctx)
		case <-ctx.Done():
			log.Info().Msg("process monitor stopped")
			return
		}
	}
}
