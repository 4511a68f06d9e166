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

// Package notifications builds session lifecycle notifications and hands
// them to the gateway's writer. The timestamp and type fields are stamped at
// write time by the gateway.
package notifications

import "github.com/PlaydeckProject/playdeck-core/pkg/ipc/models"

func TrackingStarted(ns chan<- models.Notification, sessionID models.SessionID, gameName string) {
	ns <- models.Notification{
		Event: models.EventTrackingStarted,
		Data: models.TrackingStartedParams{
			SessionID: sessionID,
			GameName:  gameName,
		},
	}
}

func TrackingFailed(ns chan<- models.Notification, sessionID models.SessionID, gameName, reason string) {
	ns <- models.Notification{
		Event: models.EventTrackingFailed,
		Data: models.TrackingFailedParams{
			SessionID: sessionID,
			GameName:  gameName,
			Reason:    reason,
		},
	}
}

func ProcessEnded(ns chan<- models.Notification, sessionID models.SessionID, runtime int64) {
	ns <- models.Notification{
		Event: models.EventProcessEnded,
		Data: models.ProcessEndedParams{
			SessionID: sessionID,
			Runtime:   runtime,
		},
	}
}
