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

// Package models defines the wire types of the line-delimited JSON session
// protocol spoken with the host launcher application.
package models

import "encoding/json"

// Command method names accepted on the input stream.
const (
	CmdStartTracking  = "start_tracking"
	CmdStopTracking   = "stop_tracking"
	CmdCheckSession   = "check_session"
	CmdGetAllSessions = "get_all_sessions"
	CmdCheckAll       = "check_all"
	CmdPing           = "ping"
	CmdShutdown       = "shutdown"
)

// Notification event names emitted on the output stream.
const (
	EventTrackingStarted = "tracking_started"
	EventTrackingFailed  = "tracking_failed"
	EventProcessEnded    = "process_ended"
)

// NotificationType is the value of the "type" field that distinguishes
// notifications from command responses on the shared output stream.
const NotificationType = "notification"

// SessionID identifies one tracked play session. It is chosen by the host
// and opaque to the daemon; keeping it unique is the host's responsibility.
type SessionID int64

// Command is one request line from the host.
type Command struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is the synchronous reply to one command. Data and Error are
// always present on the wire, null when unset.
type Response struct {
	Data      any     `json:"data"`
	Error     *string `json:"error"`
	Timestamp float64 `json:"timestamp"`
	Success   bool    `json:"success"`
}

// Notification is an unsolicited event describing a state transition.
// Fire-and-forget; never stored.
type Notification struct {
	Data      any     `json:"data"`
	Type      string  `json:"type"`
	Event     string  `json:"event"`
	Timestamp float64 `json:"timestamp"`
}

// StartTrackingParams are the parameters of a start_tracking command.
type StartTrackingParams struct {
	SessionID      *SessionID `json:"session_id"`
	WaitForProcess *bool      `json:"wait_for_process"`
	Timeout        *float64   `json:"timeout"`
	ExePath        string     `json:"exe_path"`
	GameName       string     `json:"game_name"`
}

// SessionIDParams are the parameters of commands addressing one session.
type SessionIDParams struct {
	SessionID *SessionID `json:"session_id"`
}

// StartTrackingResponse reports the outcome of a start_tracking command.
type StartTrackingResponse struct {
	Message         string    `json:"message,omitempty"`
	SessionID       SessionID `json:"session_id"`
	TrackingStarted bool      `json:"tracking_started"`
	Pending         bool      `json:"pending,omitempty"`
	GameName        string    `json:"game_name"`
}

// StopTrackingResponse reports the final runtime of a stopped session.
type StopTrackingResponse struct {
	Message   string    `json:"message,omitempty"`
	SessionID SessionID `json:"session_id"`
	Runtime   int64     `json:"runtime"`
}

// CheckSessionResponse reports the current state of one session.
type CheckSessionResponse struct {
	Status    string    `json:"status,omitempty"`
	SessionID SessionID `json:"session_id"`
	Runtime   int64     `json:"runtime"`
	IsRunning bool      `json:"is_running"`
}

// SessionEntry is one session in a get_all_sessions snapshot. Active
// sessions carry pid and runtime; pending sessions carry status and how long
// they have been waiting.
type SessionEntry struct {
	Status      string    `json:"status,omitempty"`
	SessionID   SessionID `json:"session_id"`
	GameName    string    `json:"game_name"`
	PID         int32     `json:"pid,omitempty"`
	Runtime     int64     `json:"runtime,omitempty"`
	ElapsedWait float64   `json:"elapsed_wait,omitempty"`
}

// AllSessionsResponse is the get_all_sessions payload.
type AllSessionsResponse struct {
	Sessions []SessionEntry `json:"sessions"`
}

// CheckAllResponse maps each active session id to its liveness.
type CheckAllResponse struct {
	Status map[SessionID]bool `json:"status"`
}

// MessageResponse is a plain informational payload (ping, ready, shutdown).
type MessageResponse struct {
	Message string `json:"message"`
}

// TrackingStartedParams is the payload of a tracking_started notification.
type TrackingStartedParams struct {
	GameName  string    `json:"game_name"`
	SessionID SessionID `json:"session_id"`
}

// TrackingFailedParams is the payload of a tracking_failed notification.
type TrackingFailedParams struct {
	GameName  string    `json:"game_name"`
	Reason    string    `json:"reason"`
	SessionID SessionID `json:"session_id"`
}

// ProcessEndedParams is the payload of a process_ended notification.
type ProcessEndedParams struct {
	SessionID SessionID `json:"session_id"`
	Runtime   int64     `json:"runtime"`
}
