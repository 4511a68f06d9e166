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

// Package process abstracts OS process enumeration and identity checks so
// the tracking core stays platform-agnostic and testable with a fake query.
package process

import "context"

// Info describes one live OS process at enumeration time.
type Info struct {
	Exe        string
	Name       string
	CreateTime int64 // milliseconds since epoch
	PID        int32
}

// Query is the capability interface over the OS process table.
type Query interface {
	// List enumerates all live processes. Processes that vanish or deny
	// access mid-enumeration are skipped, not reported as errors.
	List(ctx context.Context) ([]Info, error)

	// IsAlive reports whether the process identified by the
	// (pid, createTime) fingerprint is still running. A live process with a
	// different create time is a PID reuse and reports false.
	IsAlive(ctx context.Context, pid int32, createTime int64) bool
}
