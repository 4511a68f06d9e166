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

// Package mocks provides fake implementations of Playdeck Core interfaces
// for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/PlaydeckProject/playdeck-core/pkg/process"
)

// FakeProcessQuery is an in-memory process table implementing process.Query.
// Tests add and remove processes to simulate launches and exits.
type FakeProcessQuery struct {
	procs   map[int32]process.Info
	listErr error
	mu      sync.Mutex
}

// NewFakeProcessQuery creates an empty fake process table.
func NewFakeProcessQuery() *FakeProcessQuery {
	return &FakeProcessQuery{procs: make(map[int32]process.Info)}
}

// Add inserts a process into the fake table, replacing any existing entry
// with the same PID.
func (f *FakeProcessQuery) Add(info process.Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procs[info.PID] = info
}

// Remove deletes a process from the fake table, simulating process exit.
func (f *FakeProcessQuery) Remove(pid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.procs, pid)
}

// SetListError makes List return err until cleared with nil.
func (f *FakeProcessQuery) SetListError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *FakeProcessQuery) List(_ context.Context) ([]process.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	infos := make([]process.Info, 0, len(f.procs))
	for _, info := range f.procs {
		infos = append(infos, info)
	}
	return infos, nil
}

func (f *FakeProcessQuery) IsAlive(_ context.Context, pid int32, createTime int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.procs[pid]
	return ok && info.CreateTime == createTime
}
