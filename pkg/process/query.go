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

package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// SystemQuery implements Query using gopsutil.
type SystemQuery struct{}

// NewSystemQuery returns a Query backed by the real OS process table.
func NewSystemQuery() *SystemQuery {
	return &SystemQuery{}
}

func (*SystemQuery) List(ctx context.Context) ([]Info, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	infos := make([]Info, 0, len(procs))
	for _, p := range procs {
		// Fields can fail individually for processes we lack permission to
		// inspect or that exited mid-enumeration. Name and create time are
		// required; exe path is optional (often denied for system processes).
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		createTime, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			continue
		}
		exe, err := p.ExeWithContext(ctx)
		if err != nil {
			exe = ""
		}

		infos = append(infos, Info{
			PID:        p.Pid,
			Name:       name,
			Exe:        exe,
			CreateTime: createTime,
		})
	}

	return infos, nil
}

func (*SystemQuery) IsAlive(ctx context.Context, pid int32, createTime int64) bool {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return false
	}

	currentCreateTime, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return false
	}

	// A different create time means the PID has been reused by an unrelated
	// process since we fingerprinted it.
	if currentCreateTime != createTime {
		return false
	}

	statuses, err := p.StatusWithContext(ctx)
	if err != nil {
		// Process exists and matches the fingerprint; status is best-effort.
		return true
	}
	for _, s := range statuses {
		if strings.EqualFold(s, process.Zombie) {
			return false
		}
	}

	return true
}
