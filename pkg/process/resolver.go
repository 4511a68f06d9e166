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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Resolver locates a live process for a game launch. Launch commands are
// often URL protocols (steam://rungameid/X) with no PID attached, so
// resolution is expected to fail until the child process has spawned.
type Resolver struct {
	query Query
}

// NewResolver creates a Resolver over the given process query.
func NewResolver(query Query) *Resolver {
	return &Resolver{query: query}
}

// FindByPath finds a live process whose executable resolves to exePath.
// Returns the first match in OS enumeration order; if two processes share a
// resolved executable path the choice between them is arbitrary.
// Not finding a process is the common case right after launch and is
// reported as found=false, not an error.
func (r *Resolver) FindByPath(ctx context.Context, exePath string) (Info, bool) {
	if exePath == "" || strings.Contains(exePath, "://") {
		return Info{}, false
	}

	target := resolvePath(exePath)

	infos, err := r.query.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("process enumeration failed during path lookup")
		return Info{}, false
	}

	for i := range infos {
		if infos[i].Exe == "" {
			continue
		}
		if resolvePath(infos[i].Exe) == target {
			return infos[i], true
		}
	}

	return Info{}, false
}

// FindByName finds a live process by case-insensitive image name. Used only
// as a fallback when FindByPath fails, e.g. when reading the executable path
// of the target process is denied. Same first-match caveat as FindByPath.
func (r *Resolver) FindByName(ctx context.Context, name string) (Info, bool) {
	if name == "" {
		return Info{}, false
	}

	infos, err := r.query.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("process enumeration failed during name lookup")
		return Info{}, false
	}

	for i := range infos {
		if strings.EqualFold(infos[i].Name, name) {
			return infos[i], true
		}
	}

	return Info{}, false
}

// Resolve attempts to locate the process for exePath, first by full path and
// then by the executable's base name.
func (r *Resolver) Resolve(ctx context.Context, exePath string) (Info, bool) {
	if info, ok := r.FindByPath(ctx, exePath); ok {
		return info, true
	}

	if strings.Contains(exePath, "://") {
		return Info{}, false
	}

	// Launcher metadata can hand us paths written on another platform, so
	// split on both separators rather than the host's filepath.Base.
	base := exePath
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if base == "" || base == "." {
		return Info{}, false
	}

	return r.FindByName(ctx, base)
}

// resolvePath normalizes a path to an absolute, symlink-resolved, lowercased
// forward-slash form for comparison.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	p := filepath.ToSlash(filepath.Clean(abs))
	return strings.ToLower(p)
}
