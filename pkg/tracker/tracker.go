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

// Package tracker maintains play sessions for launched games: resolving a
// launch to a live OS process, holding sessions whose process has not
// appeared yet, and measuring how long each process actually ran.
package tracker

import (
	"context"
	"time"

	"github.com/PlaydeckProject/playdeck-core/pkg/helpers/syncutil"
	"github.com/PlaydeckProject/playdeck-core/pkg/ipc/models"
	"github.com/PlaydeckProject/playdeck-core/pkg/ipc/notifications"
	"github.com/PlaydeckProject/playdeck-core/pkg/process"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Session is an actively tracked game process. The (PID, CreateTime) pair
// fingerprints the process so a recycled PID is not mistaken for the game.
type Session struct {
	StartTime  time.Time
	GameName   string
	ExePath    string
	CreateTime int64
	ID         models.SessionID
	PID        int32
}

// PendingSession is a session whose process has not been located yet.
// Resolution is retried every monitor tick until it succeeds or the timeout
// budget runs out.
type PendingSession struct {
	EnqueuedAt time.Time
	GameName   string
	ExePath    string
	Timeout    time.Duration
	ID         models.SessionID
}

// Sink receives finished sessions for persistence. Implementations must not
// call back into the Tracker.
type Sink interface {
	RecordSession(ctx context.Context, gameName, exePath string, startedAt time.Time, runtime time.Duration) error
}

// Tracker owns the active and pending session sets. All mutation goes
// through its methods under one mutex; a session id is never present in both
// sets at once.
type Tracker struct {
	query         process.Query
	resolver      *process.Resolver
	clock         clockwork.Clock
	notifications chan<- models.Notification
	sink          Sink
	active        map[models.SessionID]*Session
	pending       map[models.SessionID]*PendingSession
	mu            syncutil.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock used for session timing. Defaults to the real
// clock; tests inject a fake.
func WithClock(clock clockwork.Clock) Option {
	return func(t *Tracker) {
		t.clock = clock
	}
}

// WithNotifications sets the channel monitor ticks emit lifecycle events on.
func WithNotifications(ns chan<- models.Notification) Option {
	return func(t *Tracker) {
		t.notifications = ns
	}
}

// WithSink sets the persistence sink for finished sessions.
func WithSink(sink Sink) Option {
	return func(t *Tracker) {
		t.sink = sink
	}
}

// New creates a Tracker over the given process query.
func New(query process.Query, opts ...Option) *Tracker {
	t := &Tracker{
		query:    query,
		resolver: process.NewResolver(query),
		clock:    clockwork.NewRealClock(),
		active:   make(map[models.SessionID]*Session),
		pending:  make(map[models.SessionID]*PendingSession),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartTracking resolves exePath to a live process and registers an active
// session for it. Returns false if no process was found, which is the normal
// case right after a URL-protocol launch.
//
// Re-registering an id that is already active overwrites the prior entry
// (last-write-wins); any pending entry under the same id is discarded.
func (t *Tracker) StartTracking(ctx context.Context, id models.SessionID, exePath, gameName string) bool {
	info, ok := t.resolver.Resolve(ctx, exePath)
	if !ok {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, id)
	t.active[id] = &Session{
		ID:         id,
		GameName:   gameName,
		ExePath:    exePath,
		PID:        info.PID,
		CreateTime: info.CreateTime,
		StartTime:  t.clock.Now(),
	}

	log.Info().
		Int64("sessionID", int64(id)).
		Str("game", gameName).
		Int32("pid", info.PID).
		Msg("started tracking game process")

	return true
}

// Enqueue registers a pending session that the monitor loop will try to
// resolve until timeout elapses. Any active entry under the same id is
// discarded so the id lives in exactly one set.
func (t *Tracker) Enqueue(id models.SessionID, exePath, gameName string, timeout time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, id)
	t.pending[id] = &PendingSession{
		ID:         id,
		GameName:   gameName,
		ExePath:    exePath,
		EnqueuedAt: t.clock.Now(),
		Timeout:    timeout,
	}

	log.Info().
		Int64("sessionID", int64(id)).
		Str("game", gameName).
		Dur("timeout", timeout).
		Msg("process not found, session queued pending launch")
}

// IsRunning reports whether the session's process is still alive and still
// the same process that was fingerprinted at registration.
func (t *Tracker) IsRunning(ctx context.Context, id models.SessionID) bool {
	t.mu.Lock()
	s, ok := t.active[id]
	if !ok {
		t.mu.Unlock()
		return false
	}
	pid, createTime := s.PID, s.CreateTime
	t.mu.Unlock()

	return t.query.IsAlive(ctx, pid, createTime)
}

// Runtime returns the elapsed seconds since the session started tracking,
// or 0 for an unknown id.
func (t *Tracker) Runtime(id models.SessionID) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.active[id]
	if !ok {
		return 0
	}
	return int64(t.clock.Now().Sub(s.StartTime) / time.Second)
}

// StopTracking removes the session and returns its final runtime in
// seconds. A pending session is cancelled silently (wasPending true, runtime
// 0). Stopping an unknown id is idempotent and returns 0.
func (t *Tracker) StopTracking(ctx context.Context, id models.SessionID) (runtime int64, wasPending bool) {
	t.mu.Lock()

	if _, ok := t.pending[id]; ok {
		delete(t.pending, id)
		t.mu.Unlock()
		log.Info().Int64("sessionID", int64(id)).Msg("pending session cancelled")
		return 0, true
	}

	s, ok := t.active[id]
	if !ok {
		t.mu.Unlock()
		return 0, false
	}
	elapsed := t.clock.Now().Sub(s.StartTime)
	delete(t.active, id)
	t.mu.Unlock()

	log.Info().
		Int64("sessionID", int64(id)).
		Str("game", s.GameName).
		Dur("runtime", elapsed).
		Msg("stopped tracking game process")

	t.record(ctx, s, elapsed)

	return int64(elapsed / time.Second), false
}

// CheckSession reports the current state of one session. Pending sessions
// report not-running with status "pending"; unknown ids report not-running
// with runtime 0.
func (t *Tracker) CheckSession(ctx context.Context, id models.SessionID) models.CheckSessionResponse {
	t.mu.Lock()
	if _, ok := t.pending[id]; ok {
		t.mu.Unlock()
		return models.CheckSessionResponse{
			SessionID: id,
			IsRunning: false,
			Status:    "pending",
			Runtime:   0,
		}
	}

	s, ok := t.active[id]
	if !ok {
		t.mu.Unlock()
		return models.CheckSessionResponse{SessionID: id, IsRunning: false, Runtime: 0}
	}
	pid, createTime := s.PID, s.CreateTime
	start := s.StartTime
	t.mu.Unlock()

	running := t.query.IsAlive(ctx, pid, createTime)
	var runtime int64
	if running {
		runtime = int64(t.clock.Now().Sub(start) / time.Second)
	}

	return models.CheckSessionResponse{
		SessionID: id,
		IsRunning: running,
		Runtime:   runtime,
	}
}

// Snapshot returns all live active sessions plus all pending sessions.
func (t *Tracker) Snapshot(ctx context.Context) []models.SessionEntry {
	t.mu.Lock()
	activeCopies := make([]Session, 0, len(t.active))
	for _, s := range t.active {
		activeCopies = append(activeCopies, *s)
	}
	pendingCopies := make([]PendingSession, 0, len(t.pending))
	for _, p := range t.pending {
		pendingCopies = append(pendingCopies, *p)
	}
	t.mu.Unlock()

	now := t.clock.Now()
	entries := make([]models.SessionEntry, 0, len(activeCopies)+len(pendingCopies))

	for i := range activeCopies {
		s := &activeCopies[i]
		if !t.query.IsAlive(ctx, s.PID, s.CreateTime) {
			continue
		}
		entries = append(entries, models.SessionEntry{
			SessionID: s.ID,
			GameName:  s.GameName,
			PID:       s.PID,
			Runtime:   int64(now.Sub(s.StartTime) / time.Second),
		})
	}

	for i := range pendingCopies {
		p := &pendingCopies[i]
		entries = append(entries, models.SessionEntry{
			SessionID:   p.ID,
			GameName:    p.GameName,
			Status:      "pending",
			ElapsedWait: now.Sub(p.EnqueuedAt).Seconds(),
		})
	}

	return entries
}

// CheckAll reports liveness for every active session without mutating
// anything. Cleanup of dead sessions is the monitor loop's job.
func (t *Tracker) CheckAll(ctx context.Context) map[models.SessionID]bool {
	t.mu.Lock()
	fingerprints := make(map[models.SessionID]*Session, len(t.active))
	for id, s := range t.active {
		fingerprints[id] = s
	}
	t.mu.Unlock()

	status := make(map[models.SessionID]bool, len(fingerprints))
	for id, s := range fingerprints {
		status[id] = t.query.IsAlive(ctx, s.PID, s.CreateTime)
	}
	return status
}

// Tick runs one monitor pass: first a liveness sweep over active sessions,
// then a resolution/expiry sweep over pending sessions. Both sweeps run
// under the tracker mutex so they never observe a set mutated mid-iteration
// by the command loop; events are emitted after the lock is released.
func (t *Tracker) Tick(ctx context.Context) {
	type endedSession struct {
		session *Session
		elapsed time.Duration
	}

	var ended []endedSession
	var started []*Session
	var expired []*PendingSession

	now := t.clock.Now()

	t.mu.Lock()

	for id, s := range t.active {
		if t.query.IsAlive(ctx, s.PID, s.CreateTime) {
			continue
		}
		delete(t.active, id)
		ended = append(ended, endedSession{session: s, elapsed: now.Sub(s.StartTime)})
	}

	for id, p := range t.pending {
		if now.Sub(p.EnqueuedAt) > p.Timeout {
			delete(t.pending, id)
			expired = append(expired, p)
			continue
		}

		info, ok := t.resolver.Resolve(ctx, p.ExePath)
		if !ok {
			continue
		}

		delete(t.pending, id)
		s := &Session{
			ID:         id,
			GameName:   p.GameName,
			ExePath:    p.ExePath,
			PID:        info.PID,
			CreateTime: info.CreateTime,
			StartTime:  now,
		}
		t.active[id] = s
		started = append(started, s)
	}

	t.mu.Unlock()

	for _, e := range ended {
		log.Info().
			Int64("sessionID", int64(e.session.ID)).
			Str("game", e.session.GameName).
			Dur("runtime", e.elapsed).
			Msg("game process ended")
		if t.notifications != nil {
			notifications.ProcessEnded(t.notifications, e.session.ID, int64(e.elapsed/time.Second))
		}
		t.record(ctx, e.session, e.elapsed)
	}

	for _, s := range started {
		log.Info().
			Int64("sessionID", int64(s.ID)).
			Str("game", s.GameName).
			Int32("pid", s.PID).
			Msg("pending session resolved, tracking started")
		if t.notifications != nil {
			notifications.TrackingStarted(t.notifications, s.ID, s.GameName)
		}
	}

	for _, p := range expired {
		log.Warn().
			Int64("sessionID", int64(p.ID)).
			Str("game", p.GameName).
			Msg("pending session timed out waiting for process")
		if t.notifications != nil {
			notifications.TrackingFailed(t.notifications, p.ID, p.GameName, "timeout")
		}
	}
}

func (t *Tracker) record(ctx context.Context, s *Session, elapsed time.Duration) {
	if t.sink == nil {
		return
	}
	if err := t.sink.RecordSession(ctx, s.GameName, s.ExePath, s.StartTime, elapsed); err != nil {
		log.Warn().Err(err).Str("game", s.GameName).Msg("failed to persist play session")
	}
}
