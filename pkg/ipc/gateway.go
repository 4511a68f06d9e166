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

// Package ipc implements the line-delimited JSON command protocol spoken
// with the host launcher over stdin/stdout. Each input line is one command,
// each output line is one response or notification.
package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	"github.com/PlaydeckProject/playdeck-core/pkg/helpers/syncutil"
	"github.com/PlaydeckProject/playdeck-core/pkg/ipc/models"
	"github.com/PlaydeckProject/playdeck-core/pkg/tracker"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// maxLineSize bounds a single command line. Anything larger is a protocol
// violation, not a real command.
const maxLineSize = 1024 * 1024

// Gateway reads commands from in and writes responses and notifications to
// out. Responses are synchronous with their command; notifications arrive on
// the notifications channel from the monitor loop and are interleaved on the
// same stream, serialized by a write mutex.
type Gateway struct {
	cfg             *config.Instance
	tracker         *tracker.Tracker
	clock           clockwork.Clock
	in              io.Reader
	out             io.Writer
	notifications   <-chan models.Notification
	requestShutdown func()
	writeMu         syncutil.Mutex
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock sets the clock used for response timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(g *Gateway) {
		g.clock = clock
	}
}

// WithShutdownFunc sets the function invoked when a shutdown command is
// received, after its response has been written.
func WithShutdownFunc(fn func()) Option {
	return func(g *Gateway) {
		g.requestShutdown = fn
	}
}

// New creates a Gateway over the given streams. The notifications channel
// may be nil if no monitor loop is attached.
func New(
	cfg *config.Instance,
	tr *tracker.Tracker,
	ns <-chan models.Notification,
	in io.Reader,
	out io.Writer,
	opts ...Option,
) *Gateway {
	g := &Gateway{
		cfg:           cfg,
		tracker:       tr,
		clock:         clockwork.NewRealClock(),
		in:            in,
		out:           out,
		notifications: ns,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run services the command stream until the input closes, the context is
// cancelled, or a shutdown command arrives. The ready response is written
// before the first command is read.
func (g *Gateway) Run(ctx context.Context) error {
	writerCtx, stopWriter := context.WithCancel(ctx)
	defer stopWriter()

	var wg sync.WaitGroup
	if g.notifications != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.writeNotifications(writerCtx)
		}()
	}
	defer wg.Wait()

	g.writeResponse(successResponse(models.MessageResponse{Message: "ready"}))

	// The scanner blocks on reads, so it lives in its own goroutine and the
	// command loop stays selectable on ctx. The goroutine parks until the
	// input closes if the context is cancelled mid-read.
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(g.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- err
		}
	}()

	for {
		var line []byte
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("reading command stream: %w", err)
				default:
					return nil
				}
			}
			line = l
		}

		if len(line) == 0 {
			continue
		}

		var cmd models.Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			log.Warn().Err(err).Msg("discarding malformed command line")
			g.writeResponse(errorResponse("Invalid JSON: " + err.Error()))
			continue
		}

		resp, stop := g.dispatch(ctx, &cmd)
		g.writeResponse(resp)

		if stop {
			if g.requestShutdown != nil {
				g.requestShutdown()
			}
			return nil
		}
	}
}

func (g *Gateway) writeNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-g.notifications:
			n.Type = models.NotificationType
			n.Timestamp = g.now()
			g.writeLine(&n)
		}
	}
}

// dispatch routes one command to its handler. A handler panic is converted
// into an error response so one bad command cannot take the stream down.
func (g *Gateway) dispatch(ctx context.Context, cmd *models.Command) (resp models.Response, stop bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("command", cmd.Command).Msg("command handler panicked")
			resp = errorResponse(fmt.Sprintf("internal error: %v", r))
			stop = false
		}
	}()

	switch cmd.Command {
	case models.CmdStartTracking:
		return g.handleStartTracking(ctx, cmd.Params), false
	case models.CmdStopTracking:
		return g.handleStopTracking(ctx, cmd.Params), false
	case models.CmdCheckSession:
		return g.handleCheckSession(ctx, cmd.Params), false
	case models.CmdGetAllSessions:
		return successResponse(models.AllSessionsResponse{
			Sessions: g.tracker.Snapshot(ctx),
		}), false
	case models.CmdCheckAll:
		return successResponse(models.CheckAllResponse{
			Status: g.tracker.CheckAll(ctx),
		}), false
	case models.CmdPing:
		return successResponse(models.MessageResponse{Message: "pong"}), false
	case models.CmdShutdown:
		log.Info().Msg("shutdown command received")
		return successResponse(models.MessageResponse{Message: "shutting down"}), true
	default:
		return errorResponse("Unknown command: " + cmd.Command), false
	}
}

func (g *Gateway) handleStartTracking(ctx context.Context, raw json.RawMessage) models.Response {
	var params models.StartTrackingParams
	if resp, ok := parseParams(raw, &params); !ok {
		return resp
	}
	if params.SessionID == nil {
		return errorResponse("session_id is required")
	}

	id := *params.SessionID
	gameName := params.GameName
	if gameName == "" {
		gameName = "Unknown Game"
	}
	waitForProcess := true
	if params.WaitForProcess != nil {
		waitForProcess = *params.WaitForProcess
	}
	timeout := g.cfg.PendingTimeout()
	if params.Timeout != nil {
		timeout = time.Duration(*params.Timeout * float64(time.Second))
	}

	if g.tracker.StartTracking(ctx, id, params.ExePath, gameName) {
		return successResponse(models.StartTrackingResponse{
			TrackingStarted: true,
			SessionID:       id,
			GameName:        gameName,
		})
	}

	if waitForProcess {
		g.tracker.Enqueue(id, params.ExePath, gameName, timeout)
		return successResponse(models.StartTrackingResponse{
			TrackingStarted: false,
			Pending:         true,
			SessionID:       id,
			GameName:        gameName,
			Message:         "Waiting for process to start",
		})
	}

	return errorResponse("Process not found: " + params.ExePath)
}

func (g *Gateway) handleStopTracking(ctx context.Context, raw json.RawMessage) models.Response {
	var params models.SessionIDParams
	if resp, ok := parseParams(raw, &params); !ok {
		return resp
	}
	if params.SessionID == nil {
		return errorResponse("session_id is required")
	}

	runtime, wasPending := g.tracker.StopTracking(ctx, *params.SessionID)
	resp := models.StopTrackingResponse{
		SessionID: *params.SessionID,
		Runtime:   runtime,
	}
	if wasPending {
		resp.Message = "Pending tracking cancelled"
	}
	return successResponse(resp)
}

func (g *Gateway) handleCheckSession(ctx context.Context, raw json.RawMessage) models.Response {
	var params models.SessionIDParams
	if resp, ok := parseParams(raw, &params); !ok {
		return resp
	}
	if params.SessionID == nil {
		return errorResponse("session_id is required")
	}
	return successResponse(g.tracker.CheckSession(ctx, *params.SessionID))
}

// parseParams unmarshals command params, treating absent params as an empty
// object. On failure ok is false and resp carries the error response.
func parseParams(raw json.RawMessage, dst any) (resp models.Response, ok bool) {
	if len(raw) == 0 {
		return models.Response{}, true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errorResponse("Invalid params: " + err.Error()), false
	}
	return models.Response{}, true
}

func successResponse(data any) models.Response {
	return models.Response{Success: true, Data: data}
}

func errorResponse(msg string) models.Response {
	return models.Response{Success: false, Error: &msg}
}

func (g *Gateway) now() float64 {
	return float64(g.clock.Now().UnixNano()) / float64(time.Second)
}

func (g *Gateway) writeResponse(resp models.Response) {
	resp.Timestamp = g.now()
	g.writeLine(&resp)
}

// writeLine marshals v and writes it as one newline-terminated line. Write
// failures are logged and swallowed; the host closing its end surfaces as
// EOF on the read side.
func (g *Gateway) writeLine(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode output message")
		return
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	if _, err := g.out.Write(append(payload, '\n')); err != nil {
		log.Warn().Err(err).Msg("failed to write output message")
	}
}
