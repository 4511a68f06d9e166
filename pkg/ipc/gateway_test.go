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

package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PlaydeckProject/playdeck-core/pkg/config"
	"github.com/PlaydeckProject/playdeck-core/pkg/ipc/models"
	"github.com/PlaydeckProject/playdeck-core/pkg/process"
	"github.com/PlaydeckProject/playdeck-core/pkg/testing/mocks"
	"github.com/PlaydeckProject/playdeck-core/pkg/tracker"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireResponse mirrors models.Response with raw data for per-test decoding.
type wireResponse struct {
	Data      json.RawMessage `json:"data"`
	Error     *string         `json:"error"`
	Timestamp float64         `json:"timestamp"`
	Success   bool            `json:"success"`
}

type wireNotification struct {
	Data      json.RawMessage `json:"data"`
	Type      string          `json:"type"`
	Event     string          `json:"event"`
	Timestamp float64         `json:"timestamp"`
}

type gatewayHarness struct {
	t       *testing.T
	query   *mocks.FakeProcessQuery
	tracker *tracker.Tracker
	clock   *clockwork.FakeClock
	ns      chan models.Notification
	in      *io.PipeWriter
	out     *bufio.Scanner
	done    chan error
	cancel  context.CancelFunc
}

func newGatewayHarness(t *testing.T, opts ...Option) *gatewayHarness {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	query := mocks.NewFakeProcessQuery()
	clock := clockwork.NewFakeClock()
	ns := make(chan models.Notification, 16)
	tr := tracker.New(query, tracker.WithClock(clock), tracker.WithNotifications(ns))

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	opts = append([]Option{WithClock(clock)}, opts...)
	g := New(cfg, tr, ns, inR, outW, opts...)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- g.Run(ctx)
	}()

	h := &gatewayHarness{
		t:       t,
		query:   query,
		tracker: tr,
		clock:   clock,
		ns:      ns,
		in:      inW,
		out:     bufio.NewScanner(outR),
		done:    done,
		cancel:  cancel,
	}
	t.Cleanup(func() {
		cancel()
		_ = inW.Close()
		_ = outR.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("gateway did not shut down")
		}
	})

	// Consume the ready line so tests start from a clean stream.
	ready := h.readResponse()
	require.True(t, ready.Success)
	return h
}

func (h *gatewayHarness) send(line string) {
	h.t.Helper()
	_, err := h.in.Write([]byte(line + "\n"))
	require.NoError(h.t, err)
}

func (h *gatewayHarness) readLine() []byte {
	h.t.Helper()
	require.True(h.t, h.out.Scan(), "expected another output line")
	return h.out.Bytes()
}

func (h *gatewayHarness) readResponse() wireResponse {
	h.t.Helper()
	var resp wireResponse
	require.NoError(h.t, json.Unmarshal(h.readLine(), &resp))
	return resp
}

func (h *gatewayHarness) readNotification() wireNotification {
	h.t.Helper()
	var n wireNotification
	require.NoError(h.t, json.Unmarshal(h.readLine(), &n))
	return n
}

func TestGateway_PingPong(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "ping"}`)

	resp := h.readResponse()
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{"message": "pong"}`, string(resp.Data))
	assert.Positive(t, resp.Timestamp)
}

func TestGateway_InvalidJSON(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "ping"`)

	resp := h.readResponse()
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.True(t, strings.HasPrefix(*resp.Error, "Invalid JSON: "))

	// The stream keeps working after a bad line.
	h.send(`{"command": "ping"}`)
	assert.True(t, h.readResponse().Success)
}

func TestGateway_UnknownCommand(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "frobnicate"}`)

	resp := h.readResponse()
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Unknown command: frobnicate", *resp.Error)
}

func TestGateway_EmptyLinesIgnored(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send("")
	h.send(`{"command": "ping"}`)

	assert.True(t, h.readResponse().Success)
}

func TestGateway_StartTrackingImmediate(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.query.Add(process.Info{PID: 100, Name: "game", Exe: "/games/game", CreateTime: 1000})

	h.send(`{"command": "start_tracking", "params": {"session_id": 1, "exe_path": "/games/game", "game_name": "Rogue"}}`)

	resp := h.readResponse()
	require.True(t, resp.Success)
	var data models.StartTrackingResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.TrackingStarted)
	assert.False(t, data.Pending)
	assert.Equal(t, models.SessionID(1), data.SessionID)
	assert.Equal(t, "Rogue", data.GameName)
}

func TestGateway_StartTrackingPendingThenStarted(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "start_tracking", "params": {"session_id": 1, "exe_path": "steam://rungameid/440", "game_name": "Team Fortress 2"}}`)

	resp := h.readResponse()
	require.True(t, resp.Success)
	var data models.StartTrackingResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.False(t, data.TrackingStarted)
	assert.True(t, data.Pending)
	assert.Equal(t, "Waiting for process to start", data.Message)

	// The process appears; the next monitor tick resolves the session and a
	// tracking_started notification goes out on the same stream.
	h.query.Add(process.Info{PID: 200, Name: "hl2_linux", Exe: "/games/tf2/hl2_linux", CreateTime: 5000})
	h.tracker.Tick(t.Context())

	n := h.readNotification()
	assert.Equal(t, models.NotificationType, n.Type)
	assert.Equal(t, models.EventTrackingStarted, n.Event)
	var params models.TrackingStartedParams
	require.NoError(t, json.Unmarshal(n.Data, &params))
	assert.Equal(t, models.SessionID(1), params.SessionID)
	assert.Equal(t, "Team Fortress 2", params.GameName)
}

func TestGateway_StartTrackingNoWait(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "start_tracking", "params": {"session_id": 1, "exe_path": "/games/missing", "wait_for_process": false}}`)

	resp := h.readResponse()
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Process not found: /games/missing", *resp.Error)
}

func TestGateway_StartTrackingRequiresSessionID(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "start_tracking", "params": {"exe_path": "/games/game"}}`)

	resp := h.readResponse()
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "session_id is required", *resp.Error)
}

func TestGateway_StopTrackingPending(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "start_tracking", "params": {"session_id": 7, "exe_path": "/games/missing", "game_name": "Slow Starter"}}`)
	require.True(t, h.readResponse().Success)

	h.send(`{"command": "stop_tracking", "params": {"session_id": 7}}`)

	resp := h.readResponse()
	require.True(t, resp.Success)
	var data models.StopTrackingResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "Pending tracking cancelled", data.Message)
	assert.Zero(t, data.Runtime)
}

func TestGateway_StopTrackingActive(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.query.Add(process.Info{PID: 100, Name: "game", Exe: "/games/game", CreateTime: 1000})
	h.send(`{"command": "start_tracking", "params": {"session_id": 1, "exe_path": "/games/game", "game_name": "Game"}}`)
	require.True(t, h.readResponse().Success)

	h.clock.Advance(75 * time.Second)
	h.send(`{"command": "stop_tracking", "params": {"session_id": 1}}`)

	resp := h.readResponse()
	require.True(t, resp.Success)
	var data models.StopTrackingResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, int64(75), data.Runtime)
	assert.Empty(t, data.Message)
}

func TestGateway_CheckSessionUnknown(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.send(`{"command": "check_session", "params": {"session_id": 42}}`)

	resp := h.readResponse()
	require.True(t, resp.Success)
	var data models.CheckSessionResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.False(t, data.IsRunning)
	assert.Zero(t, data.Runtime)
}

func TestGateway_GetAllSessions(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.query.Add(process.Info{PID: 100, Name: "game", Exe: "/games/game", CreateTime: 1000})
	h.send(`{"command": "start_tracking", "params": {"session_id": 1, "exe_path": "/games/game", "game_name": "Game"}}`)
	require.True(t, h.readResponse().Success)
	h.send(`{"command": "start_tracking", "params": {"session_id": 2, "exe_path": "/games/other", "game_name": "Other"}}`)
	require.True(t, h.readResponse().Success)

	h.send(`{"command": "get_all_sessions"}`)

	resp := h.readResponse()
	require.True(t, resp.Success)
	var data models.AllSessionsResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Sessions, 2)
}

func TestGateway_CheckAll(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	h.query.Add(process.Info{PID: 100, Name: "game", Exe: "/games/game", CreateTime: 1000})
	h.send(`{"command": "start_tracking", "params": {"session_id": 1, "exe_path": "/games/game", "game_name": "Game"}}`)
	require.True(t, h.readResponse().Success)

	h.send(`{"command": "check_all"}`)

	resp := h.readResponse()
	require.True(t, resp.Success)
	// SessionID map keys marshal as JSON object keys.
	assert.JSONEq(t, `{"status": {"1": true}}`, string(resp.Data))
}

func TestGateway_Shutdown(t *testing.T) {
	t.Parallel()

	shutdownCalled := make(chan struct{})
	h := newGatewayHarness(t, WithShutdownFunc(func() { close(shutdownCalled) }))

	h.send(`{"command": "shutdown"}`)

	resp := h.readResponse()
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"message": "shutting down"}`, string(resp.Data))

	select {
	case <-shutdownCalled:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown func was not invoked")
	}

	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not exit after shutdown")
	}
}

func TestGateway_ExitsOnInputClose(t *testing.T) {
	t.Parallel()

	h := newGatewayHarness(t)
	require.NoError(t, h.in.Close())

	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not exit on input EOF")
	}
}
