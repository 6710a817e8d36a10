package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bitbeans/kaco/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore() *store.MemoryStore {
	ms := store.NewMemoryStore()
	ms.Update(store.Snapshot{
		Name:         "Roof",
		Address:      "192.168.1.40",
		CurrentPower: 4200,
		EnergyToday:  14.2,
		Serial:       "123456789",
		Model:        "Powador 8000xi",
		Status:       "Feed-in mode",
		StatusCode:   4,
	})
	ms.Update(store.Snapshot{
		Name:   "Garage",
		Serial: "no_serial",
		Model:  "no_model",
	})
	return ms
}

func TestHandleSnapshots(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots", nil)
	rec := httptest.NewRecorder()

	srv.handleSnapshots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var snaps []store.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snaps); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}

	byName := map[string]store.Snapshot{}
	for _, s := range snaps {
		byName[s.Name] = s
	}
	if byName["Roof"].CurrentPower != 4200 {
		t.Errorf("Roof.CurrentPower = %d, want 4200", byName["Roof"].CurrentPower)
	}
	// the placeholder inverter must still be a complete record
	if byName["Garage"].Serial != "no_serial" {
		t.Errorf("Garage.Serial = %q, want no_serial", byName["Garage"].Serial)
	}
}

func TestHandleSnapshots_MethodNotAllowed(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", nil)
	rec := httptest.NewRecorder()

	srv.handleSnapshots(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleIndex(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.handleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/snapshots") {
		t.Error("index page should link the snapshots API")
	}
}

func TestHandleIndex_NonRootPath(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.handleIndex(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSSE_SendsCurrentSnapshots(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil)
	rec := httptest.NewRecorder()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	srv.handleSSE(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Roof") {
		t.Errorf("SSE stream should contain Roof, got: %s", body)
	}
	if !strings.Contains(body, "Garage") {
		t.Errorf("SSE stream should contain Garage, got: %s", body)
	}
	if !strings.Contains(body, "data: ") {
		t.Error("SSE stream should use the data: framing")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	ms := store.NewMemoryStore()
	srv := NewServer(ms, 0, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil)
	rec := httptest.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	req = req.WithContext(ctx)

	done := make(chan struct{})
	go func() {
		srv.handleSSE(rec, req)
		close(done)
	}()

	// let the handler subscribe before publishing
	time.Sleep(50 * time.Millisecond)
	ms.Update(store.Snapshot{Name: "Roof", CurrentPower: 1234})
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after context cancellation")
	}

	if !strings.Contains(rec.Body.String(), "1234") {
		t.Errorf("SSE stream missing published update, got: %s", rec.Body.String())
	}
}

func TestStart_AvailablePort_ReturnsNil(t *testing.T) {
	// reserve a free port, release it, reuse it
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	srv := NewServer(seededStore(), port, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://localhost:" + strconv.Itoa(port) + "/api/snapshots")
	if err != nil {
		t.Fatalf("GET after Start failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStart_PortInUse_ReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	srv := NewServer(seededStore(), port, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err == nil {
		t.Error("Start() on an occupied port should return an error")
	}
}
