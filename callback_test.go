package kaco

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeInverterServer serves the two CSV resources a real device exposes.
func fakeInverterServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/realtime.csv", func(w http.ResponseWriter, r *http.Request) {
		fields := []string{
			"0",
			"32768", "16384",
			"9400", "9401", "9402",
			"3000", "3001",
			"1000", "1001", "1002",
			"32768",
			"3350",
			"4",
		}
		_, _ = w.Write([]byte(strings.Join(fields, ";")))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("header line\rPowador 8000xi;123456789;0;0;14.2"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

// TestMonitor_SnapshotCallback runs the full pipeline against a fake device:
// poll, scale, merge, store, callback.
func TestMonitor_SnapshotCallback(t *testing.T) {
	device := fakeInverterServer(t)
	address := strings.TrimPrefix(device.URL, "http://")

	inv, err := NewInverter("Roof", address)
	if err != nil {
		t.Fatal(err)
	}

	results := make(chan PollResult, 10)
	port := freePort(t)

	m, err := New(
		WithInverter(inv),
		WithPort(port),
		WithLogger(testLogger()),
		WithSnapshotCallback(func(r PollResult) {
			select {
			case results <- r:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	select {
	case r := <-results:
		if r.Name != "Roof" {
			t.Errorf("Name = %q, want Roof", r.Name)
		}
		if r.ConsecutiveFailures != 0 {
			t.Errorf("ConsecutiveFailures = %d, want 0", r.ConsecutiveFailures)
		}
		if r.Snapshot.CurrentPower != 50001 {
			t.Errorf("CurrentPower = %d, want 50001", r.Snapshot.CurrentPower)
		}
		if r.Snapshot.GeneratorVoltage1 != 800.012 {
			t.Errorf("GeneratorVoltage1 = %v, want 800.012", r.Snapshot.GeneratorVoltage1)
		}
		if r.Snapshot.EnergyToday != 14.2 {
			t.Errorf("EnergyToday = %v, want 14.2", r.Snapshot.EnergyToday)
		}
		if r.Snapshot.Status != "Feed-in mode" {
			t.Errorf("Status = %q, want Feed-in mode", r.Snapshot.Status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no poll result within 5s")
	}

	// the HTTP surface must serve the same snapshot
	resp, err := http.Get("http://localhost:" + strconv.Itoa(port) + "/api/snapshots")
	if err != nil {
		t.Fatalf("GET /api/snapshots failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("snapshots status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancellation")
	}
}

// TestMonitor_PanickingCallback verifies that a panicking callback is
// contained: polling continues and later callbacks still fire.
func TestMonitor_PanickingCallback(t *testing.T) {
	result := PollResult{Name: "Roof"}

	called := false
	invokeCallbackSafe(func(PollResult) { panic("boom") }, result, testLogger())
	invokeCallbackSafe(func(PollResult) { called = true }, result, testLogger())

	if !called {
		t.Error("second callback did not run after the first panicked")
	}
}
