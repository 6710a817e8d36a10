package config

import (
	"testing"
	"time"
)

func TestBuildInverters(t *testing.T) {
	retries := 0
	cfg := &Config{
		Inverters: []InverterConfig{
			{
				Name:            "Roof",
				Address:         "192.168.1.40",
				Interval:        Duration(30 * time.Second),
				EnergyInterval:  Duration(5 * time.Minute),
				RealtimeTimeout: Duration(3 * time.Second),
				DailyTimeout:    Duration(15 * time.Second),
				Retries:         &retries,
			},
			{Name: "Garage"},
		},
	}

	inverters, err := BuildInverters(cfg)
	if err != nil {
		t.Fatalf("BuildInverters() error = %v", err)
	}
	if len(inverters) != 2 {
		t.Fatalf("len = %d, want 2", len(inverters))
	}

	roof := inverters[0]
	if roof.Name() != "Roof" {
		t.Errorf("Name() = %q, want Roof", roof.Name())
	}
	if roof.Address() != "192.168.1.40" {
		t.Errorf("Address() = %q", roof.Address())
	}
	if roof.Interval() != 30*time.Second {
		t.Errorf("Interval() = %v, want 30s", roof.Interval())
	}
	if roof.EnergyInterval() != 5*time.Minute {
		t.Errorf("EnergyInterval() = %v, want 5m", roof.EnergyInterval())
	}
	if roof.RealtimeTimeout() != 3*time.Second {
		t.Errorf("RealtimeTimeout() = %v, want 3s", roof.RealtimeTimeout())
	}
	if roof.DailyTimeout() != 15*time.Second {
		t.Errorf("DailyTimeout() = %v, want 15s", roof.DailyTimeout())
	}
	if roof.Retries() != 0 {
		t.Errorf("Retries() = %d, want explicit 0", roof.Retries())
	}

	// unset fields fall back to SDK defaults
	garage := inverters[1]
	if garage.Interval() != 20*time.Second {
		t.Errorf("Garage.Interval() = %v, want default 20s", garage.Interval())
	}
	if garage.Retries() != 2 {
		t.Errorf("Garage.Retries() = %d, want default 2", garage.Retries())
	}
	if garage.Address() != "" {
		t.Errorf("Garage.Address() = %q, want empty", garage.Address())
	}
}

func TestBuildInverters_PropagatesValidationError(t *testing.T) {
	cfg := &Config{
		Inverters: []InverterConfig{
			{Name: "Roof", Interval: Duration(10 * time.Millisecond)},
		},
	}

	if _, err := BuildInverters(cfg); err == nil {
		t.Fatal("BuildInverters() expected error for out-of-range interval")
	}
}
