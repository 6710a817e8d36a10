package kaco

import (
	"time"

	"github.com/bitbeans/kaco/internal/fetch"
	"github.com/bitbeans/kaco/internal/poll"
)

// Snapshot is the public view of one inverter's complete measurement record.
//
// A Snapshot is always fully defaulted (MaxPower 0, Serial "no_serial",
// Model "no_model" before the first daily-energy read) and always derived
// from its predecessor, so consumers never observe a missing field, at
// worst a stale one while the device is unreachable.
type Snapshot struct {
	// Electrical channels in physical units.
	GeneratorVoltage1 float64 // V
	GeneratorVoltage2 float64 // V
	GridVoltage1      float64 // V
	GridVoltage2      float64 // V
	GridVoltage3      float64 // V
	GeneratorCurrent1 float64 // A
	GeneratorCurrent2 float64 // A
	GridCurrent1      float64 // A
	GridCurrent2      float64 // A
	GridCurrent3      float64 // A

	// CurrentPower is the aggregate feed-in power in W.
	CurrentPower int

	// EnergyToday is the day's cumulative production in kWh. Sticky
	// between daily-energy refreshes.
	EnergyToday float64

	// MaxPower is monotonically non-decreasing for the inverter's
	// configured lifetime.
	MaxPower int

	Serial      string
	Model       string
	StatusCode  int
	Status      string
	Temperature float64 // °C

	LastUpdated       time.Time
	LastEnergyRefresh time.Time
}

// PollResult is handed to snapshot callbacks after every completed poll
// cycle, successful or not.
type PollResult struct {
	// Name and Address identify the inverter.
	Name    string
	Address string

	// Snapshot is the measurement record after the cycle.
	Snapshot Snapshot

	// ConsecutiveFailures is the realtime failure streak; zero after any
	// successful cycle.
	ConsecutiveFailures int

	// NextInterval is how long the scheduler waits before the next cycle
	// for this inverter. It widens under sustained failure.
	NextInterval time.Duration

	// CheckedAt is when the cycle completed.
	CheckedAt time.Time
}

// StatusText returns the human-readable description for an inverter status
// code (0–167), or the empty string for codes outside the table.
func StatusText(code int) string {
	return fetch.StatusText(code)
}

// publicSnapshot converts the poll engine's snapshot to the public type.
func publicSnapshot(s poll.Snapshot) Snapshot {
	return Snapshot{
		GeneratorVoltage1: s.GeneratorVoltage1,
		GeneratorVoltage2: s.GeneratorVoltage2,
		GridVoltage1:      s.GridVoltage1,
		GridVoltage2:      s.GridVoltage2,
		GridVoltage3:      s.GridVoltage3,
		GeneratorCurrent1: s.GeneratorCurrent1,
		GeneratorCurrent2: s.GeneratorCurrent2,
		GridCurrent1:      s.GridCurrent1,
		GridCurrent2:      s.GridCurrent2,
		GridCurrent3:      s.GridCurrent3,
		CurrentPower:      s.CurrentPower,
		EnergyToday:       s.EnergyToday,
		MaxPower:          s.MaxPower,
		Serial:            s.Serial,
		Model:             s.Model,
		StatusCode:        s.StatusCode,
		Status:            s.Status,
		Temperature:       s.Temperature,
		LastUpdated:       s.LastUpdated,
		LastEnergyRefresh: s.LastEnergyRefresh,
	}
}
