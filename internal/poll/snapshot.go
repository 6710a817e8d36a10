package poll

import "time"

// Default identity values. Present in every snapshot from bootstrap on, so
// consumers never observe a missing serial or model even before the first
// successful daily-energy fetch.
const (
	DefaultSerial = "no_serial"
	DefaultModel  = "no_model"
)

// Snapshot is the complete measurement record published for one inverter.
//
// A Snapshot is always fully defaulted: it is created via [Bootstrap] and
// replaced wholesale on every poll cycle by copying the previous value and
// mutating the copy. Observers therefore never see a partially constructed
// record, even when the device is unreachable (the last-known snapshot stays
// visible, stale but valid).
type Snapshot struct {
	// Electrical channels, scaled to physical units.
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

	// CurrentPower is the aggregate feed-in power in W, rounded to the
	// nearest integer.
	CurrentPower int

	// EnergyToday is the cumulative energy produced today in kWh. Sticky:
	// carried over unchanged between daily-energy refreshes.
	EnergyToday float64

	// MaxPower is the running maximum of CurrentPower, monotonically
	// non-decreasing for the lifetime of the inverter's poll state.
	MaxPower int

	// Serial and Model come from the daily-energy resource.
	Serial string
	Model  string

	// StatusCode is the raw inverter state register; Status is its
	// human-readable description, empty for unknown codes.
	StatusCode int
	Status     string

	// Temperature is the internal unit temperature in °C.
	Temperature float64

	// LastUpdated is the time of the last successful realtime poll.
	LastUpdated time.Time

	// LastEnergyRefresh is the time of the last successful daily-energy
	// fetch. Zero until the energy value has been populated once.
	LastEnergyRefresh time.Time
}

// Bootstrap fills the invariant-enforced defaults of a snapshot, preserving
// any fields that are already present. Called once when poll state is
// created; the returned snapshot is valid for publication immediately, before
// any network fetch has happened.
func Bootstrap(prev Snapshot) Snapshot {
	if prev.Serial == "" {
		prev.Serial = DefaultSerial
	}
	if prev.Model == "" {
		prev.Model = DefaultModel
	}
	return prev
}
