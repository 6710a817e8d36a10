package store

import "time"

// Snapshot is the storage representation of one inverter's published
// measurement set, optimized for JSON serialization (REST API and SSE).
// It is decoupled from the poll engine's internal types so the two can
// evolve independently.
type Snapshot struct {
	// Name is the inverter's configured name; Address its host or IP
	// (may be empty for a not-yet-configured inverter).
	Name    string `json:"name"`
	Address string `json:"address"`

	GeneratorVoltage1 float64 `json:"generator_voltage_1"`
	GeneratorVoltage2 float64 `json:"generator_voltage_2"`
	GridVoltage1      float64 `json:"grid_voltage_1"`
	GridVoltage2      float64 `json:"grid_voltage_2"`
	GridVoltage3      float64 `json:"grid_voltage_3"`
	GeneratorCurrent1 float64 `json:"generator_current_1"`
	GeneratorCurrent2 float64 `json:"generator_current_2"`
	GridCurrent1      float64 `json:"grid_current_1"`
	GridCurrent2      float64 `json:"grid_current_2"`
	GridCurrent3      float64 `json:"grid_current_3"`

	CurrentPower int     `json:"current_power"`
	EnergyToday  float64 `json:"energy_today"`
	MaxPower     int     `json:"max_power"`

	Serial      string  `json:"serial"`
	Model       string  `json:"model"`
	StatusCode  int     `json:"status_code"`
	Status      string  `json:"status"`
	Temperature float64 `json:"temperature"`

	// ConsecutiveFailures and NextIntervalSeconds expose the poll engine's
	// health indirection: failures are visible only as a growing interval.
	ConsecutiveFailures int     `json:"consecutive_failures"`
	NextIntervalSeconds float64 `json:"next_interval_seconds"`

	LastUpdated       time.Time `json:"last_updated"`
	LastEnergyRefresh time.Time `json:"last_energy_refresh"`
	CheckedAt         time.Time `json:"checked_at"`
}

// Store defines the interface for the per-inverter snapshot registry.
//
// Implementations must be safe for concurrent access. The pub/sub mechanism
// pushes live updates to connected clients (e.g. via Server-Sent Events).
// Entries are created on first update and live until explicitly removed,
// mirroring the configured lifetime of the inverter they describe.
type Store interface {
	// Update stores a snapshot and notifies all subscribers. Snapshots
	// are keyed by Name; subsequent updates replace previous values.
	Update(snap Snapshot)

	// Get returns the snapshot for one inverter by name.
	Get(name string) (Snapshot, bool)

	// GetAll returns all currently stored snapshots.
	// The returned slice is a copy; modifications do not affect the store.
	GetAll() []Snapshot

	// Remove discards the snapshot for an inverter that has been
	// deconfigured. Removing an unknown name is a no-op.
	Remove(name string)

	// Subscribe returns a channel that receives snapshot updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
