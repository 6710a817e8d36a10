package kaco

import (
	"errors"
	"strings"
	"time"

	"github.com/bitbeans/kaco/internal/poll"
)

// Inverter is the immutable identity of one monitored device.
//
// Inverter is immutable after creation via [NewInverter]. The address may be
// empty, meaning the device is not yet configured: such an inverter is
// carried "inert": it publishes a defaulted snapshot and never touches the
// network until a reconfigured replacement is created.
//
// Inverters are configured using the functional options pattern with
// [InverterOption] functions such as [WithInterval], [WithEnergyInterval],
// [WithRealtimeTimeout], [WithDailyTimeout], and [WithRetries].
type Inverter struct {
	name            string
	address         string
	interval        time.Duration
	energyInterval  time.Duration
	realtimeTimeout time.Duration
	dailyTimeout    time.Duration
	retries         int
}

// Name returns the inverter's display name, used as the snapshot key.
func (i Inverter) Name() string {
	return i.name
}

// Address returns the host or IP of the inverter's embedded web server.
// Empty means the inverter is not yet configured.
func (i Inverter) Address() string {
	return i.address
}

// Interval returns the base poll interval used while the device is healthy.
// Defaults to 20 seconds.
func (i Inverter) Interval() time.Duration {
	return i.interval
}

// EnergyInterval returns the minimum time between daily-energy fetches.
// Defaults to 120 seconds.
func (i Inverter) EnergyInterval() time.Duration {
	return i.energyInterval
}

// RealtimeTimeout returns the bound on one realtime fetch. Defaults to 5s.
func (i Inverter) RealtimeTimeout() time.Duration {
	return i.realtimeTimeout
}

// DailyTimeout returns the bound on one daily-energy fetch. Defaults to 10s.
func (i Inverter) DailyTimeout() time.Duration {
	return i.dailyTimeout
}

// Retries returns the number of extra realtime attempts per poll cycle.
// Defaults to 2.
func (i Inverter) Retries() int {
	return i.retries
}

// NewInverter creates an [Inverter] with the given name, address, and
// options.
//
// The name is a stable identifier used as the snapshot key and in logs and
// metrics. The address may be empty for a device whose network location is
// not yet known.
//
// Example:
//
//	inv, err := kaco.NewInverter("roof", "192.168.1.40",
//	    kaco.WithInterval(30 * time.Second),
//	)
func NewInverter(name, address string, opts ...InverterOption) (Inverter, error) {
	if strings.TrimSpace(name) == "" {
		return Inverter{}, errors.New("inverter name cannot be empty")
	}

	cfg := &inverterConfig{
		interval:        poll.DefaultBaseInterval,
		energyInterval:  poll.DefaultEnergyInterval,
		realtimeTimeout: poll.DefaultRealtimeTimeout,
		dailyTimeout:    poll.DefaultDailyTimeout,
		retries:         poll.DefaultRetries,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Inverter{}, err
		}
	}

	return Inverter{
		name:            name,
		address:         strings.TrimSpace(address),
		interval:        cfg.interval,
		energyInterval:  cfg.energyInterval,
		realtimeTimeout: cfg.realtimeTimeout,
		dailyTimeout:    cfg.dailyTimeout,
		retries:         cfg.retries,
	}, nil
}
