package config

import (
	"github.com/bitbeans/kaco"
)

// BuildInverters converts parsed configuration into SDK Inverter objects.
func BuildInverters(cfg *Config) ([]kaco.Inverter, error) {
	inverters := make([]kaco.Inverter, 0, len(cfg.Inverters))

	for _, ic := range cfg.Inverters {
		inv, err := buildInverter(ic)
		if err != nil {
			return nil, err
		}
		inverters = append(inverters, inv)
	}

	return inverters, nil
}

// buildInverter converts a single InverterConfig to an SDK Inverter.
func buildInverter(ic InverterConfig) (kaco.Inverter, error) {
	var opts []kaco.InverterOption

	if ic.Interval != 0 {
		opts = append(opts, kaco.WithInterval(ic.Interval.Duration()))
	}

	if ic.EnergyInterval != 0 {
		opts = append(opts, kaco.WithEnergyInterval(ic.EnergyInterval.Duration()))
	}

	if ic.RealtimeTimeout != 0 {
		opts = append(opts, kaco.WithRealtimeTimeout(ic.RealtimeTimeout.Duration()))
	}

	if ic.DailyTimeout != 0 {
		opts = append(opts, kaco.WithDailyTimeout(ic.DailyTimeout.Duration()))
	}

	if ic.Retries != nil {
		opts = append(opts, kaco.WithRetries(*ic.Retries))
	}

	return kaco.NewInverter(ic.Name, ic.Address, opts...)
}
