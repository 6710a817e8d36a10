package fetch

import (
	"fmt"
	"strconv"
	"strings"
)

// realtimeFieldCount is the only field count the realtime resource may have.
// The firmware emits a single semicolon-delimited line; anything else (error
// pages, truncated responses) splits into a different number of fields and
// is rejected as a parse failure rather than a crash.
const realtimeFieldCount = 14

// Realtime field layout on the wire. Field 0 is unused.
const (
	FieldGeneratorVoltage1 = 1
	FieldGeneratorVoltage2 = 2
	FieldGridVoltage1      = 3
	FieldGridVoltage2      = 4
	FieldGridVoltage3      = 5
	FieldGeneratorCurrent1 = 6
	FieldGeneratorCurrent2 = 7
	FieldGridCurrent1      = 8
	FieldGridCurrent2      = 9
	FieldGridCurrent3      = 10
	FieldPower             = 11
	FieldTemperature       = 12
	FieldStatus            = 13
)

// DailyRecord is one parsed row of the daily-energy resource.
type DailyRecord struct {
	// Model is the device model string (column 0 of the data line).
	Model string

	// Serial is the device serial number (column 1 of the data line).
	Serial string

	// EnergyKWh is the cumulative energy produced that day in kWh
	// (column 4 of the data line).
	EnergyKWh float64
}

// ParseRealtime splits a decoded realtime.csv body into its 14 fields.
//
// Returns an error for any other field count; the caller treats that the
// same as a network failure.
func ParseRealtime(text string) ([]string, error) {
	fields := strings.Split(text, ";")
	if len(fields) != realtimeFieldCount {
		return nil, fmt.Errorf("realtime record has %d fields, want %d", len(fields), realtimeFieldCount)
	}
	return fields, nil
}

// ParseDaily extracts the [DailyRecord] from a decoded daily-energy body,
// reading the first data line (the line after the header).
//
// The resource is carriage-return delimited with a header-like first line.
// A body is valid only if it is longer than 10 characters, splits on CR into
// more than one line, and its second line splits on ";" into more than 4
// columns. Anything else is an error.
func ParseDaily(text string) (DailyRecord, error) {
	lines, err := splitDaily(text)
	if err != nil {
		return DailyRecord{}, err
	}
	return parseDailyLine(lines[1])
}

// ParseDailyFinal extracts the [DailyRecord] from the last non-empty data
// line of a daily-energy body. The device appends rows through the day, so
// for completed (historical) dates the last line carries the day's final
// cumulative energy.
func ParseDailyFinal(text string) (DailyRecord, error) {
	lines, err := splitDaily(strings.TrimSpace(text))
	if err != nil {
		return DailyRecord{}, err
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return DailyRecord{}, fmt.Errorf("daily record has empty closing line")
	}
	return parseDailyLine(last)
}

func splitDaily(text string) ([]string, error) {
	if len(text) <= 10 {
		return nil, fmt.Errorf("daily record too short: %d bytes", len(text))
	}
	lines := strings.Split(text, "\r")
	if len(lines) <= 1 {
		return nil, fmt.Errorf("daily record has no data line")
	}
	return lines, nil
}

func parseDailyLine(line string) (DailyRecord, error) {
	cols := strings.Split(line, ";")
	if len(cols) <= 4 {
		return DailyRecord{}, fmt.Errorf("daily data line has %d columns, want more than 4", len(cols))
	}

	energy, err := strconv.ParseFloat(strings.TrimSpace(cols[4]), 64)
	if err != nil {
		return DailyRecord{}, fmt.Errorf("invalid energy value %q: %w", cols[4], err)
	}

	return DailyRecord{
		Model:     strings.TrimSpace(cols[0]),
		Serial:    strings.TrimSpace(cols[1]),
		EnergyKWh: energy,
	}, nil
}
