package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// StartMockInverter runs a mock KACO device serving realtime.csv and dated
// daily files the way the real firmware does: semicolon-delimited raw
// register values, carriage-return line endings on the daily file.
// Call this in a goroutine before creating inverters.
func StartMockInverter(addr string) {
	start := time.Now()

	mux := http.NewServeMux()

	mux.HandleFunc("/realtime.csv", func(w http.ResponseWriter, r *http.Request) {
		// simulate the slow embedded web server
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		// a sine over the day, so power rises and falls like sunlight
		phase := math.Sin(time.Since(start).Seconds() / 60 * math.Pi)
		if phase < 0 {
			phase = 0
		}

		volts := int(phase * 24000)     // raw register, ~585 V peak
		amps := int(phase * 3000)       // raw register, ~9 A peak
		power := int(phase * 4000)      // raw register, ~6.1 kW peak
		temp := 2500 + rand.Intn(1500)  // 25.00-40.00 °C
		status := 4                     // feeding the grid
		if phase == 0 {
			status = 0 // idle
		}

		fields := []string{
			"0",
			fmt.Sprint(volts), fmt.Sprint(volts), // generator voltages
			fmt.Sprint(9400), fmt.Sprint(9400), fmt.Sprint(9400), // grid voltages
			fmt.Sprint(amps), fmt.Sprint(amps), // generator currents
			fmt.Sprint(amps / 3), fmt.Sprint(amps / 3), fmt.Sprint(amps / 3), // grid currents
			fmt.Sprint(power),
			fmt.Sprint(temp),
			fmt.Sprint(status),
		}

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Join(fields, ";")))
	})

	// any dated file; the handler only checks the name shape
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if len(name) != len("20060102.csv") || !strings.HasSuffix(name, ".csv") {
			http.NotFound(w, r)
			return
		}

		// daily files come off flash, noticeably slower
		time.Sleep(time.Duration(300+rand.Intn(500)) * time.Millisecond)

		energy := 12.5 + rand.Float64()*5
		lines := []string{
			"header",
			fmt.Sprintf("Powador 8000xi;123456789;0;0;%.1f", energy),
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Join(lines, "\r")))
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock inverter error", "error", err)
	}
}
