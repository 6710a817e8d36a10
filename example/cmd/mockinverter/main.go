// Standalone mock inverter for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockinverter
//
// Then in another terminal:
//
//	go run ./cmd/kaco serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	fmt.Println("Mock inverter starting on :9999")
	fmt.Println("Serves /realtime.csv and dated daily files (YYYYMMDD.csv)")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	start := time.Now()

	http.HandleFunc("/realtime.csv", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		phase := math.Sin(time.Since(start).Seconds() / 60 * math.Pi)
		if phase < 0 {
			phase = 0
		}

		volts := int(phase * 24000)
		amps := int(phase * 3000)
		power := int(phase * 4000)
		temp := 2500 + rand.Intn(1500)
		status := 4
		if phase == 0 {
			status = 0
		}

		fields := []string{
			"0",
			fmt.Sprint(volts), fmt.Sprint(volts),
			fmt.Sprint(9400), fmt.Sprint(9400), fmt.Sprint(9400),
			fmt.Sprint(amps), fmt.Sprint(amps),
			fmt.Sprint(amps / 3), fmt.Sprint(amps / 3), fmt.Sprint(amps / 3),
			fmt.Sprint(power),
			fmt.Sprint(temp),
			fmt.Sprint(status),
		}

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Join(fields, ";")))
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if len(name) != len("20060102.csv") || !strings.HasSuffix(name, ".csv") {
			http.NotFound(w, r)
			return
		}

		time.Sleep(time.Duration(300+rand.Intn(500)) * time.Millisecond)

		energy := 12.5 + rand.Float64()*5
		lines := []string{
			"header",
			fmt.Sprintf("Powador 8000xi;123456789;0;0;%.1f", energy),
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Join(lines, "\r")))
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
