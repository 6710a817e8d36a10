package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitbeans/kaco"
)

func main() {
	// start a mock inverter (see mock_inverter.go)
	go StartMockInverter(":9999")
	time.Sleep(100 * time.Millisecond)

	roof, err := kaco.NewInverter("Roof", "localhost:9999",
		kaco.WithInterval(5*time.Second),
		kaco.WithEnergyInterval(30*time.Second),
	)
	if err != nil {
		slog.Error("failed to create inverter", "error", err)
		os.Exit(1)
	}

	// a second inverter without an address yet; it shows up with
	// defaulted values and never touches the network
	garage, _ := kaco.NewInverter("Garage", "")

	m, err := kaco.New(
		kaco.WithInverters(roof, garage),
		kaco.WithPort(8080),
		kaco.WithSnapshotCallback(func(r kaco.PollResult) {
			log.Printf("%s: %d W, %.1f kWh today (%s)",
				r.Name, r.Snapshot.CurrentPower, r.Snapshot.EnergyToday, r.Snapshot.Status)
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   kaco Demo                                           ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Inverters:                                          ║")
	fmt.Println("  ║   • Roof (mock device on :9999, 5s interval)          ║")
	fmt.Println("  ║   • Garage (no address, placeholder snapshot)         ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		slog.Error("monitor error", "error", err)
		os.Exit(1)
	}
}
