package history

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bitbeans/kaco/internal/fetch"
)

// Pacing and probing bounds. The importer is a batch consumer of the same
// fetch contract the poll engine uses; the only non-trivial behavior it adds
// is spacing requests out so the embedded device is not overloaded.
const (
	// DefaultPace is the delay between consecutive requests.
	DefaultPace = 5 * time.Second

	// probeTimeout bounds each historical fetch. More generous than the
	// live poll timeouts: dated files are served from slow flash.
	probeTimeout = 15 * time.Second

	// probeStepMonths and maxProbeMonths shape the coarse backwards walk
	// that finds the earliest available file: one probe every 6 months,
	// up to 5 years back.
	probeStepMonths = 6
	maxProbeMonths  = 60

	// progressEvery is the day-scan progress logging cadence.
	progressEvery = 30
)

// Report summarizes one import run.
type Report struct {
	// Earliest is the oldest date for which a daily file was found.
	// Zero if the device holds no historical files at all.
	Earliest time.Time

	// DaysScanned and DaysImported count probed dates and dates that
	// yielded a valid record. Gaps (device off, file missing) are normal.
	DaysScanned  int
	DaysImported int
}

// Importer walks an inverter's dated daily-energy resources and persists
// them. It shares the [fetch.Fetcher] contract with the poll engine but is
// strictly a batch job: one request at a time, paced.
type Importer struct {
	fetcher fetch.Fetcher
	store   *Store
	pace    time.Duration
	log     *slog.Logger
	now     func() time.Time
}

// NewImporter creates an [Importer] writing to the given store. A pace of 0
// selects [DefaultPace]; tests may pass a negative pace to disable waiting.
func NewImporter(fetcher fetch.Fetcher, store *Store, pace time.Duration, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	if pace == 0 {
		pace = DefaultPace
	}
	if pace < 0 {
		pace = 0
	}
	return &Importer{
		fetcher: fetcher,
		store:   store,
		pace:    pace,
		log:     logger,
		now:     time.Now,
	}
}

// Run imports all available historical daily-energy files for one inverter.
//
// The run proceeds in three phases: a reachability check against the
// realtime resource, a coarse backwards probe to find the earliest
// available date, and a day-by-day scan from that date to today. Every
// request is separated by the configured pace. Days that fail to fetch or
// parse are skipped silently; the device legitimately has no file for days
// it was powered off.
//
// Run returns early with ctx.Err() if the context is cancelled.
func (im *Importer) Run(ctx context.Context, inverter, address string) (Report, error) {
	var report Report

	if strings.TrimSpace(address) == "" {
		return report, fmt.Errorf("inverter %q has no address configured", inverter)
	}

	today := dateOnly(im.now())

	// phase 1: reachability; a dead device means 5 years of probes for
	// nothing, so bail out before the expensive part
	rt := im.fetcher.Fetch(ctx, "http://"+address+"/realtime.csv", probeTimeout)
	if rt.Error != nil || rt.StatusCode != http.StatusOK {
		return report, fmt.Errorf("inverter %q not reachable, skipping historical import", inverter)
	}

	// phase 2: coarse probe backwards for the earliest available file
	earliest, err := im.findEarliest(ctx, address, today)
	if err != nil {
		return report, err
	}
	if earliest.IsZero() {
		im.log.Info("no historical files found on inverter", "inverter", inverter)
		return report, nil
	}
	report.Earliest = earliest

	totalDays := int(today.Sub(earliest).Hours()/24) + 1
	im.log.Info("scanning day by day",
		"inverter", inverter,
		"from", earliest.Format("2006-01-02"),
		"to", today.Format("2006-01-02"),
		"days", totalDays,
	)

	// phase 3: day-by-day scan with running cumulative sum
	var cumulative float64
	for day := earliest; !day.After(today); day = day.AddDate(0, 0, 1) {
		if err := im.wait(ctx); err != nil {
			return report, err
		}
		report.DaysScanned++

		rec, ok := im.fetchDay(ctx, address, day)
		if ok {
			cumulative += rec.EnergyKWh
			row := DailyEnergy{
				Inverter:  inverter,
				Day:       day,
				EnergyKWh: rec.EnergyKWh,
				EnergySum: cumulative,
				Serial:    rec.Serial,
				Model:     rec.Model,
			}
			if err := im.store.UpsertDay(ctx, row); err != nil {
				return report, fmt.Errorf("persist %s: %w", day.Format("2006-01-02"), err)
			}
			report.DaysImported++
		}

		if report.DaysScanned%progressEvery == 0 {
			im.log.Info("historical import progress",
				"inverter", inverter,
				"scanned", report.DaysScanned,
				"total", totalDays,
				"imported", report.DaysImported,
			)
		}
	}

	im.log.Info("historical import complete",
		"inverter", inverter,
		"imported", report.DaysImported,
		"earliest", earliest.Format("2006-01-02"),
	)
	return report, nil
}

// findEarliest probes backwards in 6-month steps and returns the oldest
// date that still served a plausible daily file.
func (im *Importer) findEarliest(ctx context.Context, address string, today time.Time) (time.Time, error) {
	var earliest time.Time
	for monthsBack := 0; monthsBack < maxProbeMonths; monthsBack += probeStepMonths {
		if err := im.wait(ctx); err != nil {
			return time.Time{}, err
		}

		probe := today.AddDate(0, 0, -monthsBack*30)
		if _, ok := im.fetchDay(ctx, address, probe); ok {
			earliest = probe
			im.log.Info("found historical file, probing further back", "date", probe.Format("2006-01-02"))
		}
	}
	return earliest, nil
}

// fetchDay fetches and parses one dated file. The closing line of the file
// carries the day's final cumulative energy.
func (im *Importer) fetchDay(ctx context.Context, address string, day time.Time) (fetch.DailyRecord, bool) {
	url := "http://" + address + "/" + day.Format("20060102") + ".csv"
	resp := im.fetcher.Fetch(ctx, url, probeTimeout)
	if resp.Error != nil || resp.StatusCode != http.StatusOK {
		return fetch.DailyRecord{}, false
	}
	rec, err := fetch.ParseDailyFinal(resp.Text)
	if err != nil {
		return fetch.DailyRecord{}, false
	}
	return rec, true
}

// wait sleeps for the configured pace or returns early on cancellation.
func (im *Importer) wait(ctx context.Context) error {
	if im.pace <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(im.pace):
		return nil
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
