package service

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gjr80/weewx-aprx/internal/config"
	"github.com/gjr80/weewx-aprx/internal/migrate"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/publish"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/repository"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/schedule"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/types"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/units"

	_ "github.com/mattn/go-sqlite3"
)

// 2025-01-01T00:00:00Z, renders as @010000z.
const testTimestamp = int64(1735689600)

func f(v float64) *float64 { return &v }

func testConfig(beaconFile string) config.Config {
	return config.Config{
		Callsign:    "N0CALL",
		Latitude:    40.0,
		Longitude:   -105.0,
		SymbolTable: '/',
		SymbolCode:  '_',
		Comment:     "weewx-aprx",
		BeaconFile:  beaconFile,
		MinInterval: 60 * time.Second,
	}
}

type fixture struct {
	svc     *Service
	archive repository.ObservationArchive
	dest    string
}

func setup(t *testing.T, mutate func(*config.Config)) fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close db: %v", closeErr)
		}
	})
	if err := migrate.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "aprx_wx.txt")
	cfg := testConfig(dest)
	if mutate != nil {
		mutate(&cfg)
	}

	archive := repository.NewArchive(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(archive, schedule.New(cfg.MinInterval), publish.New(cfg.BeaconFile), cfg, logger)
	return fixture{svc: svc, archive: archive, dest: dest}
}

func readBeacon(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read beacon file: %v", err)
	}
	return string(b)
}

func TestHandleObservation_Golden(t *testing.T) {
	fx := setup(t, nil)

	err := fx.svc.HandleObservation(types.Observation{
		Timestamp:   testTimestamp,
		Units:       "us",
		WindDir:     f(180),
		WindSpeed:   f(5),
		WindGust:    f(10),
		Temperature: f(72),
		Humidity:    f(45),
		Pressure:    f(29.92), // inHg, converts to 1013.2 mb
		RainHour:    f(0.00),
	})
	if err != nil {
		t.Fatalf("HandleObservation: %v", err)
	}

	want := "N0CALL>APRS,TCPIP*:@010000z4000.00N/10500.00W_180/005g010t072r000p...P...h45b10132 weewx-aprx\n"
	if got := readBeacon(t, fx.dest); got != want {
		t.Errorf("beacon file =\n  %q\nwant\n  %q", got, want)
	}
}

func TestHandleObservation_MetricConversion(t *testing.T) {
	fx := setup(t, nil)

	err := fx.svc.HandleObservation(types.Observation{
		Timestamp:   testTimestamp,
		Units:       "metricwx",
		WindSpeed:   f(10),     // m/s -> 22 mph
		Temperature: f(22.2),   // C -> 72 F
		Pressure:    f(1013.2), // hPa -> 1013.2 mb
	})
	if err != nil {
		t.Fatalf("HandleObservation: %v", err)
	}

	got := readBeacon(t, fx.dest)
	for _, fragment := range []string{"/022", "t072", "b10132"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("beacon %q missing %q", got, fragment)
		}
	}
}

func TestHandleObservation_Cooldown(t *testing.T) {
	fx := setup(t, nil)

	first := types.Observation{Timestamp: testTimestamp, Units: "us", Temperature: f(72)}
	if err := fx.svc.HandleObservation(first); err != nil {
		t.Fatalf("first observation: %v", err)
	}
	published := readBeacon(t, fx.dest)

	// Inside the 60s cooldown: handled without error, file untouched.
	second := types.Observation{Timestamp: testTimestamp + 30, Units: "us", Temperature: f(50)}
	if err := fx.svc.HandleObservation(second); err != nil {
		t.Fatalf("suppressed observation: %v", err)
	}
	if got := readBeacon(t, fx.dest); got != published {
		t.Errorf("beacon file changed during cooldown:\n  %q\nwas\n  %q", got, published)
	}

	// Past the cooldown the beacon refreshes.
	third := types.Observation{Timestamp: testTimestamp + 61, Units: "us", Temperature: f(50)}
	if err := fx.svc.HandleObservation(third); err != nil {
		t.Fatalf("third observation: %v", err)
	}
	if got := readBeacon(t, fx.dest); !strings.Contains(got, "t050") {
		t.Errorf("beacon after cooldown = %q; want refreshed temperature t050", got)
	}
}

func TestHandleObservation_DerivesRainFromArchive(t *testing.T) {
	fx := setup(t, func(cfg *config.Config) { cfg.MinInterval = 0 })

	// Rain-since-midnight derivation uses local midnight, so anchor the
	// timeline to local noon.
	noon := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local).Unix()
	midnight := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local).Unix()

	insertRain := func(ts int64, rain float64) {
		t.Helper()
		if err := fx.archive.InsertObservation(ts, nil, nil, nil, nil, nil, nil, f(rain)); err != nil {
			t.Fatalf("insert archive row ts=%d: %v", ts, err)
		}
	}
	insertRain(noon-600, 0.10)     // within the last hour
	insertRain(midnight+100, 0.25) // today, outside the last hour
	insertRain(midnight-100, 0.40) // yesterday, within 24 hours

	err := fx.svc.HandleObservation(types.Observation{
		Timestamp:   noon,
		Units:       "us",
		Temperature: f(70),
	})
	if err != nil {
		t.Fatalf("HandleObservation: %v", err)
	}

	got := readBeacon(t, fx.dest)
	if !strings.Contains(got, "r010p075P035") {
		t.Errorf("beacon = %q; want derived rain fields r010p075P035", got)
	}
}

func TestHandleObservation_StationReportedRainWins(t *testing.T) {
	fx := setup(t, func(cfg *config.Config) { cfg.MinInterval = 0 })

	err := fx.svc.HandleObservation(types.Observation{
		Timestamp:   testTimestamp,
		Units:       "us",
		Temperature: f(70),
		RainHour:    f(0.55),
		Rain24:      f(1.00),
		RainDay:     f(0.80),
	})
	if err != nil {
		t.Fatalf("HandleObservation: %v", err)
	}

	if got := readBeacon(t, fx.dest); !strings.Contains(got, "r055p100P080") {
		t.Errorf("beacon = %q; want station-reported rain r055p100P080", got)
	}
}

func TestHandleObservation_NotInstalledSensors(t *testing.T) {
	fx := setup(t, func(cfg *config.Config) {
		cfg.SensorsNotInstalled = map[string]bool{
			"wind":     true,
			"humidity": true,
			"rain":     true,
		}
	})

	err := fx.svc.HandleObservation(types.Observation{
		Timestamp:   testTimestamp,
		Units:       "us",
		WindDir:     f(180),
		WindSpeed:   f(5),
		Temperature: f(72),
		Humidity:    f(45),
		RainHour:    f(0.10),
	})
	if err != nil {
		t.Fatalf("HandleObservation: %v", err)
	}

	got := readBeacon(t, fx.dest)
	if !strings.Contains(got, "_.../...g...") {
		t.Errorf("beacon = %q; want wind placeholders despite payload values", got)
	}
	if !strings.Contains(got, "r...p...P...h..") {
		t.Errorf("beacon = %q; want rain and humidity placeholders", got)
	}
}

func TestHandleObservation_UnknownUnitSystem(t *testing.T) {
	fx := setup(t, nil)

	err := fx.svc.HandleObservation(types.Observation{
		Timestamp:   testTimestamp,
		Units:       "imperial",
		Temperature: f(72),
	})
	var convErr *units.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("want *units.ConversionError, got %v", err)
	}
	if _, statErr := os.Stat(fx.dest); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("beacon file written despite conversion error")
	}
}

func TestHandleObservation_MissingCallsign(t *testing.T) {
	fx := setup(t, func(cfg *config.Config) { cfg.Callsign = "" })

	err := fx.svc.HandleObservation(types.Observation{
		Timestamp:   testTimestamp,
		Units:       "us",
		Temperature: f(72),
	})
	if err == nil {
		t.Fatal("HandleObservation without callsign: want error")
	}
}
