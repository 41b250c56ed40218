// Package service runs the beacon pipeline: each observation is
// archived, checked against the publish cooldown, converted to canonical
// APRS units, rendered and atomically written to the packet file. The
// whole pipeline is synchronous; one observation is handled to
// completion before the next.
package service

import (
	"log/slog"
	"time"

	"github.com/gjr80/weewx-aprx/internal/config"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/encode"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/publish"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/repository"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/schedule"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/types"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/units"
	"github.com/gjr80/weewx-aprx/internal/mqtt"
)

const (
	hourSeconds = 3600
	daySeconds  = 86400

	// Archive rows older than the longest rainfall window (plus slack)
	// are pruned on the publish path.
	archiveRetention = 2 * daySeconds
)

type Service struct {
	archive   repository.ObservationArchive
	scheduler *schedule.Scheduler
	publisher *publish.Publisher
	logger    *slog.Logger

	callsign     string
	position     *types.StationPosition
	comment      string
	notInstalled map[string]bool
}

func New(archive repository.ObservationArchive, scheduler *schedule.Scheduler, publisher *publish.Publisher, cfg config.Config, logger *slog.Logger) *Service {
	return &Service{
		archive:   archive,
		scheduler: scheduler,
		publisher: publisher,
		logger:    logger,
		callsign:  cfg.Callsign,
		position: &types.StationPosition{
			Latitude:    cfg.Latitude,
			Longitude:   cfg.Longitude,
			SymbolTable: cfg.SymbolTable,
			SymbolCode:  cfg.SymbolCode,
		},
		comment:      cfg.Comment,
		notInstalled: cfg.SensorsNotInstalled,
	}
}

// Register attaches the pipeline to the inbound observation bus.
func (s *Service) Register(subscriber mqtt.ObservationSubscriber) {
	registerMQTTHandler(subscriber, s, s.logger)
}

// HandleObservation processes one observation to completion. A cooldown
// rejection is not an error; unit, encoding and publish failures are
// returned for the transport layer to log.
func (s *Service) HandleObservation(obs types.Observation) error {
	conv, err := s.convert(obs)
	if err != nil {
		return err
	}

	// Archive every observation, admitted or not, so rainfall windows
	// stay accurate across cooldowns.
	if err := s.archive.InsertObservation(obs.Timestamp,
		conv.WindDir, conv.WindSpeed, conv.WindGust,
		conv.Temperature, conv.Humidity, conv.Pressure, conv.rain); err != nil {
		s.logger.Warn("archive insert failed", "timestamp", obs.Timestamp, "error", err)
	}

	if !s.scheduler.Admit(obs.Timestamp) {
		s.logger.Debug("beacon suppressed by cooldown", "timestamp", obs.Timestamp)
		return nil
	}

	s.deriveRain(obs.Timestamp, &conv)

	if err := s.archive.PruneBefore(obs.Timestamp - archiveRetention); err != nil {
		s.logger.Debug("archive prune failed", "error", err)
	}

	rec := types.BeaconRecord{
		Callsign:  s.callsign,
		Position:  s.position,
		Timestamp: obs.Timestamp,
		Fields:    encode.FormatFields(conv.Values),
		Comment:   s.comment,
	}
	line, err := encode.Encode(rec)
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(line); err != nil {
		return err
	}
	s.logger.Info("beacon published",
		"file", s.publisher.Path(),
		"timestamp", obs.Timestamp,
		"bytes", len(line)+1,
	)
	return nil
}

// converted carries the observation in canonical units. rain is the
// accumulation since the previous observation; it feeds the archive, not
// a beacon field.
type converted struct {
	encode.Values
	rain *float64
}

func (s *Service) convert(obs types.Observation) (converted, error) {
	sys, err := units.SystemFor(obs.Units)
	if err != nil {
		return converted{}, err
	}

	var c converted
	if !s.notInstalled["wind"] {
		c.WindDir = obs.WindDir
		if c.WindSpeed, err = convertOpt(obs.WindSpeed, sys.Speed, units.ToMph); err != nil {
			return converted{}, err
		}
		if c.WindGust, err = convertOpt(obs.WindGust, sys.Speed, units.ToMph); err != nil {
			return converted{}, err
		}
	}
	if !s.notInstalled["temperature"] {
		if c.Temperature, err = convertOpt(obs.Temperature, sys.Temperature, units.ToFahrenheit); err != nil {
			return converted{}, err
		}
	}
	if !s.notInstalled["humidity"] {
		c.Humidity = obs.Humidity
	}
	if !s.notInstalled["pressure"] {
		if c.Pressure, err = convertOpt(obs.Pressure, sys.Pressure, units.ToMillibars); err != nil {
			return converted{}, err
		}
	}
	if !s.notInstalled["rain"] {
		if c.rain, err = convertOpt(obs.Rain, sys.Rain, units.ToInches); err != nil {
			return converted{}, err
		}
		if c.RainHour, err = convertOpt(obs.RainHour, sys.Rain, units.ToInches); err != nil {
			return converted{}, err
		}
		if c.Rain24, err = convertOpt(obs.Rain24, sys.Rain, units.ToInches); err != nil {
			return converted{}, err
		}
		if c.RainDay, err = convertOpt(obs.RainDay, sys.Rain, units.ToInches); err != nil {
			return converted{}, err
		}
	}
	return c, nil
}

func convertOpt[U ~string](v *float64, from U, conv func(float64, U) (float64, error)) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	out, err := conv(*v, from)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// deriveRain fills rainfall windows the station did not report by
// summing the archive, the same derivation the WeeWX archive provides a
// station driver that only reports per-interval rain.
func (s *Service) deriveRain(ts int64, c *converted) {
	if s.notInstalled["rain"] {
		return
	}
	if c.RainHour == nil {
		c.RainHour = s.rainInPeriod(ts-hourSeconds, ts)
	}
	if c.Rain24 == nil {
		c.Rain24 = s.rainInPeriod(ts-daySeconds, ts)
	}
	if c.RainDay == nil {
		c.RainDay = s.rainInPeriod(startOfDay(ts), ts)
	}
}

func (s *Service) rainInPeriod(start, stop int64) *float64 {
	total, err := s.archive.RainInPeriod(start, stop)
	if err != nil {
		s.logger.Warn("rain derivation failed", "start", start, "stop", stop, "error", err)
		return nil
	}
	return total
}

// startOfDay returns local midnight preceding ts.
func startOfDay(ts int64) int64 {
	t := time.Unix(ts, 0)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Unix()
}
