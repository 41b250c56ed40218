package service

import (
	"log/slog"

	"github.com/gjr80/weewx-aprx/internal/modules/beacon/types"
	"github.com/gjr80/weewx-aprx/internal/mqtt"
)

// registerMQTTHandler sets up the beacon module's MQTT message handler.
func registerMQTTHandler(subscriber mqtt.ObservationSubscriber, svc *Service, logger *slog.Logger) {
	subscriber.SetMessageHandler(func(obs types.Observation) error {
		logger.Debug("processing observation",
			"timestamp", obs.Timestamp,
			"units", obs.Units,
		)

		if err := svc.HandleObservation(obs); err != nil {
			logger.Error("beacon pipeline failed",
				"timestamp", obs.Timestamp,
				"error", err,
			)
			return err
		}
		return nil
	})
}
