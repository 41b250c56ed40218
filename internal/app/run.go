package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gjr80/weewx-aprx/internal/config"
	"github.com/gjr80/weewx-aprx/internal/db"
	"github.com/gjr80/weewx-aprx/internal/migrate"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon"
	"github.com/gjr80/weewx-aprx/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"callsign", cfg.Callsign,
		"lat", cfg.Latitude,
		"lon", cfg.Longitude,
		"symbol", string([]byte{cfg.SymbolTable, cfg.SymbolCode}),
		"beaconFile", cfg.BeaconFile,
		"minInterval", cfg.MinInterval,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"sqlitePath", cfg.SQLitePath,
	)

	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(dbConn); err != nil {
		return err
	}

	// Attach the beacon handler before Connect: the subscribe happens
	// right after CONNACK, and the broker may deliver queued messages
	// immediately.
	subscriber := mqtt.NewSubscriber(cfg, slog.Default())
	beacon.RegisterFeature(subscriber, dbConn, cfg, slog.Default())

	// Use a short timeout for the initial connect so startup is not
	// blocked when the broker is down; auto-reconnect covers the rest.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	err = subscriber.Connect(connectCtx)
	connectCancel()
	if err != nil {
		slog.Warn("mqtt connection failed (will keep retrying)", "error", err)
	}

	<-ctx.Done()

	slog.Info("mqtt disconnecting")
	subscriber.Disconnect()

	return ctx.Err()
}
