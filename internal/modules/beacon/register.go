package beacon

import (
	"database/sql"
	"log/slog"

	"github.com/gjr80/weewx-aprx/internal/config"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/publish"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/repository"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/schedule"
	"github.com/gjr80/weewx-aprx/internal/modules/beacon/service"
	"github.com/gjr80/weewx-aprx/internal/mqtt"
)

// RegisterFeature wires the beacon pipeline and attaches it to the
// observation bus. The scheduler is constructed exactly once here; it
// owns the publish cooldown state for the process lifetime.
func RegisterFeature(subscriber *mqtt.Subscriber, db *sql.DB, cfg config.Config, logger *slog.Logger) *service.Service {
	archive := repository.NewArchive(db)
	scheduler := schedule.New(cfg.MinInterval)
	publisher := publish.New(cfg.BeaconFile)
	svc := service.New(archive, scheduler, publisher, cfg, logger)
	svc.Register(subscriber)
	return svc
}
