package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/config"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/db"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/logger"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/messaging"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/station"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/tasks"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/telemetry"
)

// app is one shell session: everything the desktop form would hold
type app struct {
	log       *zap.Logger
	provider  *db.Provider
	publisher *messaging.Publisher
	telemetry *telemetry.Provider

	stations *station.Cache
	service  *patient.Service
	ui       *textPresenter
	coord    *tasks.Coordinator
}

func newApp(ctx context.Context, cmd *cobra.Command, gitsha string) (*app, error) {
	envFile, _ := cmd.Flags().GetString(flagEnvFile)
	demo, _ := cmd.Flags().GetBool(flagDemo)
	logLevel, _ := cmd.Flags().GetString(flagLogLevel)

	var cfg *config.Config
	var err error
	if demo {
		cfg, err = config.Read(envFile)
	} else {
		cfg, err = config.Load(envFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
		Service: "patient-intake",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{log: log}

	if cfg.OTELEnabled {
		a.telemetry, err = telemetry.InitProvider(ctx, telemetry.ConfigFrom(cfg, gitsha), log)
		if err != nil {
			log.Warn("telemetry disabled", zap.Error(err))
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Warn("metrics disabled", zap.Error(err))
		metrics = nil
	}

	var repo patient.RepositoryInterface
	var stationRepo station.RepositoryInterface
	if demo {
		log.Info("running in demo mode with an in-memory store")
		repo = seededDemoRepository(ctx)
		stationRepo = demoStations
	} else {
		a.provider, err = db.Connect(ctx, cfg.DSN(), cfg.DBName, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		repo = patient.NewRepository(a.provider, log)
		stationRepo = station.NewRepository(a.provider)
	}

	var events messaging.PublisherInterface
	if cfg.RabbitMQURL != "" {
		a.publisher, err = messaging.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			// patients can still be admitted without the broker
			log.Warn("event publishing disabled", zap.Error(err))
		} else {
			events = a.publisher
		}
	}

	a.stations = station.NewCache(stationRepo, log)
	a.service = patient.NewService(repo, a.stations, events, metrics, log)
	a.ui = newTextPresenter(cmd.OutOrStdout(), log)
	a.coord = tasks.New(a.service, a.ui,
		tasks.WithLogger(log),
		tasks.WithMetrics(metrics),
		tasks.WithContext(ctx),
	)
	return a, nil
}

// Close waits for running tasks and releases every connection
func (a *app) Close() {
	if a.coord != nil {
		a.coord.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("failed to close publisher", zap.Error(err))
		}
	}
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.log.Warn("failed to close database", zap.Error(err))
		}
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.log.Warn("failed to shut down telemetry", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// lookup loads the station names through the coordinator, as the form does
// before it renders a patient table
func (a *app) lookup(ctx context.Context) (map[int]string, error) {
	lookup, err := tasks.Run(a.coord, "stations", a.stations.Lookup).Await(ctx)
	if err != nil {
		return nil, a.ui.takeFailure(err)
	}
	a.ui.SetStations(lookup)
	return lookup, nil
}

// run starts a session for one command and always closes it
func run(ctx context.Context, cmd *cobra.Command, gitsha string, fn func(a *app) error) error {
	a, err := newApp(ctx, cmd, gitsha)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

type staticStations []station.Station

func (s staticStations) FindAll(ctx context.Context) ([]station.Station, error) {
	out := make([]station.Station, len(s))
	copy(out, s)
	return out, nil
}

// ordered by name, like the station table
var demoStations = staticStations{
	{Room: 99, Name: "test", MaxBeds: 1},
	{Room: 1, Name: "Ward A", MaxBeds: 10},
	{Room: 2, Name: "Ward B", MaxBeds: 5},
}

func seededDemoRepository(ctx context.Context) *patient.MemoryRepository {
	repo := patient.NewMemoryRepository()
	wardA, wardB := 1, 2
	samples := []patient.Patient{
		{
			FirstName: "Maria", LastName: "Huber", BirthDate: patient.Date(1958, time.March, 14),
			SVNR: "4711140358", Phone: "+436601234567", Address: "Lindengasse 3",
			Reason: "Hip replacement", StationID: &wardA,
		},
		{
			FirstName: "Josef", LastName: "Gruber", BirthDate: patient.Date(1971, time.November, 2),
			SVNR: "1234021171", Address: "Bahnhofstrasse 12",
			Reason: "Observation", StationID: &wardB,
		},
	}
	for i := range samples {
		_ = repo.Insert(ctx, &samples[i])
	}
	return repo
}
