package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops-hq/fieldops/internal/server"
	"github.com/fieldops-hq/fieldops/modules"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/services"
	"github.com/fieldops-hq/fieldops/pkg/application"
	"github.com/fieldops-hq/fieldops/pkg/configuration"
	"github.com/fieldops-hq/fieldops/pkg/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	bus := eventbus.NewEventPublisher(logger)
	bus.Subscribe(func(event *services.ImportRunCompletedEvent) {
		logger.WithFields(map[string]interface{}{
			"profile_id": event.ProfileID,
			"dry_run":    event.DryRun,
			"processed":  event.Summary.Processed,
			"inserted":   event.Summary.Inserted,
			"updated":    event.Summary.Updated,
			"skipped":    event.Summary.Skipped,
		}).Info("import run completed")
	})

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: bus,
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
