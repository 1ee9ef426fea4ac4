package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/matthewbaird/opsconsole/internal/activity"
	"github.com/matthewbaird/opsconsole/internal/config"
	"github.com/matthewbaird/opsconsole/internal/event"
	"github.com/matthewbaird/opsconsole/internal/eventbus"
	"github.com/matthewbaird/opsconsole/internal/seed"
	"github.com/matthewbaird/opsconsole/internal/server"
	"github.com/matthewbaird/opsconsole/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.ParseServer(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	activityStore := activity.NewSQLStore(st.Driver())
	if err := activityStore.CreateTable(ctx); err != nil {
		log.Fatalf("creating activity table: %v", err)
	}
	log.Println("database migrated successfully")

	if cfg.Seed {
		if err := seed.Demo(ctx, st); err != nil {
			log.Fatalf("seeding demo data: %v", err)
		}
	}

	bus := eventbus.New(256)
	bus.Subscribe("activity", event.NewActivityRecorder(activityStore))
	bus.Subscribe("log", eventbus.NewLogConsumer())
	bus.Start(context.WithoutCancel(ctx))
	defer bus.Stop()

	if err := server.Run(ctx, server.Config{
		Port:     cfg.Port,
		Store:    st,
		Activity: activityStore,
		Events:   bus,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
