package main

import (
	"context"
	"flag"
	"log"
	"os"

	"SignalDesk/internal/di"
	"SignalDesk/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s store=%s kafka=%t cache=%t", cfg.Environment, cfg.Store.Backend, cfg.Kafka.Enabled, cfg.Cache.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(context.Background(), *once); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
