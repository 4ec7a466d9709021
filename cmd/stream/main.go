package main

import (
	"flag"
	"log"
	"os"

	"ascent/internal/di"
	"ascent/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s broker=%s stream_port=%d", cfg.Environment, cfg.Broker.Backend, cfg.Stream.Port)

	app, err := di.InitializeStreamApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
