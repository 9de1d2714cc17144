package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"helios/internal/config"
	"helios/internal/gather"
	"helios/internal/store"
	"helios/internal/util"
)

func main() {
	insiderPath := flag.String("insider", "", "path to insider aggregate CSV")
	commentsPath := flag.String("comments", "", "path to scored comments CSV")
	flag.Parse()

	if *insiderPath == "" && *commentsPath == "" {
		log.Fatal("nothing to ingest: pass -insider and/or -comments")
	}

	_ = godotenv.Load()

	cfgPath := "config/helios.yaml"
	if p := os.Getenv("HELIOS_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var gatherers []gather.Gatherer
	if *insiderPath != "" {
		gatherers = append(gatherers, gather.NewInsiderGatherer(*insiderPath, db))
	}
	if *commentsPath != "" {
		gatherers = append(gatherers, gather.NewSentimentGatherer(*commentsPath, db))
	}

	for _, g := range gatherers {
		if err := g.Run(ctx); err != nil {
			log.Fatalf("%s: %v", g.Name(), err)
		}
	}
}
