package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"travelagency/pkg/config"
	"travelagency/pkg/db"
	"travelagency/pkg/retry"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying all")
	flag.Parse()

	cfg := config.Load()
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	// This uses DIRECT_URL if set (poolers reject migration locks).
	var err error
	if *down {
		err = db.MigrateDown(cfg.MigrationsPath, cfg)
	} else {
		err = db.MigrateConfig(cfg.MigrationsPath, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// Sanity check that the runtime connection (DATABASE_URL if set) opens.
	pool, err := db.Open(context.Background(), cfg, retry.FromConfig(cfg.Retry))
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	if *down {
		fmt.Println("rolled back one migration")
		return
	}
	fmt.Println("migrations applied")
}
