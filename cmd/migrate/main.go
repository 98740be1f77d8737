package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/damoang/tourlog-backend/internal/app"
	"github.com/damoang/tourlog-backend/internal/config"
	"github.com/damoang/tourlog-backend/internal/migration"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	verify := flag.Bool("verify", false, "compare taxonomy counts with published items")
	repair := flag.Bool("repair-counts", false, "overwrite drifted taxonomy counts")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := app.OpenMySQL(cfg, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if err := migration.Run(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	log.Println("Schema up to date")

	switch {
	case *repair:
		n, err := migration.RepairCounts(db, time.Now().UTC())
		if err != nil {
			log.Fatalf("Failed to repair counts: %v", err)
		}
		log.Printf("Repaired %d taxonomy counts", n)
	case *verify:
		drifts, err := migration.VerifyCounts(db)
		if err != nil {
			log.Fatalf("Failed to verify counts: %v", err)
		}
		printDrifts(drifts)
	}
}

func printDrifts(drifts []migration.CountDrift) {
	if len(drifts) == 0 {
		log.Println("[verify] All taxonomy counts match")
		return
	}

	fmt.Println()
	fmt.Println("╔══════════╦══════════════════════╦══════════╦══════════╗")
	fmt.Println("║ Kind     ║ Term                 ║  Stored  ║ Expected ║")
	fmt.Println("╠══════════╬══════════════════════╬══════════╬══════════╣")
	for _, d := range drifts {
		stored := fmt.Sprintf("%d", d.Stored)
		if d.Stored < 0 {
			stored = "missing"
		}
		fmt.Printf("║ %-8s ║ %-20s ║ %8s ║ %8d ║\n", d.Kind, d.ID, stored, d.Expected)
	}
	fmt.Println("╚══════════╩══════════════════════╩══════════╩══════════╝")
	fmt.Println()
}
