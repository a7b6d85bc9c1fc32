package main

import (
	"log"

	"github.com/spf13/pflag"

	"github.com/Saifkhan77806/LoveTown/internal/config"
	"github.com/Saifkhan77806/LoveTown/internal/db"
)

func main() {
	minimal := pflag.Bool("minimal", false, "load only the three-user fixture instead of the 20 demo daters")
	pflag.Parse()

	// Load configuration
	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	seed := db.SeedTestData
	if *minimal {
		seed = db.SeedMinimalTestData
	}
	if err := seed(database); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Seeding completed.")
}
