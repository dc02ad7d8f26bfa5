package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/pageza/hansik/backend/config"
	"github.com/pageza/hansik/backend/internal/database"
	"github.com/pageza/hansik/backend/internal/model"
	"github.com/pageza/hansik/backend/internal/vectorstore"
)

func main() {
	// Parse command line flags
	reset := flag.Bool("reset", false, "Drop the documents table before migrating")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *reset {
		if err := db.Migrator().DropTable(&model.Document{}); err != nil {
			log.Fatalf("Failed to drop %s: %v", model.Document{}.TableName(), err)
		}
		log.Printf("Dropped %s", model.Document{}.TableName())
	}

	if err := vectorstore.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}
