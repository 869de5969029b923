// Command keygen provisions partner API keys. With -name and a database DSN
// it creates the partner and prints the raw key once; the database keeps
// only the bcrypt hash.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/GoOrderly/orderlygate/internal/config"
	"github.com/GoOrderly/orderlygate/internal/repository"
	"github.com/GoOrderly/orderlygate/internal/service"
)

func main() {
	name := flag.String("name", "", "partner name to provision")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: keygen -name <partner>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.DSN == "" {
		log.Fatal("database.dsn is required")
	}

	db, err := repository.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	partnerSvc := service.NewPartnerService(
		repository.NewPostgresPartnerRepo(db),
		repository.NewPostgresCredentialRepo(db),
	)

	partner, rawKey, err := partnerSvc.CreatePartner(context.Background(), *name)
	if err != nil {
		log.Fatalf("Failed to create partner: %v", err)
	}

	fmt.Printf("Partner ID:  %d\n", partner.ID)
	fmt.Printf("Name:        %s\n", partner.Name)
	fmt.Printf("API Key:     %s\n", rawKey)
	fmt.Println("\nStore the API key now; it cannot be recovered later.")
}
