package main

import (
	"context"
	"log"
	"time"

	"github.com/tutorhub/tutorhub-api/internal/repository"
	"github.com/tutorhub/tutorhub-api/pkg/config"
	"github.com/tutorhub/tutorhub-api/pkg/database"
)

// seedCatalog is the GCSE and A-Level subject catalog. Existing codes are
// left untouched.
var seedCatalog = []struct {
	Code string
	Name string
}{
	{"GCSE-MATH", "GCSE Maths"},
	{"GCSE-BIO", "GCSE Biology"},
	{"GCSE-CHEM", "GCSE Chemistry"},
	{"GCSE-PHY", "GCSE Physics"},
	{"GCSE-CS", "GCSE Computer Science"},
	{"AL-MATH", "A-Level Maths"},
	{"AL-PHY", "A-Level Physics"},
	{"AL-CS", "A-Level Computer Science"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	repo := repository.NewSubjectRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	for _, subject := range seedCatalog {
		inserted, err := repo.SeedSubject(ctx, subject.Code, subject.Name)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", subject.Code, err)
		}
		if inserted {
			created++
		}
	}

	log.Printf("subject catalog seeded: %d created, %d already present", created, len(seedCatalog)-created)
}
