package main

import (
	"context"
	"fmt"
	"time"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/config"
	"github.com/stemsi/evaluation-backend/internal/database"
	"github.com/stemsi/evaluation-backend/internal/event"
	"github.com/stemsi/evaluation-backend/internal/logger"
	"github.com/stemsi/evaluation-backend/internal/model"
	"github.com/stemsi/evaluation-backend/internal/repository"
	"github.com/stemsi/evaluation-backend/internal/service"
)

type seedCompetency struct {
	name  string
	marks float64
}

type seedSubject struct {
	name         string
	description  string
	competencies []seedCompetency
}

var seedData = []seedSubject{
	{
		name:        "Algorithms",
		description: "Design and analysis of algorithms",
		competencies: []seedCompetency{
			{"Sorting", 7.5}, {"Graph Traversal", 8}, {"Dynamic Programming", 6.25},
		},
	},
	{
		name:        "Databases",
		description: "Relational modelling and SQL",
		competencies: []seedCompetency{
			{"Normalization", 8.5}, {"Indexing", 7}, {"Transactions", 6},
		},
	},
	{
		name:        "Computer Networks",
		description: "Protocols from link layer to application layer",
		competencies: []seedCompetency{
			{"Routing", 5.5}, {"TCP Congestion Control", 7.25},
		},
	},
	{
		name: "Operating Systems",
		competencies: []seedCompetency{
			{"Scheduling", 9}, {"Virtual Memory", 8.75}, {"Concurrency", 7},
		},
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	subjectRepo := repository.NewSubjectRepository(pool, log)
	competencyRepo := repository.NewCompetencyRepository(pool, log)

	// Seeding goes through the services so every invariant is enforced.
	subjectService := service.NewSubjectService(subjectRepo, competencyRepo, event.Nop{}, log)
	competencyService := service.NewCompetencyService(competencyRepo, subjectRepo, event.Nop{}, log)

	fmt.Printf("=== Seeding %d Subjects ===\n", len(seedData))

	var createdSubjects, createdCompetencies, skipped int
	for _, s := range seedData {
		subject, err := subjectRepo.FindByName(ctx, s.name)
		if err != nil {
			log.Fatal().Err(err).Str("subject", s.name).Msg("Failed to check existing subject")
		}

		if subject == nil {
			req := &model.CreateSubjectRequest{Name: s.name}
			if s.description != "" {
				req.Description = &s.description
			}
			subject, err = subjectService.CreateSubject(ctx, req)
			if err != nil {
				log.Fatal().Err(err).Str("subject", s.name).Msg("Failed to create subject")
			}
			createdSubjects++
			fmt.Printf("Created subject %q with ID: %d\n", subject.Name, subject.ID)
		} else {
			fmt.Printf("Found existing subject %q with ID: %d\n", subject.Name, subject.ID)
		}

		for _, c := range s.competencies {
			marks := c.marks
			_, err := competencyService.CreateCompetency(ctx, &model.CreateCompetencyRequest{
				SubjectID: subject.ID,
				Name:      c.name,
				Marks:     &marks,
			})
			switch {
			case err == nil:
				createdCompetencies++
			case apperr.IsKind(err, apperr.KindConflict):
				skipped++
			default:
				log.Fatal().Err(err).Str("competency", c.name).Msg("Failed to create competency")
			}
		}
	}

	fmt.Printf("\nSeeding complete: %d subjects, %d competencies created, %d competencies already present\n",
		createdSubjects, createdCompetencies, skipped)
}
