package main

import (
	"context"
	"os"

	"github.com/oggyb/nameless/internal/config"
	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/logger"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/repository"
	"github.com/oggyb/nameless/internal/search"
)

// discard drops notifications; seeding never mails anyone.
type discard struct{}

func (discard) Notify(string, string) {}

func main() {
	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.SeedTestData(database); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	index, err := search.New(cfg)
	if err != nil {
		log.Error("failed to init search index", "err", err)
		os.Exit(1)
	}
	ctx := context.Background()
	if err := index.EnsureCollections(ctx); err != nil {
		log.Warn("failed to create search collections", "err", err)
	}

	orch := mutation.New(repository.NewStore(database), index, discard{}, log)
	users, posts, err := orch.Reindex(ctx)
	if err != nil {
		log.Warn("seeded data is not searchable", "err", err)
	}

	log.Info("seeding completed", "users", users, "posts", posts)
}
