package main

import (
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/dukerupert/inkwell/internal/database"
	"github.com/dukerupert/inkwell/internal/logging"
)

func main() {
	logger := logging.Setup(os.Getenv("INKWELL_LOG_LEVEL"), os.Getenv("INKWELL_LOG_FORMAT"))

	dbPath := os.Getenv("INKWELL_DB_PATH")
	if dbPath == "" {
		dbPath = "inkwell.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	seed := rand.Uint64()
	if v := os.Getenv("INKWELL_SEED"); v != "" {
		if seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			slog.Error("invalid INKWELL_SEED", "error", err)
			os.Exit(1)
		}
	}

	s := newSeeder(db, rand.New(rand.NewPCG(seed, seed)), DefaultCounts, logger)
	res, err := s.Run()
	if err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	if res.Skipped {
		slog.Info("database already seeded", "email", DemoEmail)
		return
	}
	slog.Info("seeding completed",
		"users", res.Users, "posts", res.Posts, "comments", res.Comments,
		"likes", res.Likes, "tags", res.Tags, "seed", seed)
}
