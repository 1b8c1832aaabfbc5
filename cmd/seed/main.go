// Command seed fills the database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/lena210296/ProjectBlog/internal/bootstrap"
	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/database"
	"github.com/lena210296/ProjectBlog/internal/seed"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	numUsers := flag.Int("users", 0, "Number of random users to create (0 applies a preset instead)")
	postsPerUser := flag.Int("posts", 3, "Posts per random user")
	commentsPerPost := flag.Int("comments", 2, "Comments per post")
	shouldClean := flag.Bool("clean", false, "Delete existing blog data first")
	presetFile := flag.String("preset", "", "YAML preset file (defaults to the built-in demo preset)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	media, err := bootstrap.NewMedia(cfg)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	s, err := seed.NewSeeder(db, media, "", bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	ctx := context.Background()
	var sum seed.Summary
	if *numUsers > 0 {
		sum, err = s.Run(ctx, seed.Options{
			Users:           *numUsers,
			PostsPerUser:    *postsPerUser,
			CommentsPerPost: *commentsPerPost,
			ApprovedRatio:   0.6,
			DraftRatio:      0.2,
		})
	} else {
		var preset *seed.Preset
		preset, err = loadPreset(*presetFile)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		sum, err = s.Apply(ctx, preset)
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts and %d comments", sum.Users, sum.Posts, sum.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}

func loadPreset(path string) (*seed.Preset, error) {
	if path == "" {
		return seed.LoadPreset(strings.NewReader(seed.Demo))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.LoadPreset(f)
}
