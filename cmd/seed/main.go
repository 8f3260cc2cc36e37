// Package main seeds a Shelfie database with demo readers, shelves and
// activity so the feed, friend counts and notifications have something to show.
//
// Usage:
//
//	go run ./cmd/seed --data-dir ~/.shelfie
//	go run ./cmd/seed --data-dir ~/.shelfie --db-driver badger --readers 8
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/shelfieapp/shelfie-server/internal/config"
	"github.com/shelfieapp/shelfie-server/internal/di/providers"
	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/logger"
	"github.com/shelfieapp/shelfie-server/internal/search"
	"github.com/shelfieapp/shelfie-server/internal/service"
	"github.com/shelfieapp/shelfie-server/internal/sse"
	"github.com/shelfieapp/shelfie-server/internal/validation"
)

var readerCount = flag.Int("readers", 6, "Number of demo readers to create")

type reader struct {
	given, family string
}

var demoReaders = []reader{
	{"Ada", "Lovelace"},
	{"Octavia", "Butler"},
	{"Italo", "Calvino"},
	{"Zoë", "Ødegård"},
	{"Chimamanda", "Adichie"},
	{"Haruki", "Murakami"},
	{"Wisława", "Szymborska"},
	{"Jorge", "Borges"},
}

type catalogEntry struct {
	id, title, author string
	pages             int
}

var catalog = []catalogEntry{
	{"vol-dispossessed", "The Dispossessed", "Ursula K. Le Guin", 387},
	{"vol-kindred", "Kindred", "Octavia E. Butler", 264},
	{"vol-invisible-cities", "Invisible Cities", "Italo Calvino", 165},
	{"vol-piranesi", "Piranesi", "Susanna Clarke", 272},
	{"vol-half-yellow-sun", "Half of a Yellow Sun", "Chimamanda Ngozi Adichie", 433},
	{"vol-wind-up-bird", "The Wind-Up Bird Chronicle", "Haruki Murakami", 607},
	{"vol-ficciones", "Ficciones", "Jorge Luis Borges", 174},
	{"vol-left-hand", "The Left Hand of Darkness", "Ursula K. Le Guin", 304},
}

var categories = []domain.Category{
	domain.CategoryToBeRead,
	domain.CategoryCurrentlyReading,
	domain.CategoryRead,
}

var comments = []string{
	"This one stayed with me for weeks.",
	"Adding it to my list!",
	"The ending!!",
	"<p>Have you read her <em>other</em> books?</p>",
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.New(logger.Config{Level: logger.ParseLevel(cfg.Logger.Level), Environment: cfg.App.Environment})

	st, err := providers.OpenStore(cfg.Storage.Driver, cfg.Storage.DatabasePath(), lg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	index, _, err := search.Open(search.Options{DataPath: cfg.Storage.SearchPath(), Logger: lg.Component("search")})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	v := validation.New()
	notifications := service.NewNotificationService(st, sse.Discard, nil, lg.Logger)
	users := service.NewUserService(st, index, v, lg.Logger)
	social := service.NewSocialGraphService(st, nil, lg.Logger)
	books := service.NewBookService(st, v, lg.Logger)
	engagement := service.NewEngagementService(st, notifications, v, nil, lg.Logger)

	ctx := context.Background()
	n := min(max(*readerCount, 2), len(demoReaders))

	fmt.Printf("Seeding %d readers into %s (%s)\n", n, cfg.Storage.DatabasePath(), cfg.Storage.Driver)

	created := make([]*domain.User, 0, n)
	for i, r := range demoReaders[:n] {
		u, _, err := users.SignIn(ctx, service.SignInRequest{
			GoogleID:   fmt.Sprintf("seed-google-%d", i),
			Email:      fmt.Sprintf("reader%d@example.com", i),
			GivenName:  r.given,
			FamilyName: r.family,
		})
		if err != nil {
			log.Fatalf("Failed to sign in %s %s: %v", r.given, r.family, err)
		}
		created = append(created, u)
		fmt.Printf("  reader @%s (%s)\n", u.Username, u.ID)
	}

	// Each reader follows the next two, so neighbours end up as friends.
	for i, u := range created {
		for step := 1; step <= 2; step++ {
			target := created[(i+step)%len(created)]
			if target.ID == u.ID {
				continue
			}
			if _, err := social.Follow(ctx, u.ID, target.Username); err != nil {
				fmt.Printf("  skip follow @%s -> @%s: %v\n", u.Username, target.Username, err)
			}
		}
	}

	rng := rand.New(rand.NewPCG(uint64(n), 42))
	var shelved []*domain.Book
	for _, u := range created {
		for _, idx := range rng.Perm(len(catalog))[:3] {
			entry := catalog[idx]
			b, err := books.CreateBook(ctx, u.ID, service.CreateBookRequest{
				GoogleBooksID: entry.id,
				Title:         entry.title,
				Authors:       []string{entry.author},
				PageCount:     entry.pages,
				Category:      categories[rng.IntN(len(categories))],
				Rating:        rng.IntN(domain.MaxRating + 1),
			})
			if err != nil {
				fmt.Printf("  skip %q for @%s: %v\n", entry.title, u.Username, err)
				continue
			}
			shelved = append(shelved, b)
		}
	}

	likes, threads := 0, 0
	for _, b := range shelved {
		for _, u := range created {
			if u.ID == b.UserID || rng.IntN(3) != 0 {
				continue
			}
			if _, err := engagement.ToggleLike(ctx, b.ID, u.ID); err == nil {
				likes++
			}
			if rng.IntN(2) == 0 {
				text := comments[rng.IntN(len(comments))]
				if _, err := engagement.AddComment(ctx, b.ID, u.ID, u.Username, text); err == nil {
					threads++
				}
			}
		}
	}

	fmt.Printf("Done: %d books, %d likes, %d comments\n", len(shelved), likes, threads)
}
