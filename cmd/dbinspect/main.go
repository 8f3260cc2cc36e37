// Package main inspects a Shelfie database and reports follow edges that are
// only recorded on one side, plus cached counts that drifted from the lists.
//
// Follow and unfollow write two documents in sequence, so an interrupted
// request can leave an edge half-applied. Retrying the request repairs it;
// this tool finds the ones nobody retried.
//
// Usage:
//
//	go run ./cmd/dbinspect --data-dir ~/.shelfie
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/shelfieapp/shelfie-server/internal/config"
	"github.com/shelfieapp/shelfie-server/internal/di/providers"
	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.New(logger.Config{Level: logger.ParseLevel("warn"), Environment: cfg.App.Environment})

	st, err := providers.OpenStore(cfg.Storage.Driver, cfg.Storage.DatabasePath(), lg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	users, err := st.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}

	byHandle := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byHandle[u.Username] = u
	}

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Driver: %s\nPath: %s\nUsers: %d\n\n", cfg.Storage.Driver, cfg.Storage.DatabasePath(), len(users))

	problems := 0
	report := func(format string, args ...any) {
		problems++
		fmt.Printf("  "+format+"\n", args...)
	}

	for _, u := range users {
		for _, h := range u.Following {
			other, ok := byHandle[h]
			switch {
			case !ok:
				report("@%s follows unknown handle @%s", u.Username, h)
			case !other.HasFollower(u.Username):
				report("@%s follows @%s, but @%s does not list them as a follower", u.Username, h, h)
			}
		}
		for _, h := range u.Followers {
			other, ok := byHandle[h]
			switch {
			case !ok:
				report("@%s is followed by unknown handle @%s", u.Username, h)
			case !other.IsFollowing(u.Username):
				report("@%s lists @%s as a follower, but @%s does not follow them", u.Username, h, h)
			}
		}

		expected := *u
		expected.Recount()
		if expected.NumFollowing != u.NumFollowing || expected.NumFriends != u.NumFriends {
			report("@%s counts drifted: num_following=%d (want %d), num_friends=%d (want %d)",
				u.Username, u.NumFollowing, expected.NumFollowing, u.NumFriends, expected.NumFriends)
		}
	}

	fmt.Println("=== Summary ===")
	if problems == 0 {
		fmt.Println("Follow graph is consistent")
		return
	}
	fmt.Printf("%d problem(s) found\n", problems)
	_ = st.Close()
	os.Exit(1)
}
