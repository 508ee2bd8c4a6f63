package db

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password every seeded account gets.
const SeedPassword = "password1"

// SeedTestData resets the database and populates it with demo users, posts and likes.
//
// Behavior:
//  1. Clears `likes`, `posts` and `users`.
//  2. Creates one admin, two moderators and nine users (password SeedPassword).
//  3. Gives every account three posts with valid title/content lengths.
//  4. Generates ~40% random likes and rewrites post/user counters to match.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"likes", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE posts AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'posts'")
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Users ---
	var users []User
	for i := 1; i <= 12; i++ {
		role := RoleUser
		switch {
		case i == 1:
			role = RoleAdmin
		case i <= 3:
			role = RoleModerator
		}
		users = append(users, User{
			Username:     fmt.Sprintf("%s_%02d", role, i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Role:         role,
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Printf("Seeded %d users.", len(users))

	// --- Posts ---
	var posts []Post
	for _, u := range users {
		for j := 1; j <= 3; j++ {
			posts = append(posts, Post{
				OwnerID:       u.ID,
				OwnerUsername: u.Username,
				Title:         fmt.Sprintf("Field notes number %d written by %s", j, u.Username),
				Content:       seedBody(u.Username, j),
			})
		}
	}
	if err := db.Create(&posts).Error; err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	// --- Likes ---
	var likes []Like
	for _, u := range users {
		for _, p := range posts {
			if p.OwnerID != u.ID && r.Intn(100) < 40 {
				likes = append(likes, Like{UserID: u.ID, PostID: p.ID})
			}
		}
	}
	if len(likes) > 0 {
		if err := db.Create(&likes).Error; err != nil {
			return fmt.Errorf("failed to seed likes: %w", err)
		}
	}

	// --- Counters ---
	if err := db.Exec(
		"UPDATE posts SET likes = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)",
	).Error; err != nil {
		return fmt.Errorf("failed to recount post likes: %w", err)
	}
	if err := db.Exec(
		"UPDATE users SET likes = (SELECT COALESCE(SUM(posts.likes), 0) FROM posts WHERE posts.owner_id = users.id)",
	).Error; err != nil {
		return fmt.Errorf("failed to recount user likes: %w", err)
	}

	log.Printf("Seeded %d posts and %d likes.", len(posts), len(likes))
	return nil
}

func seedBody(username string, n int) string {
	line := fmt.Sprintf("Entry %d by %s. ", n, username)
	return strings.Repeat(line+"Nothing much happened today, which is exactly how it should be. ", 4)
}
