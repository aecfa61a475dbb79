package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo accounts and
// swipe history.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates one admin plus 20 approved members (10 male, 10 female), all
//     with password "password".
//  3. Generates a few hundred swipes with ~70% likes; every 3rd pair gets a
//     guaranteed reciprocal like, with the resulting match row and a short
//     conversation.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "matches", "blocks", "swipe_events", "swipes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		DisplayName:  "Admin",
		Gender:       "female",
		Role:         RoleAdmin,
		Status:       StatusApproved,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	faculties := []string{"Computer Science", "Medicine", "Law", "Economics", "Philology"}

	// --- Seed Users (10 male, 10 female) ---
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		gender := "male"
		if i > 10 {
			gender = "female"
		}

		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			DisplayName:  fmt.Sprintf("User %d", i),
			Gender:       gender,
			Faculty:      faculties[r.Intn(len(faculties))],
			YearOfStudy:  r.Intn(5) + 1,
			Role:         RoleMember,
			Status:       StatusApproved,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Println("Seeded 20 users.")

	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
	}

	// --- Seed Swipes ---
	counter := 0
	for _, actor := range users {
		for j := 0; j < 12; j++ {
			target := users[r.Intn(len(users))]
			if actor.ID == target.ID || actor.Gender == target.Gender {
				continue
			}

			liked := r.Intn(100) < 70

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				liked = true
				recip := Swipe{ActorID: target.ID, TargetID: actor.ID, Liked: true}
				if err := db.Clauses(upsert).Create(&recip).Error; err != nil {
					return fmt.Errorf("failed to seed reciprocal swipe: %w", err)
				}
			}

			sw := Swipe{ActorID: actor.ID, TargetID: target.ID, Liked: liked}
			if err := db.Clauses(upsert).Create(&sw).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}
			if err := db.Create(&SwipeEvent{ActorID: actor.ID, TargetID: target.ID, Liked: liked}).Error; err != nil {
				return fmt.Errorf("failed to seed swipe event: %w", err)
			}

			if liked && counter%3 == 0 {
				if err := seedMatch(db, r, actor.ID, target.ID); err != nil {
					return err
				}
			}
			counter++
		}
	}
	log.Printf("Seeded %d swipes.", counter)

	return nil
}

// seedMatch inserts the canonical match row for a mutual pair plus a short
// conversation. Duplicate pairs are ignored via the unique pair index.
func seedMatch(db *gorm.DB, r *rand.Rand, a, b string) error {
	if b < a {
		a, b = b, a
	}

	match := Match{UserAID: a, UserBID: b}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&match)
	if res.Error != nil {
		return fmt.Errorf("failed to seed match: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil // pair already matched in an earlier iteration
	}

	openers := []string{
		"Hey! We matched :)",
		"Hi, how is your semester going?",
		"Finally, someone from a decent faculty!",
	}
	msg := Message{
		MatchID:  match.ID,
		SenderID: a,
		Content:  openers[r.Intn(len(openers))],
	}
	if err := db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to seed message: %w", err)
	}
	return nil
}
