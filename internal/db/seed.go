package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

const seedEmbeddingDim = 8

var seedMoods = []string{"calm", "curious", "playful", "reflective", "adventurous"}

// SeedTestData resets the database and populates it with demo daters.
//
// Behavior:
//  1. Clears existing data in `user_messages`, `messages`, `matches` and `users`.
//  2. Creates 20 users (10 male, 10 female), all available, each with random
//     bio and mood embeddings of the same dimension.
//
// Compatible with MySQL, Postgres and SQLite (sequence reset only where supported).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(db); err != nil {
		return err
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'matches'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	for i := 1; i <= 20; i++ {
		gender := GenderMale
		if i > 10 {
			gender = GenderFemale
		}

		user := User{
			Email:         fmt.Sprintf("user%d@example.com", i),
			Name:          fmt.Sprintf("User %d", i),
			Age:           21 + r.Intn(15),
			Bio:           fmt.Sprintf("Demo dater number %d", i),
			Mood:          seedMoods[r.Intn(len(seedMoods))],
			Gender:        string(gender),
			Location:      "Mumbai",
			Interests:     []string{"music", "travel"},
			Values:        []string{"honesty"},
			BioEmbedding:  randomVector(r, seedEmbeddingDim),
			MoodEmbedding: randomVector(r, seedEmbeddingDim),
			Status:        StatusAvailable,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	return nil
}

// SeedMinimalTestData inserts a deterministic trio used by service tests:
// one male and two female daters, all available.
func SeedMinimalTestData(db *gorm.DB) error {
	if err := clearAll(db); err != nil {
		return err
	}

	users := []User{
		{Email: "a@test.com", Gender: string(GenderMale), Status: StatusAvailable,
			BioEmbedding: []float64{1, 0}, MoodEmbedding: []float64{1, 0}},
		{Email: "b@test.com", Gender: string(GenderFemale), Status: StatusAvailable,
			BioEmbedding: []float64{1, 0}, MoodEmbedding: []float64{1, 0}},
		{Email: "c@test.com", Gender: string(GenderFemale), Status: StatusAvailable,
			BioEmbedding: []float64{0, 1}, MoodEmbedding: []float64{0, 1}},
	}
	return db.Create(&users).Error
}

func clearAll(db *gorm.DB) error {
	for _, table := range []string{"user_messages", "messages", "matches", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func randomVector(r *rand.Rand, dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = r.Float64()*2 - 1
	}
	return v
}
